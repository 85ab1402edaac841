package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConformCase(t *testing.T) {
	tests := []struct {
		original, word, want string
	}{
		{"teh", "the", "the"},
		{"Teh", "the", "The"},
		{"TEH", "the", "THE"},
		{"tEh", "the", "the"},
		{"I", "i'm", "I'm"},
		{"éte", "été", "été"},
		{"Éte", "été", "Été"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConformCase(tt.original, tt.word), tt.original)
	}
}

func TestDetectCase(t *testing.T) {
	assert.Equal(t, CaseUpper, DetectCase("HELLO"))
	assert.Equal(t, CaseTitle, DetectCase("Hello"))
	assert.Equal(t, CaseTitle, DetectCase("A"))
	assert.Equal(t, CaseLower, DetectCase("hello"))
	assert.Equal(t, CaseLower, DetectCase("hELLO"))
	assert.Equal(t, CaseUpper, DetectCase("DON'T"))
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "0", FormatWithCommas(0))
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "65,535", FormatWithCommas(65535))
	assert.Equal(t, "-1,234,567", FormatWithCommas(-1234567))
}

func TestStartsLower(t *testing.T) {
	assert.True(t, StartsLower("hello"))
	assert.False(t, StartsLower("Hello"))
	assert.False(t, StartsLower(""))
	assert.Equal(t, "", CapitalizeFirst(""))
}
