package autocorrect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/hbollon/go-edlib"
)

// spelling finds dictionary words within a small Levenshtein distance.
func (e *Engine) spelling(word, lower string, dict *wordList) []Suggestion {
	n := utf8.RuneCountInString(lower)
	threshold := editThreshold(n)

	var out []Suggestion
	scanned := 0
	for _, cand := range e.candidates(lower, dict) {
		diff := utf8.RuneCountInString(cand) - n
		if diff > threshold || -diff > threshold {
			continue
		}
		if scanned >= e.cfg.MaxCandidates {
			break
		}
		scanned++

		d := edlib.LevenshteinDistance(lower, cand)
		if d == 0 || d > threshold {
			continue
		}
		conf := fuzzyConfidence(lower, cand, d) * e.cfg.FuzzyScale
		out = append(out, correction(word, cand, conf, Spelling, describeEdits(d, cand), dict.freq[cand]))
	}
	return out
}

// contextual suggests words that commonly follow the previous word. With
// completionsOnly set, only words extending the typed one are offered.
func (e *Engine) contextual(word, lower, prev string, dict *wordList, completionsOnly bool) []Suggestion {
	if prev == "" {
		return nil
	}
	next, ok := commonBigrams[prev]
	if !ok {
		return nil
	}

	threshold := editThreshold(utf8.RuneCountInString(lower))
	reason := fmt.Sprintf("often follows %q", prev)

	var out []Suggestion
	for i, cand := range next {
		if cand == lower {
			continue
		}
		step := float64(i) * bigramRankStep
		if strings.HasPrefix(cand, lower) {
			out = append(out, correction(word, cand, CompletionConfidence-step, Completion, reason, dict.freq[cand]))
			continue
		}
		if completionsOnly {
			continue
		}
		d := edlib.LevenshteinDistance(lower, cand)
		if d > threshold {
			continue
		}
		conf := fuzzyConfidence(lower, cand, d)*e.cfg.FuzzyScale + ContextBoost - step
		out = append(out, correction(word, cand, conf, Contextual, reason, dict.freq[cand]))
	}
	return out
}

func (e *Engine) typo(word, lower string, dict *wordList) []Suggestion {
	fix, ok := commonTypos[lower]
	if !ok {
		return nil
	}
	return []Suggestion{correction(word, fix, TypoConfidence, Typo, "common typo", dict.freq[strings.ToLower(fix)])}
}

// phonetic finds dictionary words that share a Soundex or Double Metaphone
// code with the typed word but are spelled too differently for the spelling
// pass. Jaro-Winkler similarity sets the confidence.
func (e *Engine) phonetic(word, lower string, dict *wordList) []Suggestion {
	n := utf8.RuneCountInString(lower)
	if n < minPhoneticLength {
		return nil
	}
	threshold := editThreshold(n)

	var out []Suggestion
	seen := make(map[string]bool)
	scanned := 0
	for _, code := range phoneticKeys(lower) {
		for _, cand := range dict.byCode[code] {
			if seen[cand] {
				continue
			}
			seen[cand] = true
			if scanned >= e.cfg.MaxCandidates {
				return out
			}
			scanned++

			if edlib.LevenshteinDistance(lower, cand) <= threshold {
				continue
			}
			jw := matchr.JaroWinkler(lower, cand, false)
			if jw < minPhoneticJW {
				continue
			}
			out = append(out, correction(word, cand, jw*PhoneticScale, Phonetic, fmt.Sprintf("sounds like %q", cand), dict.freq[cand]))
		}
	}
	return out
}

// phoneticKeys returns the Soundex code of s followed by its Double Metaphone
// codes, prefixed so the two schemes never share a bucket.
func phoneticKeys(s string) []string {
	var keys []string
	if code := matchr.Soundex(s); code != "" {
		keys = append(keys, "s:"+code)
	}
	p, sec := matchr.DoubleMetaphone(s)
	if p != "" {
		keys = append(keys, "m:"+p)
	}
	if sec != "" && sec != p {
		keys = append(keys, "m:"+sec)
	}
	return keys
}

func (e *Engine) grammar(word, lower, prev string) []Suggestion {
	fix, ok := grammarRules[wordPair{prev, lower}]
	if !ok {
		return nil
	}
	reason := fmt.Sprintf("%q %s should be %q %s", prev, lower, prev, fix)
	return []Suggestion{correction(word, fix, GrammarConfidence, Grammar, reason, 0)}
}

// capitalization capitalises a lowercase word at the start of a sentence and
// the pronoun in contractions such as "i'm".
func capitalization(word string, ctx WordContext) []Suggestion {
	if !utils.StartsLower(word) {
		return nil
	}
	reason := ""
	switch {
	case ctx.IsStartOfSentence:
		reason = "start of sentence"
	case strings.HasPrefix(word, "i'"):
		reason = "the pronoun I is capitalised"
	default:
		return nil
	}
	return []Suggestion{{
		Original:   word,
		Suggested:  utils.CapitalizeFirst(word),
		Confidence: CapitalizationConfidence,
		Category:   Capitalization,
		Reason:     reason,
	}}
}
