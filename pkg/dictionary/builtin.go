// Package dictionary provides word lists for the predictor and the
// autocorrect engine: built-in common words per language, the chunked binary
// format shared with WordServe, and plain text word lists.
package dictionary

import (
	"maps"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage is used when a requested language has no dictionary.
const DefaultLanguage = "en"

// Normalize lowercases, trims and NFC-composes a dictionary word.
func Normalize(word string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(word)))
}

// Builtin returns a copy of the built-in word frequencies for lang.
func Builtin(lang string) (map[string]int, bool) {
	words, ok := builtin[strings.ToLower(lang)]
	if !ok {
		return nil, false
	}
	return maps.Clone(words), true
}

// Languages lists the language codes with a built-in dictionary.
func Languages() []string {
	return []string{"en", "es", "fr", "de"}
}

var builtin = map[string]map[string]int{
	"en": englishWords,
	"es": spanishWords,
	"fr": frenchWords,
	"de": germanWords,
}

var englishWords = map[string]int{
	"the": 1000, "be": 950, "to": 940, "of": 930, "and": 920, "a": 910, "in": 900,
	"that": 890, "have": 880, "i": 870, "it": 860, "for": 850, "not": 840, "on": 830,
	"with": 820, "he": 810, "as": 800, "you": 790, "do": 780, "at": 770, "this": 760,
	"but": 750, "his": 740, "by": 730, "from": 720, "they": 710, "we": 700, "say": 690,
	"her": 680, "she": 670, "or": 660, "an": 650, "will": 640, "my": 630, "one": 620,
	"all": 610, "would": 600, "there": 590, "their": 580, "what": 570, "so": 560,
	"up": 550, "out": 540, "if": 530, "about": 520, "who": 510, "get": 500, "which": 490,
	"go": 480, "me": 470, "when": 460, "make": 450, "can": 440, "like": 430, "time": 420,
	"no": 410, "just": 400, "him": 390, "know": 380, "take": 370, "people": 360,
	"into": 350, "year": 340, "your": 330, "good": 320, "some": 310, "could": 300,
	"them": 295, "see": 290, "other": 285, "than": 280, "then": 275, "now": 270,
	"look": 265, "only": 260, "come": 255, "its": 250, "over": 245, "think": 240,
	"also": 235, "back": 230, "after": 225, "use": 220, "two": 215, "how": 210,
	"our": 205, "work": 200, "first": 195, "well": 190, "way": 185, "even": 180,
	"new": 175, "want": 170, "because": 165, "any": 160, "these": 155, "give": 150,
	"day": 145, "most": 140, "us": 135, "is": 130, "are": 128, "was": 126, "were": 124,
	"am": 122, "has": 120, "had": 118, "been": 116, "should": 114, "must": 112,
	"might": 110, "hello": 108, "help": 106, "here": 104, "where": 102, "thanks": 100,
	"thank": 98, "please": 96, "sorry": 94, "yes": 92, "okay": 90, "right": 88,
	"really": 86, "very": 84, "much": 82, "more": 80, "going": 78, "doing": 76,
	"today": 74, "tomorrow": 72, "tonight": 70, "morning": 68, "night": 66,
	"love": 64, "friend": 62, "friends": 60, "home": 58, "house": 56, "world": 54,
	"great": 52, "happy": 50, "receive": 48, "believe": 46,
	"definitely": 44, "separate": 42, "necessary": 40, "tomato": 38, "tomatoes": 36,
	"weird": 34, "beginning": 32, "until": 30, "tongue": 28, "truly": 26,
	"argument": 24, "calendar": 22, "address": 20, "embarrass": 18, "occurred": 16,
	"acceptable": 14, "writing": 12, "don't": 60, "doesn't": 40,
	"can't": 50, "won't": 45, "it's": 70, "i'm": 80, "you're": 50, "they're": 40,
	"there's": 30, "didn't": 35, "isn't": 30, "wasn't": 25, "keyboard": 20,
	"swipe": 18, "typing": 16, "phone": 30, "message": 28, "meeting": 26,
	"later": 40, "soon": 38, "maybe": 36, "still": 34, "never": 32, "always": 30,
	"something": 28, "nothing": 26, "everything": 24, "anything": 22,
}

var spanishWords = map[string]int{
	"de": 1000, "la": 990, "que": 980, "el": 970, "en": 960, "y": 950, "a": 940,
	"los": 930, "se": 920, "del": 910, "las": 900, "un": 890, "por": 880, "con": 870,
	"no": 860, "una": 850, "su": 840, "para": 830, "es": 820, "al": 810, "lo": 800,
	"como": 790, "más": 780, "pero": 770, "sus": 760, "le": 750, "ya": 740, "o": 730,
	"este": 720, "sí": 710, "porque": 700, "esta": 690, "entre": 680, "cuando": 670,
	"muy": 660, "sin": 650, "sobre": 640, "también": 630, "hola": 620, "gracias": 610,
	"bueno": 600, "buenos": 590, "días": 580, "noche": 570, "casa": 560, "amigo": 550,
}

var frenchWords = map[string]int{
	"de": 1000, "la": 990, "le": 980, "et": 970, "les": 960, "des": 950, "en": 940,
	"un": 930, "du": 920, "une": 910, "que": 900, "est": 890, "pour": 880, "qui": 870,
	"dans": 860, "par": 850, "plus": 840, "pas": 830, "au": 820, "sur": 810, "ne": 800,
	"mais": 790, "avec": 780, "tout": 770, "nous": 760, "vous": 750, "bonjour": 740,
	"merci": 730, "oui": 720, "non": 710, "très": 700, "bien": 690, "maison": 680,
	"ami": 670, "aujourd'hui": 660, "demain": 650, "soir": 640, "matin": 630,
}

var germanWords = map[string]int{
	"der": 1000, "die": 990, "und": 980, "in": 970, "den": 960, "von": 950, "zu": 940,
	"das": 930, "mit": 920, "sich": 910, "des": 900, "auf": 890, "für": 880, "ist": 870,
	"im": 860, "dem": 850, "nicht": 840, "ein": 830, "eine": 820, "als": 810, "auch": 800,
	"es": 790, "an": 780, "werden": 770, "aus": 760, "er": 750, "hat": 740, "dass": 730,
	"sie": 720, "nach": 710, "wird": 700, "bei": 690, "hallo": 680, "danke": 670,
	"bitte": 660, "ja": 650, "nein": 640, "gut": 630, "haus": 620, "freund": 610,
	"heute": 600, "morgen": 590, "abend": 580, "schön": 570,
}
