package autocorrect

// commonTypos maps frequent misspellings to their correction.
var commonTypos = map[string]string{
	"teh": "the", "hte": "the", "adn": "and", "nad": "and", "taht": "that",
	"thta": "that", "waht": "what", "wich": "which", "whcih": "which",
	"jsut": "just", "knwo": "know", "konw": "know", "yuo": "you", "ot": "to",
	"fo": "of", "si": "is", "ti": "it", "thier": "their", "freind": "friend",
	"becuase": "because", "becasue": "because", "recieve": "receive",
	"beleive": "believe", "definately": "definitely", "seperate": "separate",
	"neccessary": "necessary", "tommorow": "tomorrow", "tomorow": "tomorrow",
	"tomatos": "tomatoes", "wierd": "weird", "begining": "beginning",
	"untill": "until", "tounge": "tongue", "truely": "truly",
	"arguement": "argument", "calender": "calendar", "adress": "address",
	"embarass": "embarrass", "occured": "occurred", "acceptible": "acceptable",
	"writting": "writing", "dont": "don't", "doesnt": "doesn't",
	"cant": "can't", "wont": "won't", "didnt": "didn't", "isnt": "isn't",
	"wasnt": "wasn't", "im": "I'm", "ive": "I've", "youre": "you're",
	"theyre": "they're", "thats": "that's", "alot": "a lot", "thnaks": "thanks",
	"thansk": "thanks", "pls": "please", "plz": "please", "ur": "your",
}

// commonBigrams lists likely next words after a previous word, most likely first.
var commonBigrams = map[string][]string{
	"i":     {"am", "have", "will", "think", "was", "don't"},
	"thank": {"you"},
	"good":  {"morning", "night", "luck"},
	"see":   {"you"},
	"how":   {"are", "is", "about"},
	"you":   {"are", "can", "know", "have"},
	"going": {"to"},
	"want":  {"to"},
	"have":  {"a", "to", "been", "you"},
	"in":    {"the", "a"},
	"of":    {"the", "course"},
	"on":    {"the", "my"},
	"to":    {"the", "be", "go", "see"},
	"it":    {"is", "was"},
	"what":  {"is", "are", "do"},
	"let":   {"me", "us"},
	"talk":  {"to", "later"},
	"happy": {"birthday"},
	"last":  {"night", "week"},
	"next":  {"week", "time"},
	"are":   {"you", "we", "they"},
}

type wordPair struct {
	previous, word string
}

// grammarRules maps a (previous word, word) pair to the replacement for word.
var grammarRules = map[wordPair]string{
	{"could", "of"}:  "have",
	{"should", "of"}: "have",
	{"would", "of"}:  "have",
	{"must", "of"}:   "have",
	{"might", "of"}:  "have",
	{"i", "is"}:      "am",
	{"i", "are"}:     "am",
	{"he", "are"}:    "is",
	{"she", "are"}:   "is",
	{"it", "are"}:    "is",
	{"they", "is"}:   "are",
	{"we", "is"}:     "are",
	{"you", "is"}:    "are",
	{"they", "was"}:  "were",
	{"we", "was"}:    "were",
	{"you", "was"}:   "were",
	{"he", "have"}:   "has",
	{"she", "have"}:  "has",
	{"it", "have"}:   "has",
	{"he", "don't"}:  "doesn't",
	{"she", "don't"}: "doesn't",
	{"it", "don't"}:  "doesn't",
}
