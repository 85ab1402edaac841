package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// SearchTrie collects every word under lowerPrefix, including lowerPrefix
// itself when it is a word, skipping entries below minThreshold.
func SearchTrie(trie *patricia.Trie, lowerPrefix string, minThreshold int) []Suggestion {
	if trie == nil {
		return nil
	}

	var suggestions []Suggestion

	err := trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		freq := 1

		switch v := item.(type) {
		case int:
			freq = v
		case int32:
			freq = int(v)
		case uint32:
			freq = int(v)
		default:
			log.Errorf("Unknown item type: %T for word %s", item, p)
		}

		if freq < minThreshold {
			return nil
		}

		suggestions = append(suggestions, Suggestion{
			Word:      string(p),
			Frequency: freq,
		})
		return nil
	})

	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	return suggestions
}
