//go:build test

package keyboard

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var typedWords = []string{
	"t", "th", "the", "teh", "ther", "there",
	"h", "he", "hel", "helo", "hello",
	"r", "re", "rec", "recieve", "receive",
	"k", "ke", "key", "keybaord", "keyboard",
	"f", "fo", "fon", "fone", "phone",
}

type memSample struct {
	alloc      int64
	goroutines int
}

func sample() memSample {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return memSample{alloc: int64(m.Alloc), goroutines: runtime.NumGoroutine()}
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, iterations := range []int{100, 500, 1000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			kb := newTestKeyboard(t)
			path := []string{"t", "e", "h"}
			baseline := sample()

			ops := 0
			for i := 0; i < iterations; i++ {
				for _, w := range typedWords {
					kb.GetWordSuggestions(w, 10)
					kb.GetAdvancedSuggestions(w, autocorrect.WordContext{}, "")
					ops++
				}
				points := make([]keyindex.Point, 0, len(path))
				for _, k := range path {
					points = append(points, centre(t, kb, k))
				}
				kb.PredictSwipe(points)
			}

			final := sample()
			memPerOp := float64(final.alloc-baseline.alloc) / float64(ops)
			t.Logf("iterations=%d ops=%d mem_per_op=%.2f goroutine_delta=%d",
				iterations, ops, memPerOp, final.goroutines-baseline.goroutines)

			if memPerOp > 1000 {
				t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
			}
			if final.goroutines-baseline.goroutines > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", final.goroutines-baseline.goroutines)
			}
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			kb := newTestKeyboard(t)
			baseline := sample()

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 1000/workers; i++ {
						for _, word := range typedWords {
							kb.GetAdvancedSuggestions(word, autocorrect.WordContext{PreviousWord: "the"}, "")
						}
					}
				}()
			}
			wg.Wait()

			final := sample()
			if d := final.goroutines - baseline.goroutines; d > 3 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", d)
			}
		})
	}
}

// Learning far more words than the engine keeps must not grow memory without bound.
func TestLearnedWordsStayBounded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory test in short mode")
	}
	kb := newTestKeyboard(t)
	capacity := kb.Stats()["autocorrect.maxLearnedWords"]
	baseline := sample()

	for i := 0; i < capacity*4; i++ {
		kb.engine.LearnWord(fmt.Sprintf("learned%sword", letters(i)))
	}

	final := sample()
	stats := kb.Stats()
	t.Logf("learned=%d evicted=%d mem_delta=%d", stats["autocorrect.learnedWords"], stats["autocorrect.learnedEvicted"], final.alloc-baseline.alloc)

	if stats["autocorrect.learnedWords"] > capacity {
		t.Errorf("learned words exceed capacity: %d > %d", stats["autocorrect.learnedWords"], capacity)
	}
	if final.alloc-baseline.alloc > 10*1024*1024 {
		t.Errorf("excessive memory usage: %d bytes", final.alloc-baseline.alloc)
	}
}

// letters spells i in base 26 so learned words stay letters only.
func letters(i int) string {
	b := []byte{}
	for {
		b = append(b, byte('a'+i%26))
		i /= 26
		if i == 0 {
			return string(b)
		}
	}
}
