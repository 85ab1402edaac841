// Package cli handles cmd line input for DBG and testing the keyboard core:
// completions, corrections and next-word predictions for every typed line.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/keyboard"
	"github.com/bastiangx/swipeserve/pkg/predict"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Options control what the handler accepts and prints.
type Options struct {
	MinPrefix   int
	MaxPrefix   int
	Limit       int
	Language    string
	NoFilter    bool
	ShowReasons bool
}

// InputHandler reads lines and prints what the keyboard would offer for
// the last word of each.
type InputHandler struct {
	kb           *keyboard.Keyboard
	opts         Options
	in           io.Reader
	out          io.Writer
	styles       styles
	requestCount int
}

type styles struct {
	header lipgloss.Style
	word   lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	text := lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}
	return styles{
		header: r.NewStyle().Bold(true).Foreground(text),
		word:   r.NewStyle().Foreground(lipgloss.Color("75")),
		muted:  r.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}),
		warn:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
	}
}

// NewInputHandler reads from stdin and writes to stdout.
func NewInputHandler(kb *keyboard.Keyboard, opts Options) *InputHandler {
	h := &InputHandler{kb: kb, opts: opts}
	h.SetIO(os.Stdin, os.Stdout)
	return h
}

// SetIO swaps the handler's input and output.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = out
	h.styles = newStyles(out)
}

// Start runs the input loop until EOF or ":q".
// ":learn <word>" teaches a word and ":stats" prints component stats.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, h.styles.header.Render("SwipeServe CLI [BETA]"))
	fmt.Fprintln(h.out, h.styles.muted.Render("type something and press Enter (:learn <word>, :stats, :q)"))

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			fmt.Fprintln(h.out)
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == ":q":
			return nil
		case line == ":stats":
			h.printStats()
		case strings.HasPrefix(line, ":learn "):
			h.learn(strings.TrimSpace(strings.TrimPrefix(line, ":learn ")))
		default:
			h.handleInput(line)
		}
	}
}

func (h *InputHandler) learn(word string) {
	if h.kb.LearnWord(word) {
		fmt.Fprintf(h.out, "Learned %s\n", h.styles.word.Render(word))
		return
	}
	fmt.Fprintln(h.out, h.styles.warn.Render(fmt.Sprintf("Rejected %q", word)))
}

func (h *InputHandler) printStats() {
	stats := h.kb.Stats()
	for _, k := range []string{"totalWords", "learnedWords", "keys", "autocorrect.cacheHits", "autocorrect.cacheMisses"} {
		fmt.Fprintf(h.out, "%-24s %s\n", k, utils.FormatWithCommas(stats[k]))
	}
}

// handleInput prints completions and corrections for the last word of line,
// then next-word predictions for the whole line.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	word, wctx := predict.ContextFromText(line)
	n := utf8.RuneCountInString(word)

	switch {
	case word == "":
		fmt.Fprintln(h.out, h.styles.warn.Render("No word to complete"))
		return
	case n < h.opts.MinPrefix:
		fmt.Fprintln(h.out, h.styles.warn.Render(fmt.Sprintf("Prefix too short: %s", word)))
		return
	case h.opts.MaxPrefix > 0 && n > h.opts.MaxPrefix:
		fmt.Fprintln(h.out, h.styles.warn.Render(fmt.Sprintf("Prefix too long: %s", word)))
		return
	case !h.opts.NoFilter && !utils.IsValidInput(word):
		fmt.Fprintln(h.out, h.styles.warn.Render(fmt.Sprintf("No results for '%s' (filtered out)", word)))
		return
	}

	start := time.Now()
	completions := h.kb.GetWordSuggestions(word, h.opts.Limit)
	corrections := h.kb.GetAdvancedSuggestions(word, wctx, h.opts.Language)
	log.Debugf("Took [ %v ] for '%s'", time.Since(start), word)

	if len(completions) == 0 {
		fmt.Fprintln(h.out, h.styles.muted.Render(fmt.Sprintf("No completions for '%s'", word)))
	} else {
		fmt.Fprintln(h.out, h.styles.header.Render(fmt.Sprintf("Completions for '%s':", word)))
		for i, s := range completions {
			fmt.Fprintf(h.out, "%2d. %-30s (freq: %8s)\n", i+1, h.styles.word.Render(s.Word), utils.FormatWithCommas(s.Frequency))
		}
	}

	if len(corrections) > 0 {
		fmt.Fprintln(h.out, h.styles.header.Render("Corrections:"))
		for _, c := range corrections {
			row := fmt.Sprintf("    %-30s %3.0f%%  %s", h.styles.word.Render(c.Suggested), c.Confidence*100, c.Category)
			if h.opts.ShowReasons && c.Reason != "" {
				row += "  " + h.styles.muted.Render(c.Reason)
			}
			fmt.Fprintln(h.out, row)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if next := h.kb.Predict(ctx, line); len(next) > 0 {
		fmt.Fprintf(h.out, "%s %s\n", h.styles.header.Render("Predictions:"), strings.Join(next, ", "))
	}
}
