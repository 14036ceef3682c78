// Package cli handles cmd line input and suggestions for trying an index interactively
package cli

import (
	"bufio"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

var (
	wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	bestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// InputHandler reads lines and answers each one: a plain line is looked up
// as a prefix, "!word" confirms word, "+word" inserts it and ":stats"
// prints index counters.
type InputHandler struct {
	completer       *suggest.Completer
	in              io.Reader
	out             *log.Logger
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	requestCount    int
	noFilter        bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer *suggest.Completer, in io.Reader, out io.Writer, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		in:              in,
		out:             log.NewWithOptions(out, log.Options{Level: log.GetLevel()}),
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop. It returns nil once the input ends or
// ":q" is entered.
func (h *InputHandler) Start() error {
	h.out.Print("wordrank CLI")
	h.out.Print("type a prefix, !word to confirm, +word to insert, :stats, :q to exit")
	reader := bufio.NewReader(h.in)

	for {
		h.out.Print("> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if line == ":q" {
				return nil
			}
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	switch {
	case line == ":stats":
		h.printStats()
	case strings.HasPrefix(line, "!"):
		h.confirm(line[1:])
	case strings.HasPrefix(line, "+"):
		h.insert(line[1:])
	default:
		h.complete(line)
	}
}

// complete validates the prefix's length and content, then prints its
// completions with the index's suggestion marked.
func (h *InputHandler) complete(prefix string) {
	if len(prefix) < h.minPrefixLength {
		h.out.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		h.out.Errorf("Prefix too long: %s", prefix)
		return
	}
	if !h.noFilter && !utils.IsValidInput(prefix) {
		h.out.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
		return
	}

	start := time.Now()
	suggestions := h.completer.Complete(prefix, h.suggestLimit)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		h.out.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.out.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		word, mark := wordStyle.Render(s.Word), " "
		if s.Best {
			word, mark = bestStyle.Render(s.Word), "*"
		}
		h.out.Printf("%2d.%s %-40s (priority: %8s)", i+1, mark, word, humanize.Comma(int64(s.Priority)))
	}
}

func (h *InputHandler) confirm(word string) {
	s, err := h.completer.Confirm(word)
	if err != nil {
		h.out.Warnf("Cannot confirm: %v (use +%s to add it)", err, word)
		return
	}
	h.out.Printf("Confirmed %s (priority: %s)", wordStyle.Render(s.Word), humanize.Comma(int64(s.Priority)))
}

func (h *InputHandler) insert(word string) {
	if suggest.Filter(word) == "" {
		h.out.Errorf("Nothing to insert in '%s'", word)
		return
	}
	term := h.completer.AddWord(word)
	stored, _ := h.completer.Index().Word(term)
	h.out.Printf("Inserted %s", wordStyle.Render(stored))
}

func (h *InputHandler) printStats() {
	stats := h.completer.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h.out.Printf("Index (%s policy), %d commands this session:", h.completer.Index().Policy(), h.requestCount)
	for _, k := range keys {
		h.out.Printf("  %-10s %12s", k, humanize.Comma(int64(stats[k])))
	}
}
