package suggest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrUnknownWord is returned when confirming a word that was never inserted.
var ErrUnknownWord = errors.New("word not in index")

// Suggestion is a completion candidate as shown to users.
type Suggestion struct {
	Word     string
	Priority uint64
	Best     bool `json:",omitempty"`
}

// Completer pairs an Index with a catalog of its words, so callers can work
// with plain strings and list more than the single best completion.
type Completer struct {
	index    Index
	catalog  *patricia.Trie
	distinct int
	inserts  int
	confirms int
}

// NewCompleter wraps index. Words already in index are not cataloged;
// populate it through AddWord.
func NewCompleter(index Index) *Completer {
	return &Completer{
		index:   index,
		catalog: patricia.NewTrie(),
	}
}

// Index exposes the underlying index.
func (c *Completer) Index() Index {
	return c.index
}

// AddWord inserts word and returns its terminal.
func (c *Completer) AddWord(word string) NodeID {
	term := c.index.Insert(word)
	c.inserts++
	if key := Filter(word); key != "" && c.catalog.Insert(patricia.Prefix(key), term) {
		c.distinct++
	}
	return term
}

// AddWords inserts every word in order.
func (c *Completer) AddWords(words []string) {
	for _, w := range words {
		c.AddWord(w)
	}
	log.Debugf("Indexed %d words, %d nodes", len(words), c.index.NodeCount())
}

// Suggest returns the single best completion for prefix, with the
// capitalization of prefix applied.
func (c *Completer) Suggest(prefix string) (Suggestion, bool) {
	best := c.index.Autocomplete(c.index.DescendPrefix(prefix))
	if best == NoNode {
		return Suggestion{}, false
	}
	word, _ := c.index.Word(best)
	return Suggestion{
		Word:     ApplyCapitalization(word, CapitalPositions(prefix)),
		Priority: c.index.Priority(best),
		Best:     true,
	}, true
}

// Complete lists up to limit completions of prefix (limit <= 0 means all).
// The index's own suggestion comes first when there is one; the rest follow
// by priority, then alphabetically.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	v := c.index.DescendPrefix(prefix)
	if v == NoNode {
		return nil
	}
	best := c.index.Autocomplete(v)

	var out []Suggestion
	if best != NoNode {
		bestWord, _ := c.index.Word(best)
		out = append(out, Suggestion{
			Word:     bestWord,
			Priority: c.index.Priority(best),
			Best:     true,
		})
	}

	var rest []Suggestion
	err := c.catalog.VisitSubtree(patricia.Prefix(Filter(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		term, ok := item.(NodeID)
		if !ok {
			return fmt.Errorf("unexpected catalog item %T for %q", item, p)
		}
		if term == best {
			return nil
		}
		rest = append(rest, Suggestion{
			Word:     string(p),
			Priority: c.index.Priority(term),
		})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting catalog subtree: %v", err)
	}

	sort.Slice(rest, func(i, j int) bool {
		if rest[i].Priority != rest[j].Priority {
			return rest[i].Priority > rest[j].Priority
		}
		return rest[i].Word < rest[j].Word
	})

	out = append(out, rest...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	capitals := CapitalPositions(prefix)
	for i := range out {
		out[i].Word = ApplyCapitalization(out[i].Word, capitals)
	}
	return out
}

// Confirm records that word was typed in full.
func (c *Completer) Confirm(word string) (Suggestion, error) {
	term := c.index.Terminal(word)
	if term == NoNode {
		return Suggestion{}, fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}
	c.index.UpdatePriority(term)
	c.confirms++
	stored, _ := c.index.Word(term)
	return Suggestion{Word: stored, Priority: c.index.Priority(term)}, nil
}

// Stats returns counters describing the index.
func (c *Completer) Stats() map[string]int {
	return map[string]int{
		"nodes":    c.index.NodeCount(),
		"words":    c.distinct,
		"stored":   c.index.WordCount(),
		"inserts":  c.inserts,
		"confirms": c.confirms,
		"clock":    int(c.index.Clock()),
	}
}

// CapitalPositions marks which positions of s hold an ASCII capital.
func CapitalPositions(s string) []bool {
	positions := make([]bool, len(s))
	for i, r := range s {
		positions[i] = r >= 'A' && r <= 'Z'
	}
	return positions
}

// ApplyCapitalization uppercases the letters of word at the marked positions.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] && wordRunes[i] >= 'a' && wordRunes[i] <= 'z' {
			wordRunes[i] = wordRunes[i] - 'a' + 'A'
		}
	}
	return string(wordRunes)
}
