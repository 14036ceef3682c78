// Package suggest is the core: a prefix trie that caches, per subtree, the
// best completion under a fixed priority policy.
package suggest

import "fmt"

// Index is the policy-independent view of a Trie, for callers that pick the
// policy by name at construction time.
type Index interface {
	// Insert adds a word and returns its terminal node.
	Insert(word string) NodeID

	// Root returns the root node.
	Root() NodeID

	// Descend follows one character edge, NoNode if absent.
	Descend(v NodeID, c rune) NodeID

	// DescendPrefix walks a whole prefix from the root, NoNode if absent.
	DescendPrefix(prefix string) NodeID

	// Terminal returns the terminal of an inserted word, NoNode if absent.
	Terminal(word string) NodeID

	// Autocomplete returns the cached best terminal below v. It is NoNode
	// when v is not a terminal and nothing below it has been confirmed.
	Autocomplete(v NodeID) NodeID

	// UpdatePriority confirms the word at a terminal. Panics on non-terminals.
	UpdatePriority(terminal NodeID)

	IsTerminal(v NodeID) bool
	Word(v NodeID) (string, bool)
	Priority(v NodeID) uint64

	NodeCount() int
	WordCount() int
	Clock() uint64
	Policy() string
}

var (
	_ Index = (*Trie[Frequency])(nil)
	_ Index = (*Trie[Recency])(nil)
)

// NewIndex builds an empty index ranked by the named policy.
func NewIndex(policy string) (Index, error) {
	switch policy {
	case PolicyFrequency:
		return NewFrequency(), nil
	case PolicyRecency:
		return NewRecency(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}
