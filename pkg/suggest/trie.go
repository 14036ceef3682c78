package suggest

import (
	"errors"
	"fmt"
)

// ErrNotTerminal is the panic value (wrapped) raised by UpdatePriority
// when it is handed a node that does not end a word.
var ErrNotTerminal = errors.New("node is not a terminal")

// NodeID addresses a node inside a single Trie. IDs are only meaningful for
// the Trie that returned them.
type NodeID int32

// NoNode is returned wherever a lookup has no result.
const NoNode NodeID = -1

const rootID NodeID = 0

var emptySlots = func() (s [AlphabetSize]NodeID) {
	for i := range s {
		s[i] = NoNode
	}
	return s
}()

type node struct {
	children [AlphabetSize]NodeID
	parent   NodeID
	terminal bool
	word     int32
	priority uint64

	best         NodeID
	bestPriority uint64
}

func newNode(parent NodeID) node {
	return node{
		children: emptySlots,
		parent:   parent,
		word:     -1,
		best:     NoNode,
	}
}

// Trie is a prefix tree over Filter-ed words where every node caches the
// highest priority terminal of its subtree, so Autocomplete is O(1).
// Insert and UpdatePriority pay O(depth) to keep the caches coherent.
//
// A Trie is not safe for concurrent use. Separate Tries share no state.
type Trie[P Policy] struct {
	policy P
	nodes  []node
	words  []string
	clock  Clock
}

// New returns an empty Trie ranked by policy P.
func New[P Policy]() *Trie[P] {
	t := &Trie[P]{
		nodes: make([]node, 0, 64),
	}
	t.nodes = append(t.nodes, newNode(NoNode))
	return t
}

// NewFrequency returns a Trie that suggests the most often confirmed word.
func NewFrequency() *Trie[Frequency] { return New[Frequency]() }

// NewRecency returns a Trie that suggests the most recently confirmed word.
func NewRecency() *Trie[Recency] { return New[Recency]() }

// Policy returns the name of the ranking policy.
func (t *Trie[P]) Policy() string { return t.policy.Name() }

// Root returns the root node. It is never a terminal.
func (t *Trie[P]) Root() NodeID { return rootID }

// NodeCount returns the number of nodes, root included.
func (t *Trie[P]) NodeCount() int { return len(t.nodes) }

// WordCount returns how many words were stored, duplicates included.
func (t *Trie[P]) WordCount() int { return len(t.words) }

// Clock returns the current value of the logical clock. Only Recency advances it.
func (t *Trie[P]) Clock() uint64 { return t.clock.Now() }

// Insert adds word to the trie and returns its terminal node.
// Characters without a letter slot are dropped. Inserting a word that is
// already present leaves its priority untouched.
func (t *Trie[P]) Insert(word string) NodeID {
	filtered := Filter(word)

	v := rootID
	for i := 0; i < len(filtered); i++ {
		v = t.child(v, int(filtered[i]-'a'))
	}
	term := t.child(v, terminatorSlot)

	t.words = append(t.words, filtered)
	n := &t.nodes[term]
	n.terminal = true
	if n.word < 0 {
		n.word = int32(len(t.words) - 1)
	}

	t.bubbleUp(term)
	return term
}

// child returns the child of v in slot idx, creating it if missing.
func (t *Trie[P]) child(v NodeID, idx int) NodeID {
	if c := t.nodes[v].children[idx]; c != NoNode {
		return c
	}
	c := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, newNode(v))
	t.nodes[v].children[idx] = c
	return c
}

func (t *Trie[P]) valid(v NodeID) bool {
	return v >= 0 && int(v) < len(t.nodes)
}

// Descend follows the edge labelled c out of v. It returns NoNode when v is
// not a node of this trie, c has no slot, or the edge does not exist.
func (t *Trie[P]) Descend(v NodeID, c rune) NodeID {
	if !t.valid(v) {
		return NoNode
	}
	idx, ok := Slot(c)
	if !ok {
		return NoNode
	}
	return t.nodes[v].children[idx]
}

// DescendPrefix walks prefix from the root and returns the node reached,
// or NoNode at the first missing edge.
func (t *Trie[P]) DescendPrefix(prefix string) NodeID {
	v := rootID
	for _, c := range prefix {
		v = t.Descend(v, c)
		if v == NoNode {
			return NoNode
		}
	}
	return v
}

// Terminal returns the terminal node of word, or NoNode if word was never inserted.
func (t *Trie[P]) Terminal(word string) NodeID {
	return t.Descend(t.DescendPrefix(Filter(word)), Terminator)
}

// Autocomplete returns the best terminal below v, or NoNode.
func (t *Trie[P]) Autocomplete(v NodeID) NodeID {
	if !t.valid(v) {
		return NoNode
	}
	return t.nodes[v].best
}

// IsTerminal reports whether v ends a stored word.
func (t *Trie[P]) IsTerminal(v NodeID) bool {
	return t.valid(v) && t.nodes[v].terminal
}

// Word returns the stored word of terminal v.
func (t *Trie[P]) Word(v NodeID) (string, bool) {
	if !t.IsTerminal(v) {
		return "", false
	}
	return t.words[t.nodes[v].word], true
}

// Priority returns the current priority of terminal v, or 0 for anything else.
func (t *Trie[P]) Priority(v NodeID) uint64 {
	if !t.IsTerminal(v) {
		return 0
	}
	return t.nodes[v].priority
}

// UpdatePriority records a confirmation of the word ending at terminal.
// Passing anything but a terminal of this trie is a programming error and panics.
func (t *Trie[P]) UpdatePriority(terminal NodeID) {
	if !t.IsTerminal(terminal) {
		panic(fmt.Errorf("suggest: UpdatePriority(%d): %w", terminal, ErrNotTerminal))
	}
	n := &t.nodes[terminal]
	n.priority = t.policy.Touch(n.priority, &t.clock)
	t.bubbleUp(terminal)
}

// recomputeBest refreshes v's cache from its own terminal and its children.
// Strict comparison keeps v itself on ties, then the lowest slot. Children
// start against priority 0, so words never confirmed are only suggested at
// their own terminal.
func (t *Trie[P]) recomputeBest(v NodeID) {
	n := &t.nodes[v]
	best, bestp := NoNode, uint64(0)
	if n.terminal {
		best, bestp = v, n.priority
	}
	for _, c := range n.children {
		if c == NoNode {
			continue
		}
		cn := &t.nodes[c]
		if cn.best != NoNode && cn.bestPriority > bestp {
			best, bestp = cn.best, cn.bestPriority
		}
	}
	n.best, n.bestPriority = best, bestp
}

func (t *Trie[P]) bubbleUp(from NodeID) {
	for v := from; v != NoNode; v = t.nodes[v].parent {
		t.recomputeBest(v)
	}
}
