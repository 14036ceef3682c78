package suggest

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// terminalOf walks to word's terminal the way a caller would: prefix, then '$'.
func terminalOf[P Policy](t *testing.T, trie *Trie[P], word string) NodeID {
	t.Helper()
	term := trie.Descend(trie.DescendPrefix(word), Terminator)
	require.NotEqual(t, NoNode, term, "no terminal for %q", word)
	require.True(t, trie.IsTerminal(term))
	return term
}

func suggestionFor[P Policy](trie *Trie[P], prefix string) string {
	word, _ := trie.Word(trie.Autocomplete(trie.DescendPrefix(prefix)))
	return word
}

// rescan recomputes the best terminal of v's subtree from scratch, comparing
// every child against the running priority.
func rescan[P Policy](trie *Trie[P], v NodeID) (NodeID, uint64) {
	n := trie.nodes[v]
	best, bestp := NoNode, uint64(0)
	if n.terminal {
		best, bestp = v, n.priority
	}
	for _, c := range n.children {
		if c == NoNode {
			continue
		}
		b, p := rescan(trie, c)
		if b != NoNode && p > bestp {
			best, bestp = b, p
		}
	}
	return best, bestp
}

// maxTerminal returns the highest priority of any terminal below v.
func maxTerminal[P Policy](trie *Trie[P], v NodeID) (uint64, bool) {
	n := trie.nodes[v]
	top, found := uint64(0), false
	if n.terminal {
		top, found = n.priority, true
	}
	for _, c := range n.children {
		if c == NoNode {
			continue
		}
		if p, ok := maxTerminal(trie, c); ok && (!found || p > top) {
			top, found = p, true
		}
	}
	return top, found
}

func requireCoherent[P Policy](t *testing.T, trie *Trie[P]) {
	t.Helper()
	for i := range trie.nodes {
		v := NodeID(i)
		wantBest, wantPriority := rescan(trie, v)
		require.Equal(t, wantBest, trie.nodes[v].best, "cached best of node %d", v)
		require.Equal(t, wantPriority, trie.nodes[v].bestPriority, "cached priority of node %d", v)

		top, found := maxTerminal(trie, v)
		if best := trie.Autocomplete(v); best != NoNode {
			require.True(t, found)
			require.Equal(t, top, trie.Priority(best))
		} else if found {
			// only unconfirmed words below v
			require.Zero(t, top, "node %d has a confirmed word but no suggestion", v)
		}
	}
}

func TestNewTrieHasOnlyRoot(t *testing.T) {
	trie := NewFrequency()
	require.Equal(t, 1, trie.NodeCount())
	require.Equal(t, 0, trie.WordCount())
	require.False(t, trie.IsTerminal(trie.Root()))
	require.Equal(t, NoNode, trie.Autocomplete(trie.Root()))
	require.Equal(t, PolicyFrequency, trie.Policy())
	require.Equal(t, PolicyRecency, NewRecency().Policy())
}

func TestInsertCreatesPathAndTerminal(t *testing.T) {
	trie := NewFrequency()
	term := trie.Insert("cat")

	// root + c + a + t + $
	require.Equal(t, 5, trie.NodeCount())
	require.Equal(t, term, terminalOf(t, trie, "cat"))
	word, ok := trie.Word(term)
	require.True(t, ok)
	require.Equal(t, "cat", word)
	require.Equal(t, uint64(0), trie.Priority(term))

	trie.Insert("car")
	require.Equal(t, 7, trie.NodeCount())
	requireCoherent(t, trie)
}

func TestInsertIsIdempotent(t *testing.T) {
	trie := NewFrequency()
	term := trie.Insert("apple")
	trie.UpdatePriority(term)
	trie.UpdatePriority(term)
	nodes := trie.NodeCount()

	again := trie.Insert("apple")
	require.Equal(t, term, again)
	require.Equal(t, nodes, trie.NodeCount())
	require.Equal(t, uint64(2), trie.Priority(term))

	// every insert is stored, the terminal keeps pointing at the first copy
	require.Equal(t, 2, trie.WordCount())
	require.Equal(t, int32(0), trie.nodes[term].word)
	requireCoherent(t, trie)
}

func TestInsertFiltersAlphabet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"uppercase folded", "HeLLo", "hello"},
		{"apostrophe dropped", "don't", "dont"},
		{"digits dropped", "r2d2", "rd"},
		{"non ascii dropped", "café", "caf"},
		{"terminator dropped", "a$b", "ab"},
		{"whitespace dropped", " to go ", "togo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trie := NewRecency()
			term := trie.Insert(tt.input)
			require.Equal(t, term, terminalOf(t, trie, tt.want))
			word, _ := trie.Word(term)
			require.Equal(t, tt.want, word)
		})
	}
}

func TestFilteredInputsCollide(t *testing.T) {
	trie := NewFrequency()
	a := trie.Insert("don't")
	b := trie.Insert("dont")
	require.Equal(t, a, b)
	require.Equal(t, 2, trie.WordCount())
}

func TestInsertEmptyWordUsesRootTerminator(t *testing.T) {
	for _, input := range []string{"", "123", "!?"} {
		trie := NewFrequency()
		term := trie.Insert(input)
		require.Equal(t, 2, trie.NodeCount())
		require.Equal(t, term, trie.Descend(trie.Root(), Terminator))
		word, ok := trie.Word(term)
		require.True(t, ok)
		require.Equal(t, "", word)
		require.Equal(t, term, trie.Autocomplete(term))
		require.Equal(t, NoNode, trie.Autocomplete(trie.Root()))

		trie.UpdatePriority(term)
		require.Equal(t, term, trie.Autocomplete(trie.Root()))
	}
}

func TestDescendAbsent(t *testing.T) {
	trie := NewRecency()
	trie.Insert("cat")

	require.Equal(t, NoNode, trie.DescendPrefix("z"))
	require.Equal(t, NoNode, trie.DescendPrefix("cats"))
	require.Equal(t, NoNode, trie.DescendPrefix("c4t"))
	require.Equal(t, NoNode, trie.Descend(NoNode, 'c'))
	require.Equal(t, NoNode, trie.Descend(NodeID(999), 'c'))
	require.Equal(t, NoNode, trie.Descend(trie.Root(), '#'))
	require.Equal(t, NoNode, trie.Autocomplete(NoNode))
	require.Equal(t, NoNode, trie.Terminal("ca"))

	require.Equal(t, trie.Root(), trie.DescendPrefix(""))
	require.Equal(t, trie.DescendPrefix("ca"), trie.DescendPrefix("CA"))
}

func TestUnconfirmedSubtreeHasNoSuggestion(t *testing.T) {
	for _, index := range []Index{NewFrequency(), NewRecency()} {
		t.Run(index.Policy(), func(t *testing.T) {
			index.Insert("car")
			index.Insert("cat")

			// priority 0 never beats the empty candidate
			require.Equal(t, NoNode, index.Autocomplete(index.DescendPrefix("c")))
			require.Equal(t, NoNode, index.Autocomplete(index.DescendPrefix("cat")))
			require.Equal(t, NoNode, index.Autocomplete(index.Root()))

			// a terminal still suggests itself
			cat := index.Terminal("cat")
			require.Equal(t, cat, index.Autocomplete(cat))

			index.UpdatePriority(cat)
			require.Equal(t, cat, index.Autocomplete(index.DescendPrefix("c")))
			require.Equal(t, cat, index.Autocomplete(index.Root()))
			require.Equal(t, NoNode, index.Autocomplete(index.DescendPrefix("car")))
		})
	}
}

func TestFrequencyScenario(t *testing.T) {
	trie := NewFrequency()
	trie.Insert("car")
	trie.Insert("cat")
	trie.Insert("dog")

	cat := terminalOf(t, trie, "cat")
	car := terminalOf(t, trie, "car")
	trie.UpdatePriority(cat)
	trie.UpdatePriority(cat)
	trie.UpdatePriority(car)

	best := trie.Autocomplete(trie.DescendPrefix("c"))
	require.True(t, trie.IsTerminal(best))
	word, _ := trie.Word(best)
	require.Equal(t, "cat", word)
	require.Equal(t, uint64(2), trie.Priority(best))
	require.Equal(t, uint64(0), trie.Clock())
	requireCoherent(t, trie)
}

func TestRecencyScenario(t *testing.T) {
	trie := NewRecency()
	trie.Insert("dog")
	trie.Insert("door")
	trie.Insert("doom")

	dog := terminalOf(t, trie, "dog")
	door := terminalOf(t, trie, "door")
	doom := terminalOf(t, trie, "doom")
	do := trie.DescendPrefix("do")

	trie.UpdatePriority(dog)
	word, _ := trie.Word(trie.Autocomplete(do))
	require.Equal(t, "dog", word)

	trie.UpdatePriority(door)
	word, _ = trie.Word(trie.Autocomplete(do))
	require.Equal(t, "door", word)

	trie.UpdatePriority(doom)
	word, _ = trie.Word(trie.Autocomplete(do))
	require.Equal(t, "doom", word)

	require.Equal(t, uint64(3), trie.Clock())
	require.Equal(t, uint64(3), trie.Priority(doom))
	requireCoherent(t, trie)
}

func TestRecencyMostRecentWinsRegardlessOfInsertOrder(t *testing.T) {
	trie := NewRecency()
	trie.Insert("car")
	trie.Insert("cat")
	trie.Insert("dog")

	trie.UpdatePriority(terminalOf(t, trie, "car"))
	require.Equal(t, "car", suggestionFor(trie, "c"))
}

func TestTieBreaks(t *testing.T) {
	t.Run("letter edge beats terminator on ties", func(t *testing.T) {
		trie := NewFrequency()
		trie.Insert("car")
		trie.Insert("cart")
		trie.UpdatePriority(terminalOf(t, trie, "cart"))
		trie.UpdatePriority(terminalOf(t, trie, "car"))

		// both at priority 1: slot 't' (19) is visited before '$' (26)
		require.Equal(t, "cart", suggestionFor(trie, "car"))

		trie.UpdatePriority(terminalOf(t, trie, "car"))
		require.Equal(t, "car", suggestionFor(trie, "car"))
	})

	t.Run("terminal suggests itself", func(t *testing.T) {
		trie := NewRecency()
		term := trie.Insert("car")
		trie.Insert("cart")
		trie.UpdatePriority(terminalOf(t, trie, "cart"))
		require.Equal(t, term, trie.Autocomplete(term))
	})

	t.Run("first maximal child wins", func(t *testing.T) {
		trie := NewFrequency()
		trie.Insert("apple")
		trie.Insert("apricot")
		trie.UpdatePriority(terminalOf(t, trie, "apple"))
		trie.UpdatePriority(terminalOf(t, trie, "apricot"))
		require.Equal(t, "apple", suggestionFor(trie, "ap"))

		trie.UpdatePriority(terminalOf(t, trie, "apricot"))
		require.Equal(t, "apricot", suggestionFor(trie, "ap"))
	})
}

func TestUpdatePriorityPanicsOnMisuse(t *testing.T) {
	trie := NewFrequency()
	trie.Insert("cat")

	for name, v := range map[string]NodeID{
		"no node":      NoNode,
		"out of range": NodeID(trie.NodeCount()),
		"root":         trie.Root(),
		"inner node":   trie.DescendPrefix("ca"),
	} {
		t.Run(name, func(t *testing.T) {
			require.PanicsWithError(t,
				"suggest: UpdatePriority("+strconv.Itoa(int(v))+"): "+ErrNotTerminal.Error(),
				func() { trie.UpdatePriority(v) })
		})
	}
}

func TestPriorityIsMonotonic(t *testing.T) {
	for _, index := range []Index{NewFrequency(), NewRecency()} {
		t.Run(index.Policy(), func(t *testing.T) {
			words := []string{"a", "ab", "abc", "b"}
			for _, w := range words {
				index.Insert(w)
			}
			last := make(map[string]uint64)
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				w := words[rng.Intn(len(words))]
				term := index.Terminal(w)
				index.UpdatePriority(term)
				p := index.Priority(term)
				require.Greater(t, p, last[w])
				last[w] = p
			}
		})
	}
}

func TestRecencyClocksAreIsolated(t *testing.T) {
	a, b := NewRecency(), NewRecency()
	a.Insert("x")
	b.Insert("x")

	a.UpdatePriority(a.Terminal("x"))
	a.UpdatePriority(a.Terminal("x"))
	b.UpdatePriority(b.Terminal("x"))

	require.Equal(t, uint64(2), a.Clock())
	require.Equal(t, uint64(1), b.Clock())
	require.Equal(t, uint64(1), b.Priority(b.Terminal("x")))
}

func TestCacheCoherentUnderRandomOperations(t *testing.T) {
	const letters = "abcd"
	for _, index := range []Index{NewFrequency(), NewRecency()} {
		t.Run(index.Policy(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			var inserted []string
			for i := 0; i < 400; i++ {
				if len(inserted) == 0 || rng.Intn(3) == 0 {
					n := rng.Intn(6)
					buf := make([]byte, n)
					for j := range buf {
						buf[j] = letters[rng.Intn(len(letters))]
					}
					index.Insert(string(buf))
					inserted = append(inserted, string(buf))
				} else {
					w := inserted[rng.Intn(len(inserted))]
					index.UpdatePriority(index.Terminal(w))
				}
			}
			switch trie := index.(type) {
			case *Trie[Frequency]:
				requireCoherent(t, trie)
			case *Trie[Recency]:
				requireCoherent(t, trie)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	trie := NewRecency()
	inputs := []string{"Hello", "it's", "World-Wide", "x"}
	for _, in := range inputs {
		trie.Insert(in)
	}
	for _, in := range inputs {
		filtered := Filter(in)
		term := trie.Descend(trie.DescendPrefix(filtered), Terminator)
		word, ok := trie.Word(term)
		require.True(t, ok)
		require.Equal(t, filtered, word)
	}
}
