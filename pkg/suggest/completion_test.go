package suggest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T, policy string, words ...string) *Completer {
	t.Helper()
	index, err := NewIndex(policy)
	require.NoError(t, err)
	c := NewCompleter(index)
	c.AddWords(words)
	return c
}

func TestNewIndex(t *testing.T) {
	for _, policy := range []string{PolicyFrequency, PolicyRecency} {
		index, err := NewIndex(policy)
		require.NoError(t, err)
		require.Equal(t, policy, index.Policy())
	}

	_, err := NewIndex("lru")
	require.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = ParsePolicy("")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestCompleterSuggest(t *testing.T) {
	c := newTestCompleter(t, PolicyFrequency, "car", "cat", "dog")

	_, err := c.Confirm("cat")
	require.NoError(t, err)

	s, ok := c.Suggest("c")
	require.True(t, ok)
	require.Equal(t, Suggestion{Word: "cat", Priority: 1, Best: true}, s)

	s, ok = c.Suggest("Ca")
	require.True(t, ok)
	require.Equal(t, "Cat", s.Word)

	_, ok = c.Suggest("x")
	require.False(t, ok)
}

func TestCompleterComplete(t *testing.T) {
	c := newTestCompleter(t, PolicyFrequency, "do", "dog", "door", "doom", "cat")
	for _, w := range []string{"door", "door", "doom", "dog", "dog"} {
		_, err := c.Confirm(w)
		require.NoError(t, err)
	}

	got := c.Complete("do", 0)
	require.Equal(t, []Suggestion{
		{Word: "dog", Priority: 2, Best: true},
		{Word: "door", Priority: 2},
		{Word: "doom", Priority: 1},
		{Word: "do", Priority: 0},
	}, got)

	require.Len(t, c.Complete("do", 2), 2)
	require.Equal(t, "DOg", c.Complete("DO", 1)[0].Word)
	require.Nil(t, c.Complete("x", 5))
	require.Nil(t, c.Complete("d-o", 5))
}

func TestCompleterListsUnconfirmedWords(t *testing.T) {
	c := newTestCompleter(t, PolicyFrequency, "dog", "door", "cat")

	_, ok := c.Suggest("do")
	require.False(t, ok)
	require.Equal(t, []Suggestion{
		{Word: "dog"},
		{Word: "door"},
	}, c.Complete("do", 0))

	_, err := c.Confirm("door")
	require.NoError(t, err)
	require.Equal(t, []Suggestion{
		{Word: "door", Priority: 1, Best: true},
		{Word: "dog"},
	}, c.Complete("do", 0))
}

func TestCompleterConfirm(t *testing.T) {
	c := newTestCompleter(t, PolicyRecency, "dog", "door")

	s, err := c.Confirm("Door")
	require.NoError(t, err)
	require.Equal(t, "door", s.Word)
	require.Equal(t, uint64(1), s.Priority)

	_, err = c.Confirm("cat")
	require.True(t, errors.Is(err, ErrUnknownWord))

	stats := c.Stats()
	require.Equal(t, 2, stats["words"])
	require.Equal(t, 2, stats["inserts"])
	require.Equal(t, 1, stats["confirms"])
	require.Equal(t, 1, stats["clock"])
	require.Equal(t, c.Index().NodeCount(), stats["nodes"])
}

func TestCompleterDuplicateWords(t *testing.T) {
	c := newTestCompleter(t, PolicyFrequency, "it's", "its", "its")
	stats := c.Stats()
	require.Equal(t, 1, stats["words"])
	require.Equal(t, 3, stats["stored"])
	require.Len(t, c.Complete("it", 0), 1)
}

func TestApplyCapitalization(t *testing.T) {
	tests := []struct {
		word   string
		prefix string
		want   string
	}{
		{"hello", "He", "Hello"},
		{"hello", "hE", "hEllo"},
		{"hello", "", "hello"},
		{"hi", "HELLO", "HI"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ApplyCapitalization(tt.word, CapitalPositions(tt.prefix)))
	}
}

func TestAutocompleteDoesNotAllocate(t *testing.T) {
	c := newTestCompleter(t, PolicyFrequency, "hello", "help", "helmet", "world")
	index := c.Index()
	v := index.DescendPrefix("hel")

	allocs := testing.AllocsPerRun(1000, func() {
		_ = index.Autocomplete(v)
		_ = index.DescendPrefix("hel")
	})
	require.Zero(t, allocs)
}
