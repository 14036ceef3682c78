package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, c *suggest.Completer, input string) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandler(c, strings.NewReader(input), &out, 1, 10, 5, false)
	require.NoError(t, h.Start())
	return out.String()
}

func newCompleter(t *testing.T, words ...string) *suggest.Completer {
	t.Helper()
	index, err := suggest.NewIndex(suggest.PolicyFrequency)
	require.NoError(t, err)
	c := suggest.NewCompleter(index)
	c.AddWords(words)
	return c
}

func TestInputHandlerSession(t *testing.T) {
	c := newCompleter(t, "car", "cart", "cat")

	out := run(t, c, "!cat\n!cat\nca\n+cab\n!cow\n:stats\n")
	require.Contains(t, out, "Confirmed cat (priority: 2)")
	require.Contains(t, out, "Found 3 suggestions for prefix 'ca'")
	require.Contains(t, out, "Inserted cab")
	require.Contains(t, out, "Cannot confirm")
	require.Contains(t, out, "confirms")

	s, ok := c.Suggest("ca")
	require.True(t, ok)
	require.Equal(t, "cat", s.Word)
}

func TestInputHandlerRejects(t *testing.T) {
	c := newCompleter(t, "hello")

	out := run(t, c, "helloworldxyz\nhhhh\nzz\n")
	require.Contains(t, out, "Prefix too long")
	require.Contains(t, out, "filtered out")
	require.Contains(t, out, "No suggestions found for prefix: 'zz'")
}

func TestInputHandlerQuit(t *testing.T) {
	c := newCompleter(t, "hello")
	out := run(t, c, ":q\n+never\n")
	require.NotContains(t, out, "Inserted")
	require.Equal(t, 1, c.Stats()["inserts"])
}
