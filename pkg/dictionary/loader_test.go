package dictionary

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadWords(t *testing.T) {
	words, err := ReadWords(strings.NewReader("the quick\n\tbrown  fox\r\njumps\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"the", "quick", "brown", "fox", "jumps"}, words)

	words, err = ReadWords(strings.NewReader("a b c d"), WithMaxWords(2))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, words)

	words, err = ReadWords(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, words)
}

func TestReadWordsLatin1(t *testing.T) {
	// "canción niño" in ISO-8859-1
	raw := []byte{'c', 'a', 'n', 'c', 'i', 0xF3, 'n', ' ', 'n', 'i', 0xF1, 'o'}
	words, err := ReadWords(strings.NewReader(string(raw)), WithEncoding(EncodingLatin1))
	require.NoError(t, err)
	require.Equal(t, []string{"canción", "niño"}, words)

	_, err = ReadWords(strings.NewReader("x"), WithEncoding("ebcdic"))
	require.ErrorIs(t, err, ErrUnknownEncoding)

	require.True(t, ValidEncoding("UTF-8"))
	require.True(t, ValidEncoding(EncodingWindows))
	require.False(t, ValidEncoding("klingon"))
}

func TestChunkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict_0001.bin")
	require.NoError(t, WriteChunk(path, []string{"hello", "help", "world"}))

	format, err := DetectFileFormat(path)
	require.NoError(t, err)
	require.Equal(t, FormatChunk, format)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	entries, err := ReadChunk(file)
	require.NoError(t, err)
	require.Equal(t, []Entry{{"hello", 1}, {"help", 2}, {"world", 3}}, entries)

	words, err := LoadFile(path, WithMaxWords(2))
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "help"}, words)
}

func TestReadChunkTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict_0001.bin")
	require.NoError(t, WriteChunk(path, []string{"hello", "help", "world"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// cut right after the second record: 4 + (2+5+2) + (2+4+2)
	cut := 4 + 9 + 8
	entries, err := ReadChunk(bytes.NewReader(data[:cut]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Len(t, entries, 2)

	// cut inside a record
	_, err = ReadChunk(bytes.NewReader(data[:cut+3]))
	require.Error(t, err)

	truncated := writeFile(t, dir, "dict_0002.bin", data[:cut])
	_, err = LoadFile(truncated)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type closeFailer struct {
	bytes.Buffer
	err error
}

func (c *closeFailer) Close() error { return c.err }

func TestWriteChunkReportsCloseError(t *testing.T) {
	errClose := errors.New("disk gone")
	out := &closeFailer{err: errClose}
	require.ErrorIs(t, writeChunk(out, []string{"a", "b"}), errClose)
	// data was flushed before Close
	entries, err := ReadChunk(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, writeChunk(&closeFailer{}, []string{"a"}))
}

func TestLoadChunkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteChunk(filepath.Join(dir, "dict_0002.bin"), []string{"c", "d"}))
	require.NoError(t, WriteChunk(filepath.Join(dir, "dict_0001.bin"), []string{"a", "b"}))
	writeFile(t, dir, "dict_bad.bin", []byte{0, 0, 0, 0})

	chunks, err := AvailableChunks(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, 1, chunks[0].ChunkID)

	words, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, words)

	words, err = LoadChunkDir(dir, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, words)

	_, err = LoadChunkDir(t.TempDir(), 0)
	require.Error(t, err)
}

func TestLoadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "words.txt", []byte("car\ncat\ndog\n"))

	words, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"car", "cat", "dog"}, words)
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()

	_, err := DetectFileFormat(writeFile(t, dir, "words.csv", []byte("a,b")))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = DetectFileFormat(writeFile(t, dir, "dict_0009.bin", []byte{1}))
	require.Error(t, err)

	_, err = DetectFileFormat(writeFile(t, dir, "dict_0010.bin", []byte{0xFF, 0xFF, 0xFF, 0xFF}))
	require.ErrorContains(t, err, "negative")

	format, err := DetectFileFormat(writeFile(t, dir, "words.lst", nil))
	require.NoError(t, err)
	require.Equal(t, FormatText, format)
	require.Equal(t, "Plain Text Word List", format.String())
}
