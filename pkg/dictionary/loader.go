// Package dictionary reads the word lists an index is built from: plain
// text files of whitespace separated words and chunked binary files.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnknownEncoding is returned for text encodings other than utf-8 and latin1.
var ErrUnknownEncoding = errors.New("unknown text encoding")

const maxChunkWords = 1000000

// Supported text encodings.
const (
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin1"
	EncodingWindows = "windows-1252"
)

// Options control how word lists are read.
type Options struct {
	Encoding string
	MaxWords int // 0 reads everything
}

// Option mutates Options.
type Option func(*Options)

// WithEncoding sets the text encoding of word lists.
func WithEncoding(name string) Option {
	return func(o *Options) { o.Encoding = name }
}

// WithMaxWords caps the number of words read.
func WithMaxWords(n int) Option {
	return func(o *Options) { o.MaxWords = n }
}

func buildOptions(opts []Option) Options {
	o := Options{Encoding: EncodingUTF8}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ValidEncoding reports whether name is a supported text encoding.
func ValidEncoding(name string) bool {
	_, err := decoder(name, strings.NewReader(""))
	return err == nil
}

func decoder(name string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingWindows, "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// ReadWords splits r into whitespace separated words, in order.
// Words are returned as read; filtering is the index's job.
func ReadWords(r io.Reader, opts ...Option) ([]string, error) {
	o := buildOptions(opts)
	src, err := decoder(o.Encoding, r)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	var words []string
	for scanner.Scan() {
		words = append(words, scanner.Text())
		if o.MaxWords > 0 && len(words) >= o.MaxWords {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return words, fmt.Errorf("failed to scan words: %w", err)
	}
	return words, nil
}

// LoadFile reads a word list from path, picking the reader by file format.
func LoadFile(path string, opts ...Option) ([]string, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	switch format {
	case FormatText:
		words, err = ReadWords(file, opts...)
	case FormatChunk:
		var entries []Entry
		entries, err = ReadChunk(bufio.NewReader(file))
		words = entryWords(entries, buildOptions(opts).MaxWords)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	log.Debugf("Loaded %d words from %s (%s)", len(words), path, format)
	return words, nil
}

// Load reads a word list from a file, or from every chunk file when path is a directory.
func Load(path string, opts ...Option) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadChunkDir(path, buildOptions(opts).MaxWords)
	}
	return LoadFile(path, opts...)
}

// Entry is one record of a chunk file.
type Entry struct {
	Word string
	Rank uint16
}

func entryWords(entries []Entry, maxWords int) []string {
	if maxWords > 0 && len(entries) > maxWords {
		entries = entries[:maxWords]
	}
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}
	return words
}

// ReadChunk decodes a chunk: int32 word count, then per word a uint16
// length, the word bytes and a uint16 rank, all little endian.
func ReadChunk(r io.Reader) ([]Entry, error) {
	var total int32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if total < 0 || total > maxChunkWords {
		return nil, fmt.Errorf("invalid chunk word count %d", total)
	}

	entries := make([]Entry, 0, total)
	for len(entries) < int(total) {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				return entries, fmt.Errorf("chunk ends after %d of %d words: %w", len(entries), total, io.ErrUnexpectedEOF)
			}
			return entries, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(r, wordBytes); err != nil {
			return entries, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return entries, fmt.Errorf("failed to read rank: %w", err)
		}
		entries = append(entries, Entry{Word: string(wordBytes), Rank: rank})
	}
	return entries, nil
}

// WriteChunk writes words to path in chunk format, ranked by position.
func WriteChunk(path string, words []string) error {
	if len(words) > maxChunkWords {
		return fmt.Errorf("too many words for one chunk: %d", len(words))
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeChunk(file, words); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeChunk encodes words to wc and closes it. A failed Close is reported
// since buffered data may only reach the file then.
func writeChunk(wc io.WriteCloser, words []string) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(wc)
	if err := binary.Write(w, binary.LittleEndian, int32(len(words))); err != nil {
		return err
	}
	for i, word := range words {
		if len(word) > 0xFFFF {
			return fmt.Errorf("word %d too long: %d bytes", i, len(word))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(word))); err != nil {
			return err
		}
		if _, err := w.WriteString(word); err != nil {
			return err
		}
		rank := uint16(min(i+1, 0xFFFF))
		if err := binary.Write(w, binary.LittleEndian, rank); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ChunkID  int
	Filename string
}

// AvailableChunks scans dir for dict_NNNN.bin files, sorted by ID.
func AvailableChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		chunkID, err := strconv.Atoi(idStr)
		if err != nil {
			log.Warnf("Skipping chunk with malformed name: %s", file)
			continue
		}
		chunks = append(chunks, ChunkInfo{ChunkID: chunkID, Filename: file})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkID < chunks[j].ChunkID
	})
	return chunks, nil
}

// LoadChunkDir reads the words of every chunk in dir in chunk order,
// stopping once maxWords words were read (0 reads all).
func LoadChunkDir(dir string, maxWords int) ([]string, error) {
	chunks, err := AvailableChunks(dir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", dir)
	}

	var words []string
	for _, chunk := range chunks {
		remaining := 0
		if maxWords > 0 {
			remaining = maxWords - len(words)
			if remaining <= 0 {
				break
			}
		}
		chunkWords, err := LoadFile(chunk.Filename, WithMaxWords(remaining))
		if err != nil {
			return words, err
		}
		words = append(words, chunkWords...)
		log.Debugf("Chunk %d loaded: %d words", chunk.ChunkID, len(chunkWords))
	}
	return words, nil
}
