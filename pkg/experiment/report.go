package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/bastiangx/wordrank/internal/utils"
)

// CSV headers, one per result type.
var (
	MemoryHeader = []string{"words_inserted", "chars_inserted", "node_count", "nodes_per_char"}
	TimeHeader   = []string{"words_inserted", "chars_in_batch", "time_ms", "time_per_char_ms"}
	TypingHeader = []string{"words_processed", "total_chars", "chars_typed", "percentage"}
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func writeRecords(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteMemory writes memory results as CSV.
func WriteMemory(w io.Writer, results []MemoryResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(r.WordsInserted),
			strconv.Itoa(r.CharsInserted),
			strconv.Itoa(r.NodeCount),
			formatFloat(r.NodesPerChar),
		}
	}
	return writeRecords(w, MemoryHeader, rows)
}

// WriteTime writes insertion time results as CSV.
func WriteTime(w io.Writer, results []TimeResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(r.WordsInserted),
			strconv.Itoa(r.CharsInBatch),
			formatFloat(r.TimeMs),
			formatFloat(r.TimePerCharMs),
		}
	}
	return writeRecords(w, TimeHeader, rows)
}

// WriteTyping writes typing simulation results as CSV.
func WriteTyping(w io.Writer, results []TypingResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(r.WordsProcessed),
			strconv.Itoa(r.TotalChars),
			strconv.Itoa(r.CharsTyped),
			formatFloat(r.Percentage),
		}
	}
	return writeRecords(w, TypingHeader, rows)
}

// saveCSV creates path and fills it with write.
func saveCSV(path string, write func(io.Writer) error) error {
	file, err := utils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
