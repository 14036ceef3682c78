package experiment

import (
	"context"

	"github.com/bastiangx/wordrank/pkg/suggest"
)

// Memory inserts words into a fresh index of the named policy and records
// the node count at every checkpoint.
func Memory(ctx context.Context, policy string, words []string, maxExp int) ([]MemoryResult, error) {
	index, err := suggest.NewIndex(policy)
	if err != nil {
		return nil, err
	}

	checkpoints := Checkpoints(maxExp, len(words))
	results := make([]MemoryResult, 0, len(checkpoints))
	next, chars := 0, 0

	for i, w := range words {
		if err := checkContext(ctx, i); err != nil {
			return results, err
		}
		index.Insert(w)
		chars += charCount(w)

		if next < len(checkpoints) && i+1 == checkpoints[next] {
			res := MemoryResult{
				WordsInserted: i + 1,
				CharsInserted: chars,
				NodeCount:     index.NodeCount(),
			}
			res.NodesPerChar = ratio(float64(res.NodeCount), float64(chars))
			results = append(results, res)
			next++
		}
	}
	return results, nil
}
