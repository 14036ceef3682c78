package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoWords is returned when the dictionary yields no words.
var ErrNoWords = errors.New("dictionary is empty")

// Runner runs every experiment for both policies and writes the CSV reports.
type Runner struct {
	bench config.BenchConfig
	dict  config.DictConfig

	// Resolve maps configured paths to files on disk. Defaults to identity.
	Resolve func(string) string

	log *log.Logger
}

// NewRunner creates a runner for the bench and dict sections of cfg.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		bench:   cfg.Bench,
		dict:    cfg.Dict,
		Resolve: func(p string) string { return p },
		log:     logger.New("bench"),
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.log = l
}

// dataset is a loaded typing text.
type dataset struct {
	name  string
	words []string
}

// Run loads the dictionary and datasets, then runs both policies concurrently,
// each on indexes of its own. Datasets that fail to load are skipped.
func (r *Runner) Run(ctx context.Context) error {
	opts := []dictionary.Option{
		dictionary.WithEncoding(r.dict.Encoding),
		dictionary.WithMaxWords(r.dict.MaxWords),
	}

	words, err := dictionary.Load(r.Resolve(r.dict.Path), opts...)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("%s: %w", r.dict.Path, ErrNoWords)
	}
	r.log.Infof("Loaded %d dictionary words from %s", len(words), r.dict.Path)

	var texts []dataset
	for _, path := range r.bench.Datasets {
		text, err := dictionary.Load(r.Resolve(path), dictionary.WithEncoding(r.dict.Encoding))
		if err != nil || len(text) == 0 {
			r.log.Warnf("Skipping dataset %s: %v", path, err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		texts = append(texts, dataset{name: name, words: text})
		r.log.Infof("Loaded %d text words from %s", len(text), path)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, policy := range []string{suggest.PolicyFrequency, suggest.PolicyRecency} {
		policy := policy
		g.Go(func() error {
			return r.runPolicy(ctx, policy, words, texts)
		})
	}
	return g.Wait()
}

func (r *Runner) runPolicy(ctx context.Context, policy string, words []string, texts []dataset) error {
	began := time.Now()

	mem, err := Memory(ctx, policy, words, r.bench.MemoryMaxExp)
	if err != nil {
		return fmt.Errorf("memory experiment (%s): %w", policy, err)
	}
	if err := r.save("memory_"+policy+".csv", func(w io.Writer) error { return WriteMemory(w, mem) }); err != nil {
		return err
	}
	if n := len(mem); n > 0 {
		r.log.Infof("[%s] memory: %d nodes, %.4f nodes/char", policy, mem[n-1].NodeCount, mem[n-1].NodesPerChar)
	}

	times, err := Timing(ctx, policy, words, r.bench.TimeBatches)
	if err != nil {
		return fmt.Errorf("time experiment (%s): %w", policy, err)
	}
	if err := r.save("time_"+policy+".csv", func(w io.Writer) error { return WriteTime(w, times) }); err != nil {
		return err
	}

	index, err := suggest.NewIndex(policy)
	if err != nil {
		return err
	}
	for _, w := range words {
		index.Insert(w)
	}

	// Texts run in order against the same index, so priorities carry over.
	for _, text := range texts {
		res, err := Typing(ctx, index, text.words, r.bench.TypingMaxExp)
		if err != nil {
			return fmt.Errorf("typing experiment (%s, %s): %w", policy, text.name, err)
		}
		name := "autocomplete_" + policy + "_" + text.name + ".csv"
		if err := r.save(name, func(w io.Writer) error { return WriteTyping(w, res) }); err != nil {
			return err
		}
		if n := len(res); n > 0 {
			r.log.Infof("[%s] %s: %.2f%% of characters typed", policy, text.name, res[n-1].Percentage)
		}
	}

	r.log.Infof("[%s] done in %s", policy, time.Since(began).Round(time.Millisecond))
	return nil
}

func (r *Runner) save(name string, write func(io.Writer) error) error {
	path := filepath.Join(r.bench.OutputDir, name)
	if err := saveCSV(path, write); err != nil {
		return err
	}
	r.log.Debugf("Wrote %s", path)
	return nil
}
