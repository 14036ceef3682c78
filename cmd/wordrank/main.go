// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordrank command: a ranked word completion
server, an interactive CLI and an experiment runner.

wordrank keeps every inserted word in a prefix trie whose nodes cache the best
completion of their subtree. For any typed prefix the suggestion is therefore
a single lookup, while confirming a word only updates the caches on its path
to the root. The ranking policy is chosen once, when the index is built:

	frequency  words confirmed more often win
	recency    the most recently confirmed word wins

# Usage

Start the msgpack server with default settings:

	wordrank

Use a custom config file and enable debug mode:

	wordrank --config ./wordrank.toml -d

Run the interactive CLI:

	wordrank cli --limit 10 --prmin 2

Run the memory, insertion time and typing experiments and write CSV reports:

	wordrank bench --out results/

# Configuration

Runtime configuration is managed through a TOML file, created with defaults
at ~/.config/wordrank/config.toml when missing:

	[index]
	policy = "frequency"

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true
	learn_unknown = false

	[dict]
	path = "data/words.txt"
	encoding = "utf-8"
	max_words = 0

	[bench]
	output_dir = "out"
	datasets = ["data/wikipedia.txt", "data/random.txt"]
	memory_max_exp = 17
	typing_max_exp = 21
	time_batches = 16

The [server] section is reloaded while the server runs. The policy is read
once at startup.

# Dictionaries

dict.path may name a plain text file of whitespace separated words, a
dict_NNNN.bin chunk file, or a directory of chunk files. Relative paths are
looked up in the working directory, next to the executable and in the config
directory. Words are lowercased and stripped of anything outside a-z when
indexed.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, one response per
request, with microsecond timing on completions:

	{"id": "req1", "p": "hel", "l": 20}
	{"id": "req1", "s": [{"w": "hello", "r": 1, "p": 12}, {"w": "help", "r": 2, "p": 4}], "c": 2, "t": 31}

Typed words are reported back so the ranking learns:

	{"id": "req2", "action": "confirm", "w": "help"}

See package server for every action.
*/
package main

import (
	"fmt"
	"os"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	gh      = "https://github.com/bastiangx/wordrank"
)

// global flags
var (
	configFile string
	debugMode  bool
	dictPath   string
	policyName string
	wordLimit  int
)

var rootCmd = &cobra.Command{
	Use:   "wordrank",
	Short: "Ranked word completions from a self-updating prefix index",
	Long: "wordrank suggests the best completion of a prefix from a dictionary, " +
		"ranked by how often or how recently words were confirmed. " +
		"Without a subcommand it serves msgpack requests on stdin/stdout.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(debugMode)
	},
	RunE: runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a TOML config file (default: user config dir)")
	flags.BoolVarP(&debugMode, "debug", "d", false, "Toggle debug mode")
	flags.StringVar(&dictPath, "data", "", "Dictionary file or chunk directory (overrides dict.path)")
	flags.StringVar(&policyName, "policy", "", "Ranking policy: frequency or recency (overrides index.policy)")
	flags.IntVar(&wordLimit, "words", -1, "Maximum number of words to load, 0 for all (overrides dict.max_words)")

	rootCmd.AddCommand(serveCmd(), cliCmd(), benchCmd(), versionCmd())
}

// main only wires the commands; each subcommand manages its own flow.
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		fmt.Fprintln(os.Stderr, "use -h or --help to see available options")
		os.Exit(1)
	}
}
