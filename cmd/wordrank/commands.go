package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordrank/internal/cli"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/experiment"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// loadConfig resolves the config file and applies the global flag overrides.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadConfigWithPriority(configFile)
	if err != nil {
		return nil, "", err
	}
	if dictPath != "" {
		cfg.Dict.Path = dictPath
	}
	if policyName != "" {
		cfg.Index.Policy = policyName
	}
	if wordLimit >= 0 {
		cfg.Dict.MaxWords = wordLimit
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(path))
	return cfg, path, nil
}

// resolver returns a path lookup, falling back to paths as given.
func resolver() func(string) string {
	pr, err := utils.NewPathResolver(config.AppName)
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
		return func(p string) string { return p }
	}
	return pr.Resolve
}

// buildCompleter creates the index and fills it from the configured dictionary.
// A missing dictionary leaves the index empty rather than failing.
func buildCompleter(cfg *config.Config) (*suggest.Completer, error) {
	index, err := suggest.NewIndex(cfg.Index.Policy)
	if err != nil {
		return nil, err
	}
	completer := suggest.NewCompleter(index)

	path := resolver()(cfg.Dict.Path)
	words, err := dictionary.Load(path,
		dictionary.WithEncoding(cfg.Dict.Encoding),
		dictionary.WithMaxWords(cfg.Dict.MaxWords))
	if err != nil {
		log.Warnf("Failed to load dictionary, running with empty dict: %v", err)
		return completer, nil
	}

	completer.AddWords(words)
	log.Debugf("Init completer: policy=[%s] words=[%d] nodes=[%d]", index.Policy(), len(words), index.NodeCount())
	return completer, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve msgpack completion requests on stdin/stdout (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	completer, err := buildCompleter(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(completer, cfg.Server, os.Stdin, os.Stdout)
	showStartupInfo(cfg, completer)

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	if configPath != "" {
		g.Go(func() error { return srv.WatchConfig(watchCtx, configPath) })
	}

	// Reading stdin cannot be interrupted, so the server is not part of the
	// group; a signal ends the command even while a read is pending.
	served := make(chan error, 1)
	go func() { served <- srv.Start(gctx) }()

	select {
	case err = <-served:
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
	}
	stopWatch()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		log.Errorf("Config watcher: %v", werr)
	}
	log.Debugf("Served %d requests", srv.Requests())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(cfg *config.Config, completer *suggest.Completer) {
	stats := completer.Stats()
	log.Debugf("Version: %s", Version)
	log.Debugf("Process ID: [ %d ]", os.Getpid())
	log.Debugf("policy: %s", cfg.Index.Policy)
	log.Debugf("words: %s, nodes: %s", humanize.Comma(int64(stats["words"])), humanize.Comma(int64(stats["nodes"])))
	log.Debug("status: ready")
}

func cliCmd() *cobra.Command {
	defaults := config.DefaultConfig().CLI
	var (
		limit     int
		minPrefix int
		maxPrefix int
		noFilter  bool
	)

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Interactive prompt to try suggestions, useful for testing and debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			// Flags left unset fall back to the config file.
			flags := cmd.Flags()
			if !flags.Changed("limit") {
				limit = cfg.CLI.DefaultLimit
			}
			if !flags.Changed("prmin") {
				minPrefix = cfg.CLI.DefaultMinLen
			}
			if !flags.Changed("prmax") {
				maxPrefix = cfg.CLI.DefaultMaxLen
			}
			if !flags.Changed("no-filter") {
				noFilter = cfg.CLI.DefaultNoFilter
			}

			completer, err := buildCompleter(cfg)
			if err != nil {
				return err
			}
			log.Debug("Input info:",
				"minPrefix", minPrefix,
				"maxPrefix", maxPrefix,
				"limit", limit,
				"noFilter", noFilter)

			handler := cli.NewInputHandler(completer, os.Stdin, os.Stdout, minPrefix, maxPrefix, limit, noFilter)
			return handler.Start()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaults.DefaultLimit, "Number of suggestions to return")
	cmd.Flags().IntVar(&minPrefix, "prmin", defaults.DefaultMinLen, "Minimum prefix length for suggestions")
	cmd.Flags().IntVar(&maxPrefix, "prmax", defaults.DefaultMaxLen, "Maximum prefix length for suggestions")
	cmd.Flags().BoolVar(&noFilter, "no-filter", defaults.DefaultNoFilter, "Disable input filtering (DBG only)")
	return cmd
}

func benchCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the memory, insertion time and typing experiments for both policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Bench.OutputDir = outDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := experiment.NewRunner(cfg)
			runner.Resolve = resolver()
			if err := runner.Run(ctx); err != nil {
				return err
			}
			log.Printf("Reports written to %s", utils.GetAbsolutePath(cfg.Bench.OutputDir))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for CSV reports (overrides bench.output_dir)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Run: func(cmd *cobra.Command, args []string) {
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    false,
				ReportTimestamp: false,
				Prefix:          "",
			})

			styles := log.DefaultStyles()
			styles.Values["version"] = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
				Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
			styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
			logger.SetStyles(styles)

			logger.Print("")
			logger.Print("[ wordrank ] the best completion, one lookup away")
			logger.Print("", "version", Version)
			logger.Print("")
			logger.Print("use -h or --help to see available options")
			logger.Print("Github Repo", "gh", gh)
		},
	}
}
