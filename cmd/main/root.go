package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// app carries the flag values and the state loaded before every command.
type app struct {
	configPath string
	dbPath     string
	dictPath   string
	logLevel   string
	format     string

	cfg    *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "glossa",
		Short:         "Generate text from dictionary definitions with a Markov chain",
		Long:          "Glossa builds an n-gram Markov chain from the definitions of a dictionary and samples it to produce text.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "./glossa.json", "Config file (.json, .yaml or .yml)")
	flags.StringVarP(&a.dbPath, "db", "d", "", "SQLite database path (overrides config)")
	flags.StringVar(&a.dictPath, "dict", "", "Read the dictionary from this CSV file instead of the database")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.StringVarP(&a.format, "format", "f", formatText, "Output format: text or json")

	root.AddCommand(
		newGenerateCmd(a),
		newCleanCmd(a),
		newImportCmd(a),
		newStatsCmd(a),
		newWordsCmd(a),
		newRunsCmd(a),
		newPruneCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the config file, applies flag overrides and validates the result.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabasePath = a.dbPath
	}
	if flags.Changed("dict") {
		cfg.DictionaryPath = a.dictPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if a.format != formatText && a.format != formatJSON {
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, a.format)
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	a.cfg = cfg
	a.logger = newLogger(level, cmd.ErrOrStderr())
	return nil
}

// openStore opens the configured database and prepares the dictionary store.
// The returned function closes both.
func (a *app) openStore() (*dictionary.Store, func(), error) {
	if dir := filepath.Dir(a.cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := initDB(a.cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = dictionary.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup dictionary schema: %w", err)
	}
	store, err := dictionary.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare dictionary store: %w", err)
	}
	store.SetLogger(a.logger)

	return store, func() {
		store.Close()
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}, nil
}

// loadDictionary reads the dictionary from the configured CSV file, or from
// the database when no file is set.
func (a *app) loadDictionary(ctx context.Context) (*dictionary.Dictionary, error) {
	if path := a.cfg.DictionaryPath; path != "" {
		d, err := readCSVFile(path, a.cfg.Lowercase)
		if err != nil {
			return nil, err
		}
		a.logger.InfoContext(ctx, "Dictionary read from CSV",
			slog.String("path", path),
			slog.Int("words", d.Len()),
		)
		return d, nil
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	d, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	a.logger.InfoContext(ctx, "Dictionary loaded from database",
		slog.String("path", a.cfg.DatabasePath),
		slog.Int("words", d.Len()),
	)
	return d, nil
}

func readCSVFile(path string, lowercase bool) (*dictionary.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	d, err := dictionary.ReadCSV(f, dictionary.CSVOptions{Lowercase: lowercase})
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	return d, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glossa %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
