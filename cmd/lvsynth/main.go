// SPDX-License-Identifier: MIT

// Command lvsynth fits a survey file, builds a Gaussian-copula model,
// samples synthetic responses and reports how well they match.
//
// Usage:
//
//	lvsynth -input survey.csv [-schema schema.yaml] [-config lvsynth.yaml] [-n 500] [-out samples.json]
//
// Output is one JSON document with the run ID, correlation matrix, fitted
// marginals, samples and validation report. Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/katalvlaran/lvsynth/config"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/ingest"
	"github.com/katalvlaran/lvsynth/pipeline"
	"github.com/katalvlaran/lvsynth/store"
	_ "github.com/katalvlaran/lvsynth/store/postgres"
	_ "github.com/katalvlaran/lvsynth/store/sqlite"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	config, input, schema, out string
	n                          int
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("lvsynth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.StringVar(&f.input, "input", "", "survey file (.csv or .json)")
	fs.StringVar(&f.schema, "schema", "", "YAML schema file; inferred from CSV when omitted")
	fs.StringVar(&f.out, "out", "", "output file (default stdout)")
	fs.IntVar(&f.n, "n", -1, "number of synthetic records (default from config)")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.input == "" {
		fs.Usage()
		return f, errors.New("-input is required")
	}

	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "lvsynth:", err)
		return exitUsage
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintln(stderr, "lvsynth:", err)
		return exitUsage
	}
	log := setupLogger(cfg, stderr)
	if f.n >= 0 {
		cfg.Generate.Samples = f.n
	}

	if err := generate(ctx, cfg, f, stdout, log); err != nil {
		log.Error("run failed", "error", err)
		return exitError
	}

	return exitOK
}

func generate(ctx context.Context, cfg *config.Config, f flags, stdout io.Writer, log *slog.Logger) error {
	data, err := readInput(ctx, f)
	if err != nil {
		return err
	}
	log.Info("input loaded", "path", f.input, "records", len(data.Responses), "fields", len(data.Schema))

	res, err := pipeline.GenerateAndValidate(ctx, data, cfg.Generate.Samples, cfg.PipelineOptions(log))
	if err != nil {
		return err
	}
	log.Info("run complete", "run_id", res.RunID.String(), "score", res.Validation.Score)

	if cfg.Store.Kind != "" {
		if err := persist(ctx, cfg, res, log); err != nil {
			return err
		}
	}

	return writeOutput(f.out, stdout, res)
}

func readInput(ctx context.Context, f flags) (*dataset.Dataset, error) {
	var schema dataset.Schema
	if f.schema != "" {
		sf, err := os.Open(f.schema)
		if err != nil {
			return nil, err
		}
		defer sf.Close()
		if schema, err = ingest.ReadSchema(sf); err != nil {
			return nil, fmt.Errorf("schema %s: %w", f.schema, err)
		}
	}

	in, err := os.Open(f.input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	switch strings.ToLower(filepath.Ext(f.input)) {
	case ".json":
		return ingest.ReadJSON(in, schema)
	case ".tsv":
		return ingest.ReadCSV(ctx, in, schema, ingest.CSVOptions{Comma: '\t', Source: f.input})
	}

	return ingest.ReadCSV(ctx, in, schema, ingest.CSVOptions{Source: f.input})
}

func persist(ctx context.Context, cfg *config.Config, res *pipeline.Result, log *slog.Logger) error {
	repo, err := store.New(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer repo.Close()

	m := store.NewModel(cfg.Generate.ModelName, res.RunID, res.Joint)
	if res.Validation != nil {
		score := res.Validation.Score
		m.Score = &score
	}
	if err := repo.Save(ctx, &m); err != nil {
		return err
	}
	log.Info("model stored", "model_id", m.ID.String(), "kind", cfg.Store.Kind)

	return nil
}

func writeOutput(path string, stdout io.Writer, res *pipeline.Result) (err error) {
	w := stdout
	if path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer closeWith(f, path, &err)
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

// closeWith closes c and reports its error through err unless err is already set.
func closeWith(c io.Closer, name string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", name, cerr)
	}
}

// setupLogger builds the slog handler from the log section.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
