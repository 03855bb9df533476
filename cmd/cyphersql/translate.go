package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/cyphersql/cyphersql"
	"github.com/cyphersql/cyphersql/schema"
)

// ErrNoQuery is returned when neither an argument nor stdin supplies a
// query to translate.
var ErrNoQuery = errors.New("no query given (pass it as an argument or pipe it on stdin)")

func runTranslate(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd.Bool("verbose"))
	defer func() { _ = logger.Sync() }()

	query, err := readQuery(cmd)
	if err != nil {
		return err
	}

	cfg, configDir, err := cyphersql.LoadConfig(".")
	if err != nil {
		return err
	}

	tenant := cmd.String("tenant")
	if tenant == "" && cfg != nil {
		tenant = cfg.Tenant
	}

	schemaPath := cmd.String("schema")
	if schemaPath == "" && cfg != nil {
		schemaPath = cfg.Schema
	}
	sch, err := schema.Load(schemaPath, configDir)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	params, err := parseParams(cmd.String("params"))
	if err != nil {
		return fmt.Errorf("parsing --params: %w", err)
	}

	start := time.Now()
	parsed, err := cyphersql.Parse(query)
	if err != nil {
		return err
	}
	logger.Debug("parsed query", zap.Duration("elapsed", time.Since(start)))

	sql, sqlParams, err := cyphersql.Generate(parsed, params, tenant, sch)
	if err != nil {
		return err
	}
	logger.Info("generated sql", zap.String("sql", sql), zap.Int("params", len(sqlParams)))

	fmt.Println(sql)
	for i, p := range sqlParams {
		fmt.Printf("  $%d = %v\n", i+1, p)
	}
	return nil
}

func readQuery(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return cmd.Args().First(), nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return "", ErrNoQuery
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func parseParams(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}

// colorizeError wraps msg in ANSI red when stderr is a terminal, matching
// the teacher's terminal-vs-pipe detection for CLI output.
func colorizeError(msg string) string {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return "error: " + msg
	}
	const red, reset = "\x1b[31m", "\x1b[0m"
	return red + "error: " + msg + reset
}
