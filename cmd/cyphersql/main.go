// Command cyphersql is a development and manual-testing aid for the
// cyphersql package: it reads a Cypher query, translates it, and prints
// the resulting SQL and parameters. It is not part of the core contract;
// the core package never logs or touches a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cmd := &cli.Command{
		Name:  "cyphersql",
		Usage: "translate a Cypher query into parameterised SQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "params",
				Aliases: []string{"p"},
				Usage:   "JSON object of named parameter values",
			},
			&cli.StringFlag{
				Name:    "tenant",
				Aliases: []string{"t"},
				Usage:   "tenant id (group_id); overrides .cyphersql.yaml",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "path to a schema YAML file overriding the built-in column set",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		ArgsUsage: "[query]",
		Action:    runTranslate,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, colorizeError(err.Error()))
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
