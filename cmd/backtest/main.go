package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/version"
	"github.com/urfave/cli/v3"
)

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return logger.NewLoggerWithLevel(level)
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Run config with engine, strategy and grid sections",
		Required: true,
	}
	dataFlag := &cli.StringFlag{
		Name:     "data",
		Aliases:  []string{"d"},
		Usage:    "Bar file (.csv or .parquet)",
		Required: true,
	}
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Root folder for results",
		Value:   "results",
	}

	return &cli.Command{
		Name:    "backtest",
		Usage:   "Bar by bar backtester with volatility sizing and drawdown control",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one backtest and write its report",
				Flags: []cli.Flag{
					configFlag,
					dataFlag,
					outputFlag,
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log the decision trace of every bar at debug level",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Hide the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:  "grid",
				Usage: "Run every combination of the config's grid section",
				Flags: []cli.Flag{
					configFlag,
					dataFlag,
					outputFlag,
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent runs, 0 uses every CPU",
						Value:   0,
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Folder of cached grid records",
						Value: "",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Run every combination even when a cached record exists",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of ranked runs to print",
						Value: 10,
					},
				},
				Action: gridAction,
			},
			{
				Name:  "schema",
				Usage: "Write the JSON schemas of the engine and strategy configs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Folder for the schema files",
						Value:   "config",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
