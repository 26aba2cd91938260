package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	engine_v1 "github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/forest/internal/strategy"
	"github.com/urfave/cli/v3"
)

const (
	engineSchemaFile   = "backtest-engine-v1-config.json"
	strategySchemaFile = "strategy-config.json"
)

func schemaAction(_ context.Context, cmd *cli.Command) error {
	paths, err := writeSchemas(cmd.String("output"))
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintf(os.Stdout, "schema written to %s\n", path)
	}

	return nil
}

func writeSchemas(dir string) ([]string, error) {
	engineConfig := engine_v1.DefaultConfig()

	engineSchema, err := engineConfig.GenerateSchemaJSON()
	if err != nil {
		return nil, err
	}

	strategyConfig := strategy.DefaultStrategyConfig()

	strategySchema, err := strategyConfig.GenerateSchemaJSON()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create schema folder: %w", err)
	}

	files := map[string]string{
		engineSchemaFile:   engineSchema,
		strategySchemaFile: strategySchema,
	}

	paths := make([]string, 0, len(files))

	for _, name := range []string{engineSchemaFile, strategySchemaFile} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
