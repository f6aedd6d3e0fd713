package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docops/internal"
	pkgconfig "github.com/starford/docops/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("schema-dir"); dir != "" {
		cfg.Schema.SchemaDir = dir
	}
	if dir := cmd.String("data-dir"); dir != "" {
		cfg.Schema.DataDir = dir
	}

	return internal.RunValidator(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "schemacheck",
		Usage:  "Validate JSON data files against the master JSON Schema",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "schema-dir",
				Usage: "Directory containing JSON schema files (default: schemas)",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory containing JSON data files to validate (default: data)",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("validation run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
