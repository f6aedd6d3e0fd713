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
	if root := cmd.String("root"); root != "" {
		cfg.Docs.Root = root
	}
	if dsn := cmd.String("export-db"); dsn != "" {
		cfg.Export.SQLitePath = dsn
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithWatch(cmd.Bool("watch")),
	}

	if err := internal.RunIndexer(ctx, opts...); err != nil {
		return fmt.Errorf("indexer run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "docindex",
		Usage:  "Generate the master documentation index and per-document backlinks",
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
				Name:    "root",
				Usage:   "Documentation root directory (overrides docs.root)",
				Sources: cli.EnvVars("DOCS_ROOT"),
			},
			&cli.StringFlag{
				Name:  "export-db",
				Usage: "Write the link graph to this SQLite database (overrides export.sqlite_path)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-index when documents change",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
