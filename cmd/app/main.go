package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kbsite/internal"
	pkgconfig "github.com/starford/kbsite/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithForce(cmd.Bool("force"))); err != nil {
		return fmt.Errorf("sync error: %w", err)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunWatch(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Render(ctx, cmd.String("id"), cmd.String("format"), internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func runPublish(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Publish(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("publish error: %w", err)
	}
	return nil
}

func main() {
	forceFlag := &cli.BoolFlag{
		Name:  "force",
		Usage: "Regenerate every page even if unchanged",
	}

	cmd := &cli.Command{
		Name:   "kbsite",
		Usage:  "Incrementally build a static knowledge-base site from exported notes",
		Action: runSync,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			forceFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Run one sync pass",
				Flags:  []cli.Flag{forceFlag},
				Action: runSync,
			},
			{
				Name:   "watch",
				Usage:  "Sync again whenever the notes export changes",
				Action: runWatch,
			},
			{
				Name:  "render",
				Usage: "Print one note's body",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Note ID", Required: true},
					&cli.StringFlag{Name: "format", Usage: "html or markdown", Value: internal.FormatHTML},
				},
				Action: runRender,
			},
			{
				Name:   "publish",
				Usage:  "Upload the generated site to the configured bucket",
				Action: runPublish,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
