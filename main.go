package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/utilfn/internal/commands"
	"github.com/okra-platform/utilfn/internal/functions"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func portFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "port",
			Usage: "port the function is served on (overrides utilfn.json)",
		},
		&cli.IntFlag{
			Name:  "admin-port",
			Usage: "port the admin API is served on (overrides utilfn.json)",
		},
	}
}

func serveOptions(c *cli.Command) commands.ServeOptions {
	return commands.ServeOptions{
		Port:      int(c.Int("port")),
		AdminPort: int(c.Int("admin-port")),
	}
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "utilfn",
		Usage:   `Serverless utility function: reverse text, draw random integers, and read the clock over HTTP.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic); overrides utilfn.json",
				Sources: cli.EnvVars("UTILFN_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to utilfn.json (default: search the current directory and its parents)",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			ctrl.Flags.ConfigPath = c.String("config")

			raw := c.String("log-level")
			if raw == "" {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
				return ctx, nil
			}

			level, err := zerolog.ParseLevel(raw)
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			zerolog.SetGlobalLevel(level)
			ctrl.Flags.LogLevel = raw

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the function and the admin API",
				Flags: portFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Serve(ctx, serveOptions(c))
				},
			},
			{
				Name:  "dev",
				Usage: "Serve the function and reload utilfn.json on change",
				Flags: portFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Dev(ctx, serveOptions(c))
				},
			},
			{
				Name:  "init",
				Usage: "Create a utilfn.json in the current directory",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
			{
				Name:  "invoke",
				Usage: "Run one operation locally and print the JSON result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: functions.ParamOperation, Usage: "reverse, random, or timestamp"},
					&cli.StringFlag{Name: functions.ParamText, Usage: "text to reverse"},
					&cli.StringFlag{Name: functions.ParamMin, Usage: "lower bound for random"},
					&cli.StringFlag{Name: functions.ParamMax, Usage: "upper bound for random"},
					&cli.StringFlag{Name: functions.ParamFormat, Usage: "timestamp format (unix or iso)"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					params := functions.Params{}
					for _, name := range []string{
						functions.ParamOperation,
						functions.ParamText,
						functions.ParamMin,
						functions.ParamMax,
						functions.ParamFormat,
					} {
						params[name] = c.String(name)
					}
					return ctrl.Invoke(ctx, params, os.Stdout)
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run utilfn")
	}
}
