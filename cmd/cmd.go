// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag(r *Runner) cli.Flag {
	path := r.configPath
	if path == "" {
		path = defaultConfigPath
	}
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   path,
	}
}

// createCommand runs one prompt through the pipeline from the shell.
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Aliases:   []string{"createplaylist"},
		Usage:     "Create a YouTube playlist from a prompt",
		ArgsUsage: "<prompt>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: text, markdown, html or json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the run in the history database",
			},
		},
		Action: r.Create,
	}
}

// serveCommand runs the Telegram bot.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the Telegram bot until interrupted",
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist creation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist creation",
		Action:  r.TUI,
	}
}

// historyCommand handles recorded run operations.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to return",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.HistoryList,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one run with every song outcome",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "prune",
				Usage: "Delete runs older than a number of days",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "Keep runs newer than this many days",
						Value: 30,
					},
				},
				Action: r.HistoryPrune,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a default configuration file",
				Flags:  []cli.Flag{configFlag(r)},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag(r)},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag(r)},
				Action: r.SetupRollback,
			},
		},
	}
}
