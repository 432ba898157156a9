// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func emailFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "email",
		Aliases:  []string{"e"},
		Usage:    "Account email address",
		Required: true,
	}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "password",
		Aliases:  []string{"p"},
		Usage:    "Account password",
		Required: true,
	}
}

// setupCommand initializes the local config file and session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config file and local database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// loginCommand authenticates with the identity provider.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Log in with email and password",
		Flags:  []cli.Flag{emailFlag(), passwordFlag()},
		Action: r.Login,
	}
}

// signupCommand registers a new account.
func signupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "signup",
		Usage:  "Create an account and log in",
		Flags:  []cli.Flag{emailFlag(), passwordFlag()},
		Action: r.Signup,
	}
}

// logoutCommand ends the current session.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Log out of the current session",
		Action: r.Logout,
	}
}

// whoamiCommand shows the current session and role.
func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged-in account",
		Action: r.Whoami,
	}
}

// tabsCommand groups tab collection operations.
func tabsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tabs",
		Aliases: []string{"t"},
		Usage:   "Tab collection operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tabs, sorted by artist then title",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Filter by title or artist substring",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TabsList,
			},
			{
				Name:  "add",
				Usage: "Submit a new tab (admin only)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tuning",
						Usage: "Tuning (optional)",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read tab content from file ('-' for stdin)",
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "Tab content inline",
					},
				},
				Action: r.TabsAdd,
			},
			{
				Name:  "export",
				Usage: "Export the collection to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: text, csv or md",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "tabs_export.txt",
					},
				},
				Action: r.TabsExport,
			},
		},
	}
}

// tuiCommand launches the interactive terminal interface.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse tabs interactively",
		Action: r.TUI,
	}
}
