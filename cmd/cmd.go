// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mrx/internal/models"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// credentialFlags are the email and password flags of login and registration.
func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email",
			Sources: cli.EnvVars("MRX_EMAIL"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars("MRX_PASSWORD"),
		},
	}
}

func trackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Track title"},
		&cli.StringFlag{Name: "genre", Usage: "Genre id (see `mrx lookups genres`)"},
		&cli.StringFlag{Name: "language", Usage: "Language id (see `mrx lookups languages`)"},
		&cli.StringFlag{Name: "file", Usage: "Path to the audio file"},
	}
}

// setupCommand handles setup operations for the local database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the session database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Rebuild the session tables, discarding any saved session",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config file from the bundled template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	registerFlags := func() []cli.Flag {
		return append(credentialFlags(), &cli.StringFlag{
			Name:  "confirm",
			Usage: "Repeat the password",
		})
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the portal session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in and persist the session",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the persisted session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in identity and token expiry",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:  "register",
				Usage: "Create a member or licensee account",
				Commands: []*cli.Command{
					{
						Name:   "member",
						Usage:  "Register as an artist",
						Flags:  registerFlags(),
						Action: r.AuthRegisterMember,
					},
					{
						Name:   "licensee",
						Usage:  "Register as a licensing company",
						Flags:  registerFlags(),
						Action: r.AuthRegisterLicensee,
					},
				},
			},
		},
	}
}

// memberCommand handles the artist's own tracks and documents.
func memberCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "member",
		Usage:  "Artist operations",
		Before: r.require(models.RoleMember),
		Commands: []*cli.Command{
			{
				Name:   "tracks",
				Usage:  "List your tracks",
				Flags:  listFlags(),
				Action: r.MemberTracks,
			},
			{
				Name:   "upload",
				Usage:  "Upload a new track",
				Flags:  trackFlags(),
				Action: r.MemberUpload,
			},
			{
				Name:      "edit",
				Usage:     "Edit a track's metadata, optionally replacing its file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     trackFlags(),
				Action:    r.MemberEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a track",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MemberDelete,
			},
			{
				Name:  "documents",
				Usage: "Upload identity and bank documents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id-document", Usage: "Path to an identity document"},
					&cli.StringFlag{Name: "bank-document", Usage: "Path to a bank document"},
					&cli.StringFlag{Name: "passport-photo", Usage: "Path to a passport photo"},
				},
				Action: r.MemberDocuments,
			},
			{
				Name:   "profile",
				Usage:  "Show your profile",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MemberProfile,
			},
		},
	}
}

// licenseeCommand handles a licensing company's licenses and billing.
func licenseeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "licensee",
		Usage:  "Licensing company operations",
		Before: r.require(models.RoleLicensee),
		Commands: []*cli.Command{
			{
				Name:   "licenses",
				Usage:  "List your licenses",
				Flags:  listFlags(),
				Action: r.LicenseeLicenses,
			},
			{
				Name:  "request",
				Usage: "Request a license for a track",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "track", Usage: "Track id", Required: true},
					&cli.StringFlag{Name: "usage", Usage: "Intended usage", Required: true},
				},
				Action: r.LicenseeRequest,
			},
			{
				Name:   "invoices",
				Usage:  "List your invoices",
				Flags:  listFlags(),
				Action: r.LicenseeInvoices,
			},
			{
				Name:   "payments",
				Usage:  "List your payments",
				Flags:  listFlags(),
				Action: r.LicenseePayments,
			},
		},
	}
}

// adminCommand handles review and billing across all accounts.
func adminCommand(r *Runner) *cli.Command {
	statusArgs := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "resource"}, &cli.StringArg{Name: "id"}}
	}

	return &cli.Command{
		Name:   "admin",
		Usage:  "Administrator operations",
		Before: r.require(models.RoleAdmin),
		Commands: []*cli.Command{
			{
				Name:   "dashboard",
				Usage:  "Load every list and summarize the counts",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AdminDashboard,
			},
			{Name: "members", Usage: "List members", Flags: listFlags(), Action: r.AdminMembers},
			{Name: "licensees", Usage: "List licensees", Flags: listFlags(), Action: r.AdminLicensees},
			{Name: "tracks", Usage: "List all tracks", Flags: listFlags(), Action: r.AdminTracks},
			{Name: "licenses", Usage: "List all licenses", Flags: listFlags(), Action: r.AdminLicenses},
			{Name: "invoices", Usage: "List all invoices", Flags: listFlags(), Action: r.AdminInvoices},
			{Name: "payments", Usage: "List all payments", Flags: listFlags(), Action: r.AdminPayments},
			{
				Name:      "approve",
				Usage:     "Approve a member, licensee, track or license",
				Arguments: statusArgs(),
				Action:    r.AdminApprove,
			},
			{
				Name:      "reject",
				Usage:     "Reject a member, licensee, track or license",
				Arguments: statusArgs(),
				Action:    r.AdminReject,
			},
			{
				Name:  "assign-isrc",
				Usage: "Assign an ISRC to a track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "track-id"},
					&cli.StringArg{Name: "isrc"},
				},
				Action: r.AdminAssignISRC,
			},
			{
				Name:  "assign-ipi",
				Usage: "Assign an IPI number to a member",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "member-id"},
					&cli.StringArg{Name: "ipi"},
				},
				Action: r.AdminAssignIPI,
			},
			{
				Name:  "invoice",
				Usage: "Issue an invoice for a license",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "license", Usage: "License id", Required: true},
					&cli.FloatFlag{Name: "amount", Usage: "Amount due", Required: true},
					&cli.StringFlag{Name: "currency", Usage: "ISO 4217 currency code", Value: "EUR"},
					&cli.StringFlag{Name: "due", Usage: "Due date as YYYY-MM-DD", Required: true},
				},
				Action: r.AdminInvoice,
			},
		},
	}
}

// lookupsCommand lists reference data.
func lookupsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "lookups",
		Usage:     "List genres, languages or countries",
		Before:    r.require(),
		Arguments: []cli.Argument{&cli.StringArg{Name: "kind"}},
		Flags:     listFlags(),
		Action:    r.Lookups,
	}
}

// filesCommand handles stored audio and documents.
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "files",
		Usage:  "Play or download stored files",
		Before: r.require(),
		Commands: []*cli.Command{
			{
				Name:      "play",
				Usage:     "Open a stored file in the system player",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Action:    r.FilesPlay,
			},
			{
				Name:  "download",
				Usage: "Download every track file or invoice document you can see",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "tracks or invoices (default: by role)",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: [downloads] dir)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads (default: [downloads] workers)",
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Requests per second (default: [downloads] rate_limit)",
					},
				},
				Action: r.FilesDownload,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	tokenFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "token",
			Usage: "Bearer token to send instead of the session's",
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the portal API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive portal",
		Action:  r.TUI,
	}
}
