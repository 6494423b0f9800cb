// Package cli implements the travelctl command tree.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/travelreviews/webclient/internal/core/access"
	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/metrics"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Env holds the collaborators commands run against.
type Env struct {
	Sessions ports.SessionService
	Reviews  ports.ReviewsAPI
	Articles ports.ArticlesAPI
	Contact  ports.ContactAPI
	Admin    ports.AdminAPI
	// Serve runs the view server on addr until ctx is cancelled. An empty
	// addr means the configured default.
	Serve func(ctx context.Context, addr string) error
}

// EnvFactory builds the Env once the global flags are parsed. The caller that
// supplies the factory owns whatever the Env holds open.
type EnvFactory func(ctx context.Context, opts *RootOptions) (*Env, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	env *Env
}

// NewRootCommand creates the travelctl root command.
func NewRootCommand(factory EnvFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "travelctl",
		Short:         "Travel reviews client",
		Long:          "Sign in to the travel reviews API, browse content and manage the site from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			env, err := factory(cmd.Context(), opts)
			if err != nil {
				return err
			}
			opts.env = env
			// Every command starts from a resolved session.
			env.Sessions.Start(cmd.Context())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewReviewsCommand(opts))
	cmd.AddCommand(NewArticlesCommand(opts))
	cmd.AddCommand(NewContactCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// require runs the access gate for a command. It returns nil when the
// session may proceed.
func (o *RootOptions) require(f *OutputFormatter, role domain.Role) error {
	decision := access.Decide(role, o.env.Sessions.Snapshot())
	metrics.GateDecisionsTotal.WithLabelValues(decision.String()).Inc()
	f.VerboseLog("gate %q: %s", role, decision)

	switch decision {
	case access.Allow:
		return nil
	case access.RedirectLogin:
		return f.Fail(ExitAccessDenied, "LOGIN_REQUIRED", "login required")
	case access.RedirectUnauthorized:
		return f.Fail(ExitAccessDenied, "ACCESS_DENIED", "access denied")
	default:
		return f.Fail(ExitFailure, "SESSION_LOADING", "session is still loading")
	}
}
