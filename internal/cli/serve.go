package cli

import (
	"github.com/spf13/cobra"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local view server",
		Long: `Run the local view server until interrupted.

The server shares this process's session: /login signs in, /me and the
role-gated pages follow the access gate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			f.VerboseLog("starting view server on %q", addr)
			if err := opts.env.Serve(cmd.Context(), addr); err != nil {
				return f.Fail(ExitFailure, "SERVE_FAILED", err.Error())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to VIEW_ADDR)")
	return cmd
}
