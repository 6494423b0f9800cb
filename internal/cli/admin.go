package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/travelreviews/webclient/internal/core/domain"
)

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Site administration",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters (moderator or admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, domain.RoleModerator); err != nil {
				return err
			}
			env, err := opts.env.Admin.Stats(cmd.Context())
			if err != nil {
				return f.FailAPI(err)
			}
			s := env.Data
			return f.Success(s, func(w io.Writer) {
				fmt.Fprintf(w, "users:           %d\n", s.TotalUsers)
				fmt.Fprintf(w, "reviews:         %d\n", s.TotalReviews)
				fmt.Fprintf(w, "pending reviews: %d\n", s.PendingReviews)
				fmt.Fprintf(w, "articles:        %d\n", s.TotalArticles)
			})
		},
	}

	var params domain.ListParams
	users := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, domain.RoleAdmin); err != nil {
				return err
			}
			env, err := opts.env.Admin.Users(cmd.Context(), params)
			if err != nil {
				return f.FailAPI(err)
			}
			return f.Success(env, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tACTIVE")
				for _, u := range env.Data {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.Profile.ID, u.Profile.Email, u.Profile.Role, u.IsActive)
				}
				_ = tw.Flush()
				printPagination(w, env.Pagination)
			})
		},
	}
	users.Flags().IntVar(&params.Page, "page", 1, "page number")
	users.Flags().IntVar(&params.Limit, "limit", 10, "page size")

	setRole := &cobra.Command{
		Use:   "set-role <user-id> <role>",
		Short: "Change a user's role (user, moderator, admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if !domain.ValidRole(args[1]) {
				return f.Fail(ExitCommandError, "INVALID_ROLE", fmt.Sprintf("unknown role %q", args[1]))
			}
			if err := opts.require(f, domain.RoleAdmin); err != nil {
				return err
			}
			if err := opts.env.Admin.UpdateUserRole(cmd.Context(), args[0], domain.Role(args[1])); err != nil {
				return f.FailAPI(err)
			}
			return f.Success(map[string]string{"id": args[0], "role": args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "User %s is now %s\n", args[0], args[1])
			})
		},
	}

	deleteUser := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, domain.RoleAdmin); err != nil {
				return err
			}
			if err := opts.env.Admin.DeleteUser(cmd.Context(), args[0]); err != nil {
				return f.FailAPI(err)
			}
			return f.Success(map[string]string{"id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted user %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(stats, users, setRole, deleteUser)
	return cmd
}
