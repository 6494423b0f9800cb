package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// SessionView is the JSON shape of session-reporting commands.
type SessionView struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.UserProfile `json:"user,omitempty"`
}

func sessionView(s domain.Session) SessionView {
	return SessionView{Authenticated: s.IsAuthenticated, User: s.User}
}

func printUser(w io.Writer, u *domain.UserProfile) {
	fmt.Fprintf(w, "%s <%s>\n", u.DisplayName(), u.Email)
	fmt.Fprintf(w, "  id:       %s\n", u.ID)
	if u.Username != "" {
		fmt.Fprintf(w, "  username: %s\n", u.Username)
	}
	fmt.Fprintf(w, "  role:     %s\n", u.Role)
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no password on stdin")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

func passwordFlag(cmd *cobra.Command, password string, fromStdin bool) (string, error) {
	if !fromStdin {
		return password, nil
	}
	return readPassword(cmd.InOrStdin())
}

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var (
		creds     domain.Credentials
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			password, err := passwordFlag(cmd, creds.Password, fromStdin)
			if err != nil {
				return f.Fail(ExitCommandError, "INVALID_INPUT", err.Error())
			}
			creds.Password = password

			res := opts.env.Sessions.Login(cmd.Context(), creds)
			if !res.Success {
				return f.FailResult("LOGIN_FAILED", res)
			}
			s := opts.env.Sessions.Snapshot()
			return f.Success(sessionView(s), func(w io.Writer) {
				fmt.Fprintf(w, "Logged in as %s (%s)\n", s.User.DisplayName(), s.Role())
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Username, "username", "", "account username, instead of --email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var (
		reg       domain.Registration
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			password, err := passwordFlag(cmd, reg.Password, fromStdin)
			if err != nil {
				return f.Fail(ExitCommandError, "INVALID_INPUT", err.Error())
			}
			reg.Password = password

			res := opts.env.Sessions.Register(cmd.Context(), reg)
			if !res.Success {
				return f.FailResult("REGISTER_FAILED", res)
			}
			s := opts.env.Sessions.Snapshot()
			return f.Success(sessionView(s), func(w io.Writer) {
				fmt.Fprintf(w, "Welcome, %s\n", s.User.DisplayName())
			})
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	return cmd
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.env.Sessions.Logout(cmd.Context())
			return opts.formatter(cmd).Success(sessionView(opts.env.Sessions.Snapshot()), func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}

func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, domain.RoleAnonymous); err != nil {
				return err
			}
			s := opts.env.Sessions.Snapshot()
			return f.Success(sessionView(s), func(w io.Writer) {
				printUser(w, s.User)
			})
		},
	}
}

func NewProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in user's profile",
	}
	cmd.AddCommand(newProfileUpdateCommand(opts))
	return cmd
}

func newProfileUpdateCommand(opts *RootOptions) *cobra.Command {
	var firstName, lastName, avatar string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, domain.RoleAnonymous); err != nil {
				return err
			}

			var update domain.ProfileUpdate
			if cmd.Flags().Changed("first-name") {
				update.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = &lastName
			}
			if cmd.Flags().Changed("avatar") {
				update.Avatar = &avatar
			}

			res := opts.env.Sessions.UpdateProfile(cmd.Context(), update)
			if !res.Success {
				return f.FailResult("UPDATE_FAILED", res)
			}
			s := opts.env.Sessions.Snapshot()
			return f.Success(sessionView(s), func(w io.Writer) {
				fmt.Fprintln(w, "Profile updated")
				printUser(w, s.User)
			})
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "new last name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	return cmd
}
