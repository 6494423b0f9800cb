package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/pkg/validation"
)

func addListFlags(cmd *cobra.Command, p *domain.ListParams) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 10, "page size")
	cmd.Flags().StringVar(&p.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&p.Search, "search", "", "text search")
}

func printPagination(w io.Writer, p *domain.Pagination) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "page %d of %d (%d total)\n", p.Page, max(p.Pages, 1), p.Total)
}

func NewReviewsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Browse, write and react to reviews",
	}

	var params domain.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			env, err := opts.env.Reviews.List(cmd.Context(), params)
			if err != nil {
				return f.FailAPI(err)
			}
			return f.Success(env, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tRATING\tCATEGORY\tTITLE")
				for _, r := range env.Data {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.ID, r.Rating, r.Category, r.Title)
				}
				_ = tw.Flush()
				printPagination(w, env.Pagination)
			})
		},
	}
	addListFlags(list, &params)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			env, err := opts.env.Reviews.Get(cmd.Context(), args[0])
			if err != nil {
				return f.FailAPI(err)
			}
			r := env.Data
			return f.Success(r, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%d/5)\n", r.Title, r.Rating)
				if r.Location != "" {
					fmt.Fprintf(w, "%s\n", r.Location)
				}
				fmt.Fprintf(w, "\n%s\n", r.Content)
			})
		},
	}

	create := reviewFormCommand(opts, "create", "Submit a new review", "Created", cobra.NoArgs,
		func(ctx context.Context, _ []string, in domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
			return opts.env.Reviews.Create(ctx, in)
		})
	update := reviewFormCommand(opts, "update <id>", "Replace one of your reviews", "Updated", cobra.ExactArgs(1),
		func(ctx context.Context, args []string, in domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
			return opts.env.Reviews.Update(ctx, args[0], in)
		})
	del := idActionCommand(opts, domain.RoleUser, "delete <id>", "Delete one of your reviews", "Deleted", func(cmd *cobra.Command, id string) error {
		return opts.env.Reviews.Delete(cmd.Context(), id)
	})
	like := idActionCommand(opts, domain.RoleUser, "like <id>", "Like a review", "Liked", func(cmd *cobra.Command, id string) error {
		return opts.env.Reviews.Like(cmd.Context(), id)
	})
	helpful := idActionCommand(opts, domain.RoleUser, "helpful <id>", "Mark a review as helpful", "Marked helpful", func(cmd *cobra.Command, id string) error {
		return opts.env.Reviews.MarkHelpful(cmd.Context(), id)
	})

	cmd.AddCommand(list, get, create, update, del, like, helpful)
	return cmd
}

// reviewFormCommand builds a signed-in command that submits a review body.
// The body is validated before the session is consulted.
func reviewFormCommand(
	opts *RootOptions,
	use, short, done string,
	args cobra.PositionalArgs,
	send func(context.Context, []string, domain.ReviewInput) (*domain.Envelope[domain.Review], error),
) *cobra.Command {
	var in domain.ReviewInput
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := validation.New().Validate(in); err != nil {
				return f.Fail(ExitCommandError, "INVALID_INPUT", err.Error())
			}
			if err := opts.require(f, domain.RoleUser); err != nil {
				return err
			}
			env, err := send(cmd.Context(), args, in)
			if err != nil {
				return f.FailAPI(err)
			}
			if !env.Success {
				return f.Fail(ExitFailure, "REVIEW_REJECTED", env.FailureMessage())
			}
			r := env.Data
			return f.Success(r, func(w io.Writer) {
				fmt.Fprintf(w, "%s review %s: %s (%d/5)\n", done, r.ID, r.Title, r.Rating)
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "review title")
	cmd.Flags().StringVar(&in.Content, "content", "", "review text")
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&in.Category, "category", "", "hotel, restaurant, tour, ...")
	cmd.Flags().StringVar(&in.Location, "location", "", "place reviewed")
	return cmd
}

// idActionCommand builds an action on a single resource gated on role.
func idActionCommand(opts *RootOptions, role domain.Role, use, short, done string, action func(*cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := opts.require(f, role); err != nil {
				return err
			}
			if err := action(cmd, args[0]); err != nil {
				return f.FailAPI(err)
			}
			return f.Success(map[string]string{"id": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", done, args[0])
			})
		},
	}
}

func NewArticlesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Browse and edit editorial articles",
	}

	var params domain.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			env, err := opts.env.Articles.List(cmd.Context(), params)
			if err != nil {
				return f.FailAPI(err)
			}
			return f.Success(env, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCATEGORY\tTITLE")
				for _, a := range env.Data {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Category, a.Title)
				}
				_ = tw.Flush()
				printPagination(w, env.Pagination)
			})
		},
	}
	addListFlags(list, &params)
	list.Flags().BoolVar(&params.Featured, "featured", false, "only featured articles")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			env, err := opts.env.Articles.Get(cmd.Context(), args[0])
			if err != nil {
				return f.FailAPI(err)
			}
			a := env.Data
			return f.Success(a, func(w io.Writer) {
				fmt.Fprintln(w, a.Title)
				if a.Excerpt != "" {
					fmt.Fprintln(w, a.Excerpt)
				}
				fmt.Fprintf(w, "\n%s\n", a.Content)
			})
		},
	}

	create := articleFormCommand(opts, "create", "Draft a new article", "Created", cobra.NoArgs,
		func(ctx context.Context, _ []string, in domain.ArticleInput) (*domain.Envelope[domain.Article], error) {
			return opts.env.Articles.Create(ctx, in)
		})
	update := articleFormCommand(opts, "update <id>", "Replace an article", "Updated", cobra.ExactArgs(1),
		func(ctx context.Context, args []string, in domain.ArticleInput) (*domain.Envelope[domain.Article], error) {
			return opts.env.Articles.Update(ctx, args[0], in)
		})
	del := idActionCommand(opts, domain.RoleModerator, "delete <id>", "Delete an article", "Deleted", func(cmd *cobra.Command, id string) error {
		return opts.env.Articles.Delete(cmd.Context(), id)
	})
	publish := idActionCommand(opts, domain.RoleModerator, "publish <id>", "Publish a draft article", "Published", func(cmd *cobra.Command, id string) error {
		return opts.env.Articles.Publish(cmd.Context(), id)
	})

	cmd.AddCommand(list, get, create, update, del, publish)
	return cmd
}

// articleFormCommand builds an editorial command. Editing articles is
// reserved to moderators and admins.
func articleFormCommand(
	opts *RootOptions,
	use, short, done string,
	args cobra.PositionalArgs,
	send func(context.Context, []string, domain.ArticleInput) (*domain.Envelope[domain.Article], error),
) *cobra.Command {
	var in domain.ArticleInput
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := validation.New().Validate(in); err != nil {
				return f.Fail(ExitCommandError, "INVALID_INPUT", err.Error())
			}
			if err := opts.require(f, domain.RoleModerator); err != nil {
				return err
			}
			env, err := send(cmd.Context(), args, in)
			if err != nil {
				return f.FailAPI(err)
			}
			if !env.Success {
				return f.Fail(ExitFailure, "ARTICLE_REJECTED", env.FailureMessage())
			}
			a := env.Data
			return f.Success(a, func(w io.Writer) {
				fmt.Fprintf(w, "%s article %s: %s\n", done, a.ID, a.Title)
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "article title")
	cmd.Flags().StringVar(&in.Content, "content", "", "article body")
	cmd.Flags().StringVar(&in.Excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&in.Category, "category", "", "article category")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag, repeatable")
	cmd.Flags().BoolVar(&in.Featured, "featured", false, "feature on the home page")
	return cmd
}

func NewContactCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Reach the site team",
	}

	var msg domain.ContactMessage
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a contact message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			if err := validation.New().Validate(msg); err != nil {
				return f.Fail(ExitCommandError, "INVALID_INPUT", err.Error())
			}
			if err := opts.env.Contact.Send(cmd.Context(), msg); err != nil {
				return f.FailAPI(err)
			}
			return f.Success(map[string]bool{"sent": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Message sent")
			})
		},
	}
	send.Flags().StringVar(&msg.Name, "name", "", "your name")
	send.Flags().StringVar(&msg.Email, "email", "", "reply address")
	send.Flags().StringVar(&msg.Subject, "subject", "", "subject line")
	send.Flags().StringVar(&msg.Message, "message", "", "message body")

	cmd.AddCommand(send)
	return cmd
}
