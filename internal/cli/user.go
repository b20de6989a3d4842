package cli

import (
	"context"

	"github.com/samvad-hq/samvad-wxoa/internal/app"
	"github.com/samvad-hq/samvad-wxoa/pkg/user"
	"github.com/spf13/cobra"
)

func newUserCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Followers: profiles, remarks and the blacklist",
	}

	var lang string
	get := &cobra.Command{
		Use:   "get <openid>",
		Short: "Show a follower profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				info, err := rt.Users.Get(ctx, args[0], lang)
				if err != nil {
					return err
				}
				return env.print(info)
			})
		},
	}
	get.Flags().StringVar(&lang, "lang", user.DefaultLang, "profile language")

	var batchLang string
	batchGet := &cobra.Command{
		Use:   "batch-get <openid>...",
		Short: "Show several follower profiles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				infos, err := rt.Users.BatchGet(ctx, args, batchLang)
				if err != nil {
					return err
				}
				return env.print(infos)
			})
		},
	}
	batchGet.Flags().StringVar(&batchLang, "lang", user.DefaultLang, "profile language")

	var next string
	list := &cobra.Command{
		Use:   "list",
		Short: "Page through followers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				page, err := rt.Users.List(ctx, optional(cmd, "next", next))
				if err != nil {
					return err
				}
				return env.print(page)
			})
		},
	}
	list.Flags().StringVar(&next, "next", "", "open id to continue after")

	remark := &cobra.Command{
		Use:   "remark <openid> <remark>",
		Short: "Set the remark name of a follower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Users.Remark(ctx, args[0], args[1]); err != nil {
					return err
				}
				return env.print(map[string]any{"openid": args[0], "remark": args[1]})
			})
		},
	}

	var begin string
	blacklist := &cobra.Command{
		Use:   "blacklist",
		Short: "Page through blocked followers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				page, err := rt.Users.Blacklist(ctx, optional(cmd, "begin", begin))
				if err != nil {
					return err
				}
				return env.print(page)
			})
		},
	}
	blacklist.Flags().StringVar(&begin, "begin", "", "open id to start from")

	block := &cobra.Command{
		Use:   "block <openid>...",
		Short: "Add followers to the blacklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Users.BatchBlock(ctx, args); err != nil {
					return err
				}
				return env.print(map[string]any{"blocked": args})
			})
		},
	}

	unblock := &cobra.Command{
		Use:   "unblock <openid>...",
		Short: "Remove followers from the blacklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Users.BatchUnblock(ctx, args); err != nil {
					return err
				}
				return env.print(map[string]any{"unblocked": args})
			})
		},
	}

	cmd.AddCommand(get, batchGet, list, remark, blacklist, block, unblock)
	return cmd
}

// optional returns nil unless the flag was given on the command line.
func optional(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}
