package cli

import (
	"context"

	"github.com/samvad-hq/samvad-wxoa/internal/app"
	"github.com/samvad-hq/samvad-wxoa/pkg/user"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newTagCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Follower tags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				tags, err := rt.Tags.List(ctx)
				if err != nil {
					return err
				}
				return env.print(tags)
			})
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				tag, err := rt.Tags.Create(ctx, args[0])
				if err != nil {
					return err
				}
				return env.print(tag)
			})
		},
	}

	update := &cobra.Command{
		Use:   "update <tag-id> <name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToIntE(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Tags.Update(ctx, id, args[1]); err != nil {
					return err
				}
				return env.print(user.Tag{ID: id, Name: args[1]})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <tag-id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToIntE(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Tags.Delete(ctx, id); err != nil {
					return err
				}
				return env.print(map[string]any{"id": id, "deleted": true})
			})
		},
	}

	userTags := &cobra.Command{
		Use:   "of-user <openid>",
		Short: "Show the tag ids of a follower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				ids, err := rt.Tags.UserTags(ctx, args[0])
				if err != nil {
					return err
				}
				return env.print(ids)
			})
		},
	}

	var next string
	members := &cobra.Command{
		Use:   "members <tag-id>",
		Short: "Page through the followers carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToIntE(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				page, err := rt.Tags.UsersOfTag(ctx, id, optional(cmd, "next", next))
				if err != nil {
					return err
				}
				return env.print(page)
			})
		},
	}
	members.Flags().StringVar(&next, "next", "", "open id to continue after")

	cmd.AddCommand(list, create, update, del, userTags, members,
		newTagMembersCommand(env, "tag-users", "Put a tag on followers", (*user.TagClient).TagUsers),
		newTagMembersCommand(env, "untag-users", "Remove a tag from followers", (*user.TagClient).UntagUsers),
	)
	return cmd
}

func newTagMembersCommand(env *Env, use, short string, op func(*user.TagClient, context.Context, []string, int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tag-id> <openid>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cast.ToIntE(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := op(rt.Tags, ctx, args[1:], id); err != nil {
					return err
				}
				return env.print(map[string]any{"tag_id": id, "openids": args[1:]})
			})
		},
	}
}
