package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samvad-hq/samvad-wxoa/internal/app"
	"github.com/samvad-hq/samvad-wxoa/pkg/material"
	"github.com/samvad-hq/samvad-wxoa/pkg/publishers"
	"github.com/spf13/cobra"
)

func newMaterialCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "material",
		Short: "Permanent materials: upload, update, fetch, delete, list and count",
	}
	cmd.AddCommand(
		newUploadMediaCommand(env, material.TypeImage, "upload-image", "Upload a permanent image"),
		newUploadMediaCommand(env, material.TypeThumb, "upload-thumb", "Upload a permanent thumbnail"),
		newUploadMediaCommand(env, material.TypeVoice, "upload-voice", "Upload a permanent voice clip"),
		newUploadVideoCommand(env),
		newUploadNewsCommand(env),
		newUpdateNewsCommand(env),
		newUploadNewsImageCommand(env),
		newGetMaterialCommand(env),
		newDeleteMaterialCommand(env),
		newListMaterialCommand(env),
		newStatsCommand(env),
	)
	return cmd
}

func newUploadMediaCommand(env *Env, typ material.MediaType, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				upload := map[material.MediaType]func(context.Context, string) (*material.UploadResult, error){
					material.TypeImage: rt.Material.UploadImage,
					material.TypeThumb: rt.Material.UploadThumb,
					material.TypeVoice: rt.Material.UploadVoice,
				}[typ]

				res, err := upload(ctx, args[0])
				if err != nil {
					return err
				}
				notifyUpload(ctx, rt, typ, args[0], res)
				return env.print(res)
			})
		},
	}
}

func newUploadVideoCommand(env *Env) *cobra.Command {
	var title, intro string
	cmd := &cobra.Command{
		Use:   "upload-video <file>",
		Short: "Upload a permanent video with its title and introduction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				res, err := rt.Material.UploadVideo(ctx, args[0], title, intro)
				if err != nil {
					return err
				}
				notifyUpload(ctx, rt, material.TypeVideo, args[0], res)
				return env.print(res)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "video title")
	cmd.Flags().StringVar(&intro, "introduction", "", "video introduction")
	return cmd
}

func newUploadNewsCommand(env *Env) *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "upload-news <news-file>",
		Short: "Create a news material from a YAML or JSON file of articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadNewsFile(args[0])
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				items, err := file.items(ctx, rt.Material, inline, filepath.Dir(args[0]))
				if err != nil {
					return err
				}
				res, err := rt.Material.UploadArticle(ctx, items)
				if err != nil {
					return err
				}
				notifyUpload(ctx, rt, material.TypeNews, args[0], res)
				return env.print(res)
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline-images", false, "upload local <img> sources and rewrite them to platform URLs")
	return cmd
}

func newUpdateNewsCommand(env *Env) *cobra.Command {
	var (
		index  int
		inline bool
	)
	cmd := &cobra.Command{
		Use:   "update-news <media-id> <news-file>",
		Short: "Replace one article of a news material",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, path := args[0], args[1]
			file, err := loadNewsFile(path)
			if err != nil {
				return err
			}
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				items, err := file.items(ctx, rt.Material, inline, filepath.Dir(path))
				if err != nil {
					return err
				}
				if err := rt.Material.UpdateArticle(ctx, mediaID, items, index); err != nil {
					return err
				}
				evt := publishers.NewEvent(publishers.ActionUpdate, string(material.TypeNews), mediaID)
				evt.Source = path
				rt.Notify(ctx, evt)
				return env.print(map[string]any{"media_id": mediaID, "index": index, "updated": true})
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "position of the article inside the news material")
	cmd.Flags().BoolVar(&inline, "inline-images", false, "upload local <img> sources and rewrite them to platform URLs")
	return cmd
}

func newUploadNewsImageCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-news-image <file>",
		Short: "Upload an image for use inside article content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				res, err := rt.Material.UploadArticleImage(ctx, args[0])
				if err != nil {
					return err
				}
				evt := publishers.NewEvent(publishers.ActionUpload, string(material.TypeImage), "")
				evt.Source = args[0]
				evt.URL = res.URL
				rt.Notify(ctx, evt)
				return env.print(res)
			})
		},
	}
}

func newGetMaterialCommand(env *Env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "get <media-id>",
		Short: "Fetch a material; binary media is written to --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				content, err := rt.Material.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !content.IsRaw() {
					return env.print(content.Data)
				}
				if out == "" {
					return fmt.Errorf("material %s is binary (%s), pass --out to save it", args[0], content.ContentType)
				}
				if err := os.WriteFile(out, content.Raw, 0o644); err != nil {
					return fmt.Errorf("write material: %w", err)
				}
				return env.print(map[string]any{
					"media_id":     args[0],
					"content_type": content.ContentType,
					"bytes":        len(content.Raw),
					"path":         out,
				})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write binary media to")
	return cmd
}

func newDeleteMaterialCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <media-id>",
		Short: "Delete a permanent material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Material.Delete(ctx, args[0]); err != nil {
					return err
				}
				rt.Notify(ctx, publishers.NewEvent(publishers.ActionDelete, "", args[0]))
				return env.print(map[string]any{"media_id": args[0], "deleted": true})
			})
		},
	}
}

func newListMaterialCommand(env *Env) *cobra.Command {
	var (
		typ           string
		offset, count int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Page through materials of one type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				page, err := rt.Material.Lists(ctx, material.MediaType(typ), offset, count)
				if err != nil {
					return err
				}
				return env.print(page)
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(material.TypeImage), "image, video, voice or news")
	cmd.Flags().IntVar(&offset, "offset", 0, "position to start from")
	cmd.Flags().IntVar(&count, "count", material.DefaultListCount, "page size, at most 20")
	return cmd
}

func newStatsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count materials per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.run(cmd, func(ctx context.Context, rt *app.Runtime) error {
				stats, err := rt.Material.Stats(ctx)
				if err != nil {
					return err
				}
				return env.print(stats)
			})
		},
	}
}

func notifyUpload(ctx context.Context, rt *app.Runtime, typ material.MediaType, source string, res *material.UploadResult) {
	evt := publishers.NewEvent(publishers.ActionUpload, string(typ), res.MediaID)
	evt.Source = source
	evt.URL = res.URL
	rt.Notify(ctx, evt)
}
