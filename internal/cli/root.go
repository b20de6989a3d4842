// Package cli is the wxoa command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/samvad-hq/samvad-wxoa/internal/app"
	"github.com/spf13/cobra"
)

// Env carries what commands need from the process.
type Env struct {
	Out  io.Writer
	Open func(ctx context.Context) (*app.Runtime, error)
}

// NewRootCommand builds the wxoa command tree.
func NewRootCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "wxoa",
		Short:         "Manage a WeChat Official Account: materials, followers and tags",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMaterialCommand(env),
		newUserCommand(env),
		newTagCommand(env),
	)
	return root
}

// run opens a runtime for the duration of fn.
func (e *Env) run(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := e.Open(ctx)
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func (e *Env) print(v any) error {
	enc := json.NewEncoder(e.Out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
