package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/easel/internal/engine"
)

// ConstraintListItem is one scene constraint as the engine would label
// it, before any solving happens.
type ConstraintListItem struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	A     string `json:"a"`
	B     string `json:"b"`
	Label string `json:"label"`
}

// NewConstraintsCommand creates the constraints command.
func NewConstraintsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "constraints <scene.cue>",
		Short: "List a scene's constraint script without solving it",
		Long: `Load a CUE scene file and print its constraints in declaration
order, labelled the way the solver reports them. Anchor references are
validated against the scene's shapes; nothing is solved or moved.

Example:
  easel constraints scene.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConstraints(rootOpts, args[0], cmd)
		},
	}
}

func runConstraints(opts *RootOptions, scenePath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	scene, err := LoadScene(scenePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scene", err)
	}

	list := BuildShapes(scene)
	items := make([]ConstraintListItem, 0, len(scene.Constraints))
	for i, c := range scene.Constraints {
		a := anchorRef(c.A)
		b := anchorRef(c.B)
		for _, ref := range []engine.AnchorRef{a, b} {
			s, ok := list.Lookup(ref.Shape)
			if !ok {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("constraint %d references unknown shape %q", i, ref.Shape))
			}
			if _, ok := s.Anchor(ref.Key); !ok {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("constraint %d references unknown anchor %q on %q", i, ref.Key, ref.Shape))
			}
		}
		stored := engine.Constraint{Kind: knownConstraintKinds[c.Type], A: a, B: b, Dist: c.Dist}
		items = append(items, ConstraintListItem{
			Index: i,
			Kind:  c.Type,
			A:     c.A,
			B:     c.B,
			Label: stored.Label(),
		})
	}

	if out.JSON() {
		return out.Success(items)
	}
	for _, item := range items {
		fmt.Fprintf(out.Writer, "%3d  %s\n", item.Index, item.Label)
	}
	return nil
}
