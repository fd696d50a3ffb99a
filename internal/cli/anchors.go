package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/easel/internal/engine"
	"github.com/roach88/easel/internal/shape"
)

// AnchorItem is one anchor of a shape, with both its local offset and
// its resolved world position.
type AnchorItem struct {
	Key    string     `json:"key"`
	ID     string     `json:"id"`
	Offset [2]float64 `json:"offset"`
	World  [2]float64 `json:"world"`
}

// AnchorsReport is the JSON payload of the anchors command.
type AnchorsReport struct {
	Shape   string       `json:"shape"`
	Anchors []AnchorItem `json:"anchors"`
}

// NewAnchorsCommand creates the anchors command.
func NewAnchorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "anchors <scene.cue> <shape>",
		Short: "List the anchor catalog of a shape",
		Long: `Load a CUE scene file and print every anchor the named shape
exposes: the anchor key, its solver variable id, the local offset from
the shape position, and the resolved world position.

Example:
  easel anchors scene.cue frame`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnchors(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runAnchors(opts *RootOptions, scenePath, shapeName string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	scene, err := LoadScene(scenePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scene", err)
	}

	list := BuildShapes(scene)
	eng := engine.New(list)
	anchors := eng.AnchorsForShape(shapeName)
	if anchors == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown shape %q", shapeName))
	}

	s, _ := list.Lookup(shapeName)
	report := AnchorsReport{Shape: shapeName, Anchors: make([]AnchorItem, 0, len(anchors))}
	for _, a := range anchors {
		w := s.World(a)
		report.Anchors = append(report.Anchors, AnchorItem{
			Key:    a.Key,
			ID:     shape.AnchorID(shapeName, a.Key),
			Offset: [2]float64{a.Offset.X, a.Offset.Y},
			World:  [2]float64{w.X, w.Y},
		})
	}

	if out.JSON() {
		return out.Success(report)
	}
	for _, a := range report.Anchors {
		fmt.Fprintf(out.Writer, "%-14s %-24s offset=(%.4f, %.4f) world=(%.4f, %.4f)\n",
			a.Key, a.ID, a.Offset[0], a.Offset[1], a.World[0], a.World[1])
	}
	return nil
}
