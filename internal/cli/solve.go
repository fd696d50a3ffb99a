package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/easel/internal/engine"
	"github.com/roach88/easel/internal/shape"
	"github.com/roach88/easel/internal/trace"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Fixed   string
	TraceDB string
	Strict  bool
}

// SolveReport is the JSON payload of a solve run.
type SolveReport struct {
	Shapes      []ShapeState     `json:"shapes"`
	Constraints []ConstraintItem `json:"constraints"`
}

// ShapeState is the final transform of one shape.
type ShapeState struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Position [2]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
}

// ConstraintItem is the outcome of one constraint.
type ConstraintItem struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Satisfied bool   `json:"satisfied"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <scene.cue>",
		Short: "Solve a scene's constraints and print final shape positions",
		Long: `Load a CUE scene file, add its constraints in declaration order,
apply them, and print the resulting shape transforms.

Constraints are resolved pairwise in declaration order. Conflicting
constraints degrade gracefully: the first unsatisfiable equation is
dropped and reported as unsatisfied instead of failing the solve.

Example:
  easel solve scene.cue
  easel solve scene.cue --fixed frame --trace-db /tmp/solves.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixed, "fixed", "", "pin this shape during the apply pass (overrides the scene's fixed shape)")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "record solve diagnostics to this SQLite database")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit nonzero when any constraint is unsatisfied")

	return cmd
}

func runSolve(opts *SolveOptions, scenePath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	scene, err := LoadScene(scenePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scene", err)
	}
	slog.Info("scene loaded", "shapes", len(scene.Shapes), "constraints", len(scene.Constraints))

	engineOpts := []engine.Option{}
	if opts.TraceDB != "" {
		store, err := trace.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "open trace db", err)
		}
		defer store.Close()
		engineOpts = append(engineOpts, engine.WithRecorder(store))
	}

	list := BuildShapes(scene)
	eng := engine.New(list, engineOpts...)

	for i, c := range scene.Constraints {
		if _, err := addConstraint(eng, c); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("constraint %d", i), err)
		}
	}

	// Adding a constraint solves it immediately with nothing pinned. The
	// reported result is one apply pass over the whole script from the
	// scene's declared positions, with the fixed shape honored.
	resetScenePositions(list, scene)

	fixed := scene.Fixed
	if opts.Fixed != "" {
		fixed = opts.Fixed
	}
	outcomes := eng.ApplyAllConstraints(fixed)

	report := buildReport(list, outcomes)
	if out.JSON() {
		if err := out.Success(report); err != nil {
			return err
		}
	} else {
		renderSolveText(out.Writer, report)
	}

	if opts.Strict {
		for _, c := range report.Constraints {
			if !c.Satisfied {
				return NewExitError(ExitFailure, fmt.Sprintf("unsatisfied constraint: %s", c.Label))
			}
		}
	}
	return nil
}

func addConstraint(eng *engine.Engine, c SceneConstraint) (engine.Ref, error) {
	a := anchorRef(c.A)
	b := anchorRef(c.B)
	switch knownConstraintKinds[c.Type] {
	case engine.KindCoincident:
		return eng.AddCoincident(a, b)
	case engine.KindDistance:
		return eng.AddDistance(a, b, c.Dist)
	case engine.KindHorizontal:
		return eng.AddHorizontal(a, b)
	default:
		return eng.AddVertical(a, b)
	}
}

func buildReport(list *shape.List, outcomes []engine.Outcome) SolveReport {
	report := SolveReport{
		Shapes:      make([]ShapeState, 0, list.Len()),
		Constraints: make([]ConstraintItem, 0, len(outcomes)),
	}
	for _, s := range list.Shapes() {
		report.Shapes = append(report.Shapes, ShapeState{
			Name:     s.Name,
			Type:     s.Type,
			Position: [2]float64{s.Transform.Position.X, s.Transform.Position.Y},
			Rotation: s.Transform.Rotation,
		})
	}
	for _, o := range outcomes {
		satisfied := true
		for _, ok := range o.Satisfied {
			if !ok {
				satisfied = false
			}
		}
		report.Constraints = append(report.Constraints, ConstraintItem{
			ID:        o.Ref.ID,
			Label:     o.Ref.Label,
			Satisfied: satisfied,
		})
	}
	return report
}

func renderSolveText(w io.Writer, report SolveReport) {
	for _, s := range report.Shapes {
		fmt.Fprintf(w, "shape %-12s %-9s position=(%.4f, %.4f) rotation=%.2f\n",
			s.Name, s.Type, s.Position[0], s.Position[1], s.Rotation)
	}
	for _, c := range report.Constraints {
		mark := "satisfied"
		if !c.Satisfied {
			mark = "UNSATISFIED"
		}
		fmt.Fprintf(w, "constraint %s  %s\n", c.Label, mark)
	}
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
