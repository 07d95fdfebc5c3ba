package cli

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/diagram"
	"github.com/fzabel/revsynth/pkg/errors"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/synth"
)

// Synthesis method names. The exact searches guarantee minimality (bfs) or
// near-minimality (bidirectional, mitm); the rest are heuristics that trade
// gate count for speed.
const (
	synthBFS        = "bfs"
	synthBidi       = "bidirectional"
	synthMITM       = "mitm"
	synthGreedy     = "greedy"
	synthRandom     = "random"
	synthMultistart = "multistart"
	synthOutputFix  = "outputfix"
	synthGenetic    = "genetic"
)

// synthMethods is the set of supported synthesis strategies.
var synthMethods = map[string]bool{
	synthBFS:        true,
	synthBidi:       true,
	synthMITM:       true,
	synthGreedy:     true,
	synthRandom:     true,
	synthMultistart: true,
	synthOutputFix:  true,
	synthGenetic:    true,
}

// validateSynthMethod checks that a synthesis method is valid.
func validateSynthMethod(method string) error {
	if !synthMethods[method] {
		return errors.New(errors.ErrCodeInvalidMethod,
			"invalid method: %s (must be one of: bfs, bidirectional, mitm, greedy, random, multistart, outputfix, genetic)", method)
	}
	return nil
}

// synthOpts holds the command-line flags for the synth command.
type synthOpts struct {
	method    string // synthesis strategy
	maxDepth  int    // depth bound for the exact searches
	maxSteps  int    // step budget for the heuristic searches
	restarts  int    // restart count for multistart
	halfDepth int    // table depth for mitm
	seed      int64  // rng seed for the stochastic methods (0 = fresh)
	sameLine  bool   // allow gates whose control and target lines coincide
	output    string // output file path (stdout if empty)
	draw      bool   // print an ASCII diagram of the result to stderr
}

// synthCommand creates the synth command for realizing a single permutation.
func (c *CLI) synthCommand() *cobra.Command {
	opts := synthOpts{
		method:    synthBFS,
		maxDepth:  6,
		maxSteps:  100,
		restarts:  10,
		halfDepth: 3,
	}

	cmd := &cobra.Command{
		Use:   "synth <mapping>",
		Short: "Synthesize a circuit realizing a permutation",
		Long: `Synthesize a reversible circuit realizing an output mapping.

The mapping lists the output state for every input state in order, so it
must have 2^width comma-separated entries.

Examples:
  revsynth synth 1,0,3,2,4,5,7,6                  # shortest circuit via BFS
  revsynth synth -m mitm --half-depth 3 1,0,3,2,4,5,7,6
  revsynth synth -m genetic --seed 7 1,0,3,2,4,5,7,6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSynth(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", opts.method, "search method: bfs (default), bidirectional, mitm, greedy, random, multistart, outputfix, genetic")
	cmd.Flags().IntVarP(&opts.maxDepth, "max-depth", "d", opts.maxDepth, "depth bound for exact searches")
	cmd.Flags().IntVar(&opts.maxSteps, "max-steps", opts.maxSteps, "step budget for heuristic searches")
	cmd.Flags().IntVar(&opts.restarts, "restarts", opts.restarts, "restart count for multistart")
	cmd.Flags().IntVar(&opts.halfDepth, "half-depth", opts.halfDepth, "half-circuit table depth for mitm")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for stochastic methods (0 = fresh)")
	cmd.Flags().BoolVar(&opts.sameLine, "same-line", false, "include same-line gates in the gate alphabet")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.draw, "draw", false, "print an ASCII diagram of the result")

	return cmd
}

// runSynth parses the target, runs the selected search, and writes the
// resulting circuit as JSON.
func (c *CLI) runSynth(ctx context.Context, arg string, opts synthOpts) error {
	logger := loggerFromContext(ctx)

	if err := validateSynthMethod(opts.method); err != nil {
		return err
	}
	target, err := parsePermutationArg(arg)
	if err != nil {
		return err
	}

	set, err := synth.NewGateSet(target.Width(), opts.sameLine)
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching with %s...", opts.method))
	spinner.Start()
	start := time.Now()

	result, err := synthesizeTarget(target, set, rng, opts)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if result == nil {
		return errors.New(errors.ErrCodeNotFound, "no circuit realizes the target within the search budget")
	}

	logger.Infof("Found %d-gate circuit in %s (seed %d)",
		result.Len(), time.Since(start).Round(time.Millisecond), seed)

	if opts.draw {
		fmt.Fprintln(os.Stderr, diagram.Draw(result, diagram.Options{Full: true}))
	}

	return writeCircuitOutput(result, opts.output, logger)
}

// synthesizeTarget dispatches to the selected search strategy. A nil circuit
// with a nil error means the budget ran out without a witness.
func synthesizeTarget(target circuit.Permutation, set *synth.GateSet, rng *rand.Rand, opts synthOpts) (*circuit.Circuit, error) {
	switch opts.method {
	case synthBFS:
		return synth.NewExact(set).BFS(target, opts.maxDepth)
	case synthBidi:
		return synth.NewExact(set).Bidirectional(target, opts.maxDepth)
	case synthMITM:
		return synth.NewMeetInTheMiddle(set, opts.halfDepth).Synthesize(target)
	case synthGreedy:
		return synth.NewTransform(set, rng).Synthesize(target, opts.maxSteps)
	case synthRandom:
		return synth.NewTransform(set, rng).SynthesizeRandomized(target, opts.maxSteps)
	case synthMultistart:
		return synth.NewTransform(set, rng).SynthesizeMultistart(target, opts.restarts, opts.maxSteps)
	case synthOutputFix:
		return synth.NewOutputFixer(set).Synthesize(target, opts.maxSteps)
	case synthGenetic:
		return synth.NewGenetic(set, synth.GeneticOptions{}, rng).Synthesize(target)
	}
	return nil, errors.New(errors.ErrCodeInvalidMethod, "unknown method %q", opts.method)
}

// parsePermutationArg parses a comma-separated output mapping such as
// "1,0,3,2,4,5,7,6" into a permutation. The mapping length must be a power
// of two; the width is its base-two logarithm.
func parsePermutationArg(arg string) (circuit.Permutation, error) {
	fields := strings.Split(arg, ",")
	mapping := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return circuit.Permutation{}, errors.New(errors.ErrCodeInvalidInput,
				"mapping entry %q is not an integer", strings.TrimSpace(f))
		}
		mapping[i] = v
	}

	n := len(mapping)
	width := bits.Len(uint(n)) - 1
	if width < 1 || n != 1<<width {
		return circuit.Permutation{}, errors.New(errors.ErrCodeInvalidInput,
			"mapping must list 2^width outputs, got %d", n)
	}

	p, err := circuit.NewPermutation(width, mapping)
	if err != nil {
		return circuit.Permutation{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid mapping")
	}
	return p, nil
}

// writeCircuitOutput serializes c as JSON to the specified path (or stdout
// if empty). The logger is notified on success with the output path.
func writeCircuitOutput(c *circuit.Circuit, path string, logger interface{ Infof(string, ...any) }) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := pkgio.WriteCircuit(c, out); err != nil {
		return err
	}
	if path != "" && path != "-" {
		logger.Infof("Wrote circuit to %s", path)
	}
	return nil
}
