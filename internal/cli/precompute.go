package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/cache"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/synth"
)

// precomputeOpts holds the command-line flags for the precompute command.
type precomputeOpts struct {
	width    int    // register width in wires
	depth    int    // enumeration depth in gates
	output   string // optional portable table file
	force    bool   // recompute even when the table is cached
	sameLine bool   // allow gates with coinciding control and target lines
}

// precomputeCommand creates the precompute command. Cluster setups run it
// once per width before fanning out generation jobs, so the workers find a
// warm cache instead of all enumerating the same table.
func (c *CLI) precomputeCommand() *cobra.Command {
	opts := precomputeOpts{width: 3, depth: 4}

	cmd := &cobra.Command{
		Use:   "precompute",
		Short: "Enumerate a reachability table and warm the cache",
		Long: `Enumerate every permutation reachable within a depth bound and store
the resulting table in the cache.

Later runs of 'generate --use-cache' load the table instead of enumerating
it again. The default depth 4 covers generation at the default target
length. With --output the table is also written as a portable CBOR file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runPrecompute(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", opts.width, "register width in wires")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", opts.depth, "enumeration depth in gates")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the table to a portable CBOR file")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "recompute even when the table is cached")
	cmd.Flags().BoolVar(&opts.sameLine, "same-line", false, "include same-line gates in the gate alphabet")

	return cmd
}

// runPrecompute enumerates the table and stores it under the shared cache
// key that the generation pipeline looks up.
func (c *CLI) runPrecompute(ctx context.Context, cfg *Config, opts precomputeOpts) error {
	logger := loggerFromContext(ctx)

	byteCache := c.newCache(ctx, cfg, true)
	defer byteCache.Close()
	key := cache.NewDefaultKeyer().TableKey(opts.width, opts.depth)

	if !opts.force {
		if _, hit, err := byteCache.Get(ctx, key); err == nil && hit {
			printInfo("Table for width %d depth %d is already cached", opts.width, opts.depth)
			printDetail("use --force to recompute")
			return nil
		}
	}

	set, err := synth.NewGateSet(opts.width, opts.sameLine)
	if err != nil {
		return err
	}

	logger.Infof("Enumerating width %d to depth %d", opts.width, opts.depth)
	prog := newProgress(logger)
	table, err := synth.EnumerateAll(set, opts.depth)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Enumerated %d permutations", table.Size()))

	var buf bytes.Buffer
	if err := pkgio.WriteTable(table, &buf); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := byteCache.Set(ctx, key, buf.Bytes(), cache.TTLTable); err != nil {
		return fmt.Errorf("cache table: %w", err)
	}

	printSuccess("Table ready (%s)", key)
	lengths := table.CountByLength()
	counts := make([]int, 0, len(lengths))
	for l := range lengths {
		counts = append(counts, l)
	}
	sort.Ints(counts)
	for _, l := range counts {
		printDetail("length %d: %d circuits", l, lengths[l])
	}

	if opts.output != "" {
		if err := pkgio.ExportTable(table, opts.output); err != nil {
			return fmt.Errorf("write output %s: %w", opts.output, err)
		}
		printFile(opts.output)
	}

	printNewline()
	printNextStep("Generate", fmt.Sprintf("revsynth generate --width %d --use-cache", opts.width))

	return nil
}
