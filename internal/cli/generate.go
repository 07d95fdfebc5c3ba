package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/errors"
	pkgio "github.com/fzabel/revsynth/pkg/io"
	"github.com/fzabel/revsynth/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
// Width, count, length, output, and the store/cache toggles can also come
// from the environment or the config file; flags win.
type generateOpts struct {
	width    int    // register width in wires
	count    int    // number of circuits to generate
	length   int    // target circuit length in gates
	method   string // generation strategy
	seed     int64  // run seed (0 = fresh)
	jobID    string // batch tag (default: scheduler env or fresh UUID)
	workers  int    // generation fan-out (0 = all CPUs)
	output   string // output file path ("-" = stdout)
	useDB    bool   // persist records to the template store
	useCache bool   // cache reachability tables between runs
}

// generateCommand creates the generate command, the batch entry point used
// both interactively and from cluster job scripts.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		width:  3,
		count:  pipeline.DefaultCount,
		length: pipeline.DefaultTargetLength,
		method: pipeline.DefaultMethod,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate verified non-trivial identity circuits",
		Long: `Generate a batch of verified non-trivial identity circuits.

Each circuit computes the identity permutation while no adjacent gate pair
cancels. Batches are written as JSON and can optionally be persisted to the
template store for later browsing.

Flags override environment variables (WIDTH, COUNT, LENGTH, OUTPUT, USE_DB,
USE_CACHE), which override the config file. With neither --output nor --store
the batch lands in identities_W<width>_L<length>_<job>.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			resolveGenerateOpts(cmd, &opts, cfg)
			return c.runGenerate(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", opts.width, "register width in wires")
	cmd.Flags().IntVarP(&opts.count, "count", "c", opts.count, "number of circuits to generate")
	cmd.Flags().IntVarP(&opts.length, "length", "l", opts.length, "target circuit length in gates")
	cmd.Flags().StringVarP(&opts.method, "method", "m", opts.method, "generation method: fast (default), synthesis, interleaved, guaranteed")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for reproducible runs (0 = fresh)")
	cmd.Flags().StringVar(&opts.jobID, "job-id", "", "job id for batch metadata (default: scheduler env or fresh UUID)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "generation workers (0 = all CPUs)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (\"-\" = stdout)")
	cmd.Flags().BoolVar(&opts.useDB, "store", false, "persist generated templates to the store")
	cmd.Flags().BoolVar(&opts.useCache, "use-cache", false, "cache reachability tables between runs")

	return cmd
}

// resolveGenerateOpts merges flag, environment, and config file values.
// Precedence: explicit flag > environment > config file > built-in default.
func resolveGenerateOpts(cmd *cobra.Command, opts *generateOpts, cfg *Config) {
	flags := cmd.Flags()
	opts.width = resolveInt(flags.Changed("width"), opts.width, widthFromEnv, cfg.Defaults.Width)
	opts.count = resolveInt(flags.Changed("count"), opts.count, countFromEnv, cfg.Defaults.Count)
	opts.length = resolveInt(flags.Changed("length"), opts.length, lengthFromEnv, cfg.Defaults.Length)
	opts.output = resolveString(flags.Changed("output"), opts.output, outputFromEnv)
	opts.useDB = resolveBool(flags.Changed("store"), opts.useDB, useDBFromEnv)
	opts.useCache = resolveBool(flags.Changed("use-cache"), opts.useCache, useCacheFromEnv)
}

// runGenerate executes the generation pipeline and writes the batch.
func (c *CLI) runGenerate(ctx context.Context, cfg *Config, opts generateOpts) error {
	if err := pipeline.ValidateMethod(opts.method); err != nil {
		return err
	}
	if err := errors.ValidateJobID(opts.jobID); err != nil {
		return err
	}
	if opts.output != "" && opts.output != "-" {
		if err := errors.ValidateOutputPath(opts.output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, opts.useDB, opts.useCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	if runner.Store != nil {
		defer runner.Store.Close(context.Background())
	}

	popts := pipeline.Options{
		Width:        opts.width,
		Count:        opts.count,
		TargetLength: opts.length,
		Method:       opts.method,
		Seed:         opts.seed,
		UseCache:     opts.useCache,
		JobID:        opts.jobID,
		Workers:      opts.workers,
		Logger:       c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d identity circuits...", opts.count))
	spinner.Start()

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return fmt.Errorf("generate: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath, err := writeGenerateOutput(result, opts)
	if err != nil {
		return err
	}

	// Streaming to stdout keeps it pure JSON; the summary goes through the
	// logger on stderr instead of the decorated printer.
	if opts.output == "-" {
		c.Logger.Info("generated batch",
			"generated", result.Stats.Generated,
			"requested", result.Stats.Requested,
			"elapsed", result.Stats.Elapsed.Round(time.Millisecond))
	} else {
		printSuccess("Generated %d of %d circuits in %s",
			result.Stats.Generated, result.Stats.Requested, result.Stats.Elapsed.Round(time.Millisecond))
		printStats(result.Stats.Generated, result.Stats.Failed, result.CacheInfo.TableHit)
		if opts.useDB {
			added := len(result.Records) - result.Stats.Duplicates
			printDetail("stored %d new templates, %d duplicates", added, result.Stats.Duplicates)
		}
		printDetail("job %s", result.JobID)
		if outputPath != "" {
			printFile(outputPath)
		}
	}

	// A run that loses more than half its requests signals a broken setup
	// (bad width/length combination), so cluster schedulers see a failure.
	if result.Stats.Generated*2 < result.Stats.Requested {
		printWarning("Success rate below 50%% (%d/%d)", result.Stats.Generated, result.Stats.Requested)
		return fmt.Errorf("generated %d of %d requested circuits", result.Stats.Generated, result.Stats.Requested)
	}

	if opts.output != "-" {
		printNewline()
		if opts.useDB {
			printNextStep("Browse", "revsynth store browse")
		} else if outputPath != "" {
			printNextStep("Draw one", fmt.Sprintf("revsynth draw %s --index 0", outputPath))
		}
	}

	return nil
}

// writeGenerateOutput writes the batch and returns the file path, or "" when
// the run was store-only or streamed to stdout.
func writeGenerateOutput(result *pipeline.Result, opts generateOpts) (string, error) {
	output := opts.output
	if output == "" && !opts.useDB {
		output = fmt.Sprintf("identities_W%d_L%d_%s.json", result.Width, result.TargetLength, result.JobID)
	}

	switch output {
	case "":
		return "", nil
	case "-":
		return "", pkgio.WriteBatch(result.Batch(), os.Stdout)
	default:
		if err := pkgio.ExportBatch(result.Batch(), output); err != nil {
			return "", fmt.Errorf("write output %s: %w", output, err)
		}
		return output, nil
	}
}
