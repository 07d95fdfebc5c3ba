package cli

import (
	"context"
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/errors"
	"github.com/fzabel/revsynth/pkg/store"
)

// storeCommand creates the store command group for the template database.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the template store",
		Long: `Inspect the MongoDB template store.

The store holds deduplicated identity templates collected by
'generate --store'. Connection settings come from the config file
([store] uri and database) and default to a local MongoDB.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeStatsCommand())
	cmd.AddCommand(c.storeBrowseCommand())

	return cmd
}

// openStore connects to the configured template store.
func (c *CLI) openStore(ctx context.Context, cfg *Config) (store.Store, error) {
	uri := cfg.storeURI()
	st, err := store.NewMongoStore(ctx, uri, cfg.storeDatabase())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect template store %s", uri)
	}
	return st, nil
}

// storeListCommand creates the store list subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	var (
		width int
		depth int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored templates, hardest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			records, err := st.List(ctx, store.Filter{Width: width, Depth: depth, Limit: limit})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("No templates match")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("%s  w=%d gates=%-3d hardness=%6.2f  %s\n",
					StyleHighlight.Render(shortHash(rec.CanonicalHash)),
					rec.Width, rec.GateCount, rec.HardnessScore,
					StyleDim.Render(rec.JobID))
			}
			printDetail("%d templates", len(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0, "filter by register width (0 = all)")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "filter by circuit depth (0 = all)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum templates to list")

	return cmd
}

// storeStatsCommand creates the store stats subcommand.
func (c *CLI) storeStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show template store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			stats, err := st.Stats(ctx)
			if err != nil {
				return err
			}
			census, err := st.CountByWidthDepth(ctx)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Template Store"))
			printKeyValue("Total", StyleNumber.Render(fmt.Sprintf("%d", stats.Total)))
			printKeyValue("Avg hardness", fmt.Sprintf("%.2f", stats.AvgHardness))

			widths := make([]int, 0, len(stats.ByWidth))
			for w := range stats.ByWidth {
				widths = append(widths, w)
			}
			sort.Ints(widths)
			for _, w := range widths {
				printKeyValue(fmt.Sprintf("Width %d", w), StyleNumber.Render(fmt.Sprintf("%d", stats.ByWidth[w])))
			}

			if len(census) > 0 {
				printNewline()
				for _, row := range census {
					printDetail("w=%d depth=%d: %d templates", row.Width, row.Depth, row.Count)
				}
			}
			return nil
		},
	}
}

// storeBrowseCommand creates the interactive store browser.
func (c *CLI) storeBrowseCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stored templates interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			records, err := st.List(ctx, store.Filter{Limit: limit})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("Store is empty")
				printNextStep("Generate some", "revsynth generate --width 3 --store")
				return nil
			}

			p := tea.NewProgram(NewBrowseModel(records), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 200, "maximum templates to load")

	return cmd
}
