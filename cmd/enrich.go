package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"catalog-manager/feature/enrichment"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	enrichForce bool
	sweepLimit  int
)

// enrichCmd is the parent command for metadata enrichment.
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich catalog entries from metadata providers",
}

var enrichEntryCmd = &cobra.Command{
	Use:   "entry <id>",
	Short: "Enrich a single catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid entry id %q", args[0])
		}

		rt, err := openRuntime(true)
		if err != nil {
			return err
		}
		defer rt.close()

		entry, err := rt.store.Get(cmd.Context(), uint(id))
		if err != nil {
			return err
		}

		orchestrator := enrichment.NewOrchestrator(rt.store, enrichment.BuildRegistry(rt.cfg.Providers, rt.logger), rt.cfg.Enrichment, rt.logger)
		out := orchestrator.EnrichDetailed(cmd.Context(), entry, enrichForce)

		fmt.Printf("Entry:      %d (%s)\n", entry.ID, entry.Name)
		fmt.Printf("Status:     %s\n", out.Status)
		if out.Provider != "" {
			fmt.Printf("Provider:   %s (confidence %.2f)\n", out.Provider, out.Confidence)
		}
		if len(out.Contacted) > 0 {
			fmt.Printf("Contacted:  %v\n", out.Contacted)
		}
		if out.Status == enrichment.StatusFailed {
			return errors.New(out.Error)
		}
		return nil
	},
}

var enrichSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Enrich every entry lacking fresh metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(true)
		if err != nil {
			return err
		}
		defer rt.close()

		orchestrator := enrichment.NewOrchestrator(rt.store, enrichment.BuildRegistry(rt.cfg.Providers, rt.logger), rt.cfg.Enrichment, rt.logger)
		rt.logger.Info("Enriching pending entries (this might take a while)...")
		report, err := orchestrator.Sweep(cmd.Context(), enrichment.SweepOptions{Limit: sweepLimit, Force: enrichForce})
		if err != nil {
			return err
		}

		fmt.Println("\n=== Enrichment Sweep ===")
		fmt.Printf("Selected:     %d\n", report.Selected)
		fmt.Printf("Enriched:     %d\n", report.Enriched)
		fmt.Printf("No Match:     %d\n", report.NoMatch)
		fmt.Printf("Rate Limited: %d\n", report.RateLimited)
		fmt.Printf("Invalid:      %d\n", report.Invalid)
		fmt.Printf("Failed:       %d\n", report.Failed)
		fmt.Printf("Cancelled:    %d\n", report.Cancelled)
		fmt.Printf("Duration:     %s\n", report.Duration)

		if len(report.ByProvider) > 0 {
			names := make([]string, 0, len(report.ByProvider))
			for name := range report.ByProvider {
				names = append(names, name)
			}
			sort.Strings(names)
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, strconv.Itoa(report.ByProvider[name])})
			}
			renderTable(os.Stdout, []string{"Provider", "Enriched"}, rows, []columnAlignment{alignLeft, alignRight})
		}

		rt.logger.Info("Enrichment sweep completed",
			zap.Int("selected", report.Selected),
			zap.Int("enriched", report.Enriched),
			zap.Int("failed", report.Failed),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(enrichCmd)
	enrichCmd.AddCommand(enrichEntryCmd, enrichSweepCmd)

	enrichCmd.PersistentFlags().BoolVar(&enrichForce, "force", false, "Ignore the cool-down window")
	enrichSweepCmd.Flags().IntVar(&sweepLimit, "limit", 0, "Maximum entries to enrich (0 = configured batch size)")
}
