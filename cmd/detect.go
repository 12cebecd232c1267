package cmd

import (
	"fmt"
	"os"
	"strconv"

	"catalog-manager/feature/detection"

	"github.com/spf13/cobra"
)

var (
	detectDryRun    bool
	detectKeepStale bool
)

// detectCmd syncs detector manifests into the catalog.
var detectCmd = &cobra.Command{
	Use:   "detect [platform...]",
	Short: "Record installed games reported by platform detectors",
	Long: `Reads the detector manifests and reconciles them against the installed
records of each platform. Without arguments every installed platform is synced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(!detectDryRun)
		if err != nil {
			return err
		}
		defer rt.close()

		registry, err := detection.LoadRegistry(rt.cfg.Detection)
		if err != nil {
			return err
		}

		var detectors []detection.Detector
		if len(args) == 0 {
			detectors = registry.Installed()
		}
		for _, platform := range args {
			d, err := registry.Get(platform)
			if err != nil {
				return err
			}
			detectors = append(detectors, d)
		}
		if len(detectors) == 0 {
			return fmt.Errorf("no detector manifests found in %s", rt.cfg.Detection.ManifestDir)
		}

		syncer := detection.NewSyncer(rt.store, rt.logger)
		opts := detection.SyncOptions{DryRun: detectDryRun, KeepStale: detectKeepStale || rt.cfg.Detection.KeepStale}

		rows := make([][]string, 0, len(detectors))
		for _, d := range detectors {
			report, err := syncer.Sync(cmd.Context(), d, opts)
			if err != nil {
				return err
			}
			rows = append(rows, []string{
				report.Platform,
				strconv.Itoa(report.Detected),
				strconv.Itoa(report.Discarded),
				strconv.Itoa(report.Summary.CreateActions),
				strconv.Itoa(report.Summary.UpdateActions),
				strconv.Itoa(report.Summary.RemoveActions),
				strconv.Itoa(report.Executed),
			})
		}

		renderTable(os.Stdout,
			[]string{"Platform", "Detected", "Discarded", "Create", "Update", "Remove", "Executed"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
		)
		if detectDryRun {
			fmt.Println("Dry run: no changes written.")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(detectCmd)

	detectCmd.Flags().BoolVar(&detectDryRun, "dry-run", false, "Plan without writing")
	detectCmd.Flags().BoolVar(&detectKeepStale, "keep-stale", false, "Keep records of games no longer detected")
}
