package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"catalog-manager/core/storage"
	"catalog-manager/feature/snapshot"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pruneKeep int

// snapshotCmd is the parent command for catalog snapshots.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Publish and inspect catalog snapshots in object storage",
}

var snapshotPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the current catalog version",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openSnapshots()
		if err != nil {
			return err
		}
		defer rt.close()

		manifest, err := svc.Publish(cmd.Context())
		if err != nil {
			return err
		}
		printManifest(manifest)
		return nil
	},
}

var snapshotLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently published snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openSnapshots()
		if err != nil {
			return err
		}
		defer rt.close()

		manifest, err := svc.Latest(cmd.Context())
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			fmt.Println("No snapshot has been published yet.")
			return nil
		}
		if err != nil {
			return err
		}
		printManifest(manifest)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshot versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openSnapshots()
		if err != nil {
			return err
		}
		defer rt.close()

		versions, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(versions))
		for _, v := range versions {
			rows = append(rows, []string{strconv.FormatInt(v, 10), snapshot.ObjectName(v)})
		}
		renderTable(os.Stdout, []string{"Version", "Object"}, rows, []columnAlignment{alignRight, alignLeft})
		return nil
	},
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove all but the newest snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openSnapshots()
		if err != nil {
			return err
		}
		defer rt.close()

		keep := pruneKeep
		if keep <= 0 {
			keep = rt.cfg.Snapshot.Keep
		}
		removed, err := svc.Prune(cmd.Context(), keep)
		if err != nil {
			return err
		}
		rt.logger.Info("Snapshots pruned", zap.Int("keep", keep), zap.Strings("removed", removed))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotPublishCmd, snapshotLatestCmd, snapshotListCmd, snapshotPruneCmd)

	snapshotPruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "Snapshots to keep (0 = configured retention)")
}

func openSnapshots() (*snapshot.Service, *runtime, error) {
	rt, err := openRuntime(false)
	if err != nil {
		return nil, nil, err
	}
	if !rt.cfg.Storage.Enabled {
		rt.close()
		return nil, nil, errors.New("snapshot storage is disabled (set STORAGE_ENABLED=true)")
	}
	client, err := storage.NewClient(rt.cfg.Storage)
	if err != nil {
		rt.close()
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return snapshot.NewService(rt.store, client, rt.cfg.Storage, rt.cfg.Snapshot, rt.logger), rt, nil
}

func printManifest(m *snapshot.Manifest) {
	fmt.Printf("Version:  %d\n", m.Version)
	fmt.Printf("Entries:  %s\n", humanize.Comma(int64(m.Entries)))
	fmt.Printf("Object:   %s\n", m.Object)
	fmt.Printf("Size:     %s\n", humanize.Bytes(uint64(m.SizeBytes)))
	fmt.Printf("Created:  %s (%s)\n", m.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(m.CreatedAt))
}
