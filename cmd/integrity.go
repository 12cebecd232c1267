package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"catalog-manager/core/storage"
	"catalog-manager/feature/integrity"
	"catalog-manager/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the catalog",
	Long:  `Checks the catalog schema, the version counter and audit trail, and the snapshot bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openIntegrity()
		if err != nil {
			return err
		}
		defer rt.close()

		startTime := time.Now()
		report := svc.CheckAll(cmd.Context())

		if report.Schema != nil {
			logSchema(rt.logger, report.Schema)
		}
		if report.Versions != nil {
			logVersions(rt.logger, report.Versions)
		}
		if report.Storage != nil {
			logStorage(rt.logger, report.Storage)
		}
		for check, msg := range report.Errors {
			rt.logger.Error("Check failed", zap.String("check", check), zap.String("error", msg))
		}

		if jsonFlag {
			filename := fmt.Sprintf("integrity_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			rt.logger.Info("Detailed JSON report saved", zap.String("file", filename))
		}

		rt.logger.Info("Integrity check completed",
			zap.Bool("healthy", report.Healthy),
			zap.Duration("execution_time", time.Since(startTime)),
		)
		if !report.Healthy {
			return errors.New("catalog integrity problems found")
		}
		return nil
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the catalog tables against the expected schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openIntegrity()
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		logSchema(rt.logger, report)
		return nil
	},
}

// versionsCmd represents the integrity versions command
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Check the version counter and audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openIntegrity()
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := svc.CheckVersions(cmd.Context())
		if err != nil {
			return fmt.Errorf("version check failed: %w", err)
		}
		logVersions(rt.logger, report)
		return nil
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the snapshot bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, rt, err := openIntegrity()
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := svc.CheckStorage(cmd.Context())
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}
		logStorage(rt.logger, report)

		if !report.Exists {
			if !fixFlag {
				rt.logger.Info("Run with --fix to create the bucket.")
				return nil
			}
			rt.logger.Info("Creating snapshot bucket...")
			if err := svc.FixStorage(cmd.Context()); err != nil {
				return fmt.Errorf("failed to fix storage: %w", err)
			}
			rt.logger.Info("Storage fixed successfully.")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(schemaCmd, versionsCmd, storageCmd)

	integrityCmd.Flags().BoolVar(&jsonFlag, "json", false, "Save the detailed report as JSON")
	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when missing")
}

func openIntegrity() (*integrity.Service, *runtime, error) {
	rt, err := openRuntime(false)
	if err != nil {
		return nil, nil, err
	}

	var client storage.Client
	if rt.cfg.Storage.Enabled {
		client, err = storage.NewClient(rt.cfg.Storage)
		if err != nil {
			rt.close()
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}
	return integrity.NewService(rt.db, client, rt.cfg.Storage, rt.logger), rt, nil
}

func logSchema(logg *zap.Logger, report *checks.SchemaReport) {
	if report.Matched {
		logg.Info("Catalog schema matches expected definition.", zap.String("driver", report.Driver))
		return
	}
	logg.Warn("Catalog schema mismatches found", zap.String("driver", report.Driver))
	for table, tbl := range report.Tables {
		if tbl.Status == "ok" {
			continue
		}
		if len(tbl.MissingColumns) > 0 {
			logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
		}
		if len(tbl.TypeMismatches) > 0 {
			logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
		}
		if tbl.Status == "missing" {
			logg.Warn("Missing Table", zap.String("table", table))
		}
	}
	for _, e := range report.Errors {
		logg.Error("Inspection Error", zap.String("error", e))
	}
}

func logVersions(logg *zap.Logger, report *checks.VersionReport) {
	if report.Matched {
		logg.Info("Version counter and audit trail are consistent.", zap.Int64("version", report.CurrentVersion))
		return
	}
	logg.Warn("Version inconsistencies found",
		zap.Int64("current_version", report.CurrentVersion),
		zap.Int64("max_entry_version", report.MaxEntryVersion),
		zap.Int64("max_change_version", report.MaxChangeVersion),
		zap.Bool("counter_behind", report.CounterBehind),
		zap.Int("missing_audit", len(report.MissingAudit)),
		zap.Strings("duplicate_keys", report.DuplicateKeys),
		zap.Int64s("duplicate_versions", report.DuplicateVersions),
	)
}

func logStorage(logg *zap.Logger, report *checks.StorageReport) {
	if !report.Exists {
		logg.Warn("Snapshot bucket is missing", zap.String("bucket", report.Bucket))
		return
	}
	logg.Info("Snapshot bucket is present",
		zap.String("bucket", report.Bucket),
		zap.Int("snapshots", report.Snapshots),
		zap.Bool("latest_present", report.LatestPresent),
	)
}
