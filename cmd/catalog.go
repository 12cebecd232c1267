package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog-manager/feature/catalog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listSource   string
	listType     string
	listSearch   string
	listLimit    int
	listOffset   int
	installedFor string
)

// catalogCmd is the parent command for read-only catalog queries.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the reference catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reference entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		q := catalog.ListQuery{Source: listSource, Search: listSearch, Limit: listLimit, Offset: listOffset}
		if listType != "" {
			q.Type = catalog.ParseEntryType(listType)
		}
		entries, total, err := rt.store.List(cmd.Context(), q)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(e.ID), 10),
				e.Name,
				e.Source,
				e.ExternalID,
				string(e.Type),
				strconv.FormatInt(e.Version, 10),
				formatTime(e.LastEnrichedDate),
			})
		}
		renderTable(os.Stdout,
			[]string{"ID", "Name", "Source", "External ID", "Type", "Version", "Enriched"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		)
		fmt.Printf("%d of %d entries\n", len(entries), total)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		entry, err := rt.store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

var catalogHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the audit trail of one entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		changes, err := rt.store.History(cmd.Context(), catalog.EntityReferenceEntry, id)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(changes))
		for _, c := range changes {
			by := ""
			if c.ChangedBy != nil {
				by = *c.ChangedBy
			}
			fields := c.Changes.Data().Columns()
			sort.Strings(fields)
			rows = append(rows, []string{
				strconv.FormatInt(c.CatalogVersion, 10),
				string(c.Action),
				c.ChangedAt.Format(time.RFC3339),
				by,
				strings.Join(fields, ", "),
			})
		}
		renderTable(os.Stdout,
			[]string{"Version", "Action", "Changed At", "By", "Fields"},
			rows,
			[]columnAlignment{alignRight},
		)
		return nil
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise catalog contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		stats, err := rt.store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("\n=== Catalog Stats ===")
		fmt.Printf("Version:         %d\n", stats.CurrentVersion)
		fmt.Printf("Entries:         %s\n", humanize.Comma(stats.Entries))
		fmt.Printf("Enriched:        %s\n", humanize.Comma(stats.Enriched))
		fmt.Printf("Never Attempted: %s\n", humanize.Comma(stats.NeverAttempted))
		fmt.Printf("Installed:       %s\n", humanize.Comma(stats.Installed))

		sources := make([]string, 0, len(stats.BySource))
		for s := range stats.BySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		rows := make([][]string, 0, len(sources))
		for _, s := range sources {
			rows = append(rows, []string{s, humanize.Comma(stats.BySource[s])})
		}
		renderTable(os.Stdout, []string{"Source", "Entries"}, rows, []columnAlignment{alignLeft, alignRight})
		return nil
	},
}

var catalogInstalledCmd = &cobra.Command{
	Use:   "installed",
	Short: "List installed records",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		records, err := rt.store.ListInstalled(cmd.Context(), installedFor)
		if err != nil {
			return err
		}

		var total uint64
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			name := ""
			if r.ReferenceEntry != nil {
				name = r.ReferenceEntry.Name
			}
			size := ""
			if r.SizeBytes > 0 {
				size = humanize.Bytes(uint64(r.SizeBytes))
				total += uint64(r.SizeBytes)
			}
			rows = append(rows, []string{
				name,
				r.Platform,
				r.Version,
				size,
				humanize.Time(r.LastDetected),
				r.InstallLocation,
			})
		}
		renderTable(os.Stdout,
			[]string{"Name", "Platform", "Version", "Size", "Detected", "Location"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		)
		fmt.Printf("%d records, %s on disk\n", len(records), humanize.Bytes(total))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogHistoryCmd, catalogStatsCmd, catalogInstalledCmd)

	catalogListCmd.Flags().StringVar(&listSource, "source", "", "Filter by source")
	catalogListCmd.Flags().StringVar(&listType, "type", "", "Filter by type (Game, Application, Tool, Utility)")
	catalogListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive name filter")
	catalogListCmd.Flags().IntVar(&listLimit, "limit", 100, "Page size (max 500)")
	catalogListCmd.Flags().IntVar(&listOffset, "offset", 0, "Page offset")
	catalogInstalledCmd.Flags().StringVar(&installedFor, "platform", "", "Restrict to one platform")
}

func parseEntryID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return uint(id), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
