package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"catalog-manager/feature/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importSoftwareFile string
	importGamesFile    string
	importMaxGames     int
)

// importCmd loads scanner CSV output into the catalog.
var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import software and game lists into the catalog",
	Long: `Reads software.csv and games.csv from the given directory (default ".")
and upserts every row into the catalog. Rows that match the stored entry are
left untouched. Exits non-zero when any row fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		rt, err := openRuntime(true)
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := importer.New(rt.store, rt.logger).Import(cmd.Context(), importer.Options{
			Dir:          dir,
			SoftwareFile: importSoftwareFile,
			GamesFile:    importGamesFile,
			MaxGames:     importMaxGames,
		})
		if errors.Is(err, importer.ErrMissingInput) {
			return fmt.Errorf("nothing to import in %s: %w", dir, err)
		}
		if err != nil {
			return err
		}

		rows := make([][]string, 0, 2)
		for _, fr := range []importer.FileReport{report.Software, report.Games} {
			rows = append(rows, []string{
				fr.File,
				strconv.Itoa(fr.Rows),
				strconv.Itoa(fr.Imported),
				strconv.Itoa(fr.Unchanged),
				strconv.Itoa(fr.Skipped),
				strconv.Itoa(fr.Errors),
				fr.Error,
			})
		}
		renderTable(os.Stdout,
			[]string{"File", "Rows", "Imported", "Unchanged", "Skipped", "Errors", "Note"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
		)

		rt.logger.Info("Import completed", zap.Duration("execution_time", report.Duration))
		if report.Failed() {
			return errors.New("import finished with errors")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSoftwareFile, "software", "", "Software list file name (default software.csv)")
	importCmd.Flags().StringVar(&importGamesFile, "games", "", "Game list file name (default games.csv)")
	importCmd.Flags().IntVar(&importMaxGames, "max-games", 0, "Maximum number of game rows to read (0 = no limit)")
}
