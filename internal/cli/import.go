package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"drillsheet/internal/services"
	"drillsheet/pkg/contracts/domain"
)

var (
	importWorkers int
	importExport  bool
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Parse every workbook in a directory",
	Long: `Parses the workbooks of a directory that match import.pattern and
records them in the configured store. A workbook that fails does not stop
the others; the command reports every outcome and fails at the end when
any workbook was not imported.

With --export, the tables of every parsed workbook are written as CSV
files to the exports directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "parallel parses (default: import.workers)")
	importCmd.Flags().BoolVar(&importExport, "export", false, "write CSV tables of parsed workbooks")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApplication()
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	svc := a.ImportService
	if importWorkers > 0 {
		svc = services.NewImportService(a.ParseService, a.OTelProviders, importWorkers, a.Config.Import.Pattern, a.Logger)
	}

	cmd.Printf("Importing %s...\n", args[0])
	summary, err := svc.ImportDir(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, o := range summary.Files {
		cmd.Println(outcomeLine(o))
		if !importExport || o.Status != string(domain.ParseJobParsed) || o.Result == nil {
			continue
		}
		written, err := a.Exporter.Export(o.Result, fileStem(o.File))
		if err != nil {
			return fmt.Errorf("export %s: %w", filepath.Base(o.File), err)
		}
		for _, p := range written {
			cmd.Printf("  wrote %s\n", p)
		}
	}

	cmd.Printf("%d parsed, %d failed, %d unreadable in %s\n",
		summary.Parsed, summary.Failed, summary.Unreadable, summary.Duration)

	if n := summary.Failed + summary.Unreadable; n > 0 {
		return fmt.Errorf("%d of %d workbooks were not imported", n, len(summary.Files))
	}
	return nil
}

func outcomeLine(o services.FileOutcome) string {
	line := fmt.Sprintf("%-10s %s", o.Status, filepath.Base(o.File))
	if o.Job != nil && o.Job.TestRef != "" {
		line += " -> " + o.Job.TestRef
	}
	switch {
	case o.Error != "":
		line += ": " + o.Error
	case o.Job != nil && len(o.Job.Errors) > 0:
		line += ": " + strings.Join(o.Job.Errors, "; ")
	}
	return line
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
