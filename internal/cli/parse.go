package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"drillsheet/internal/exporter"
	"drillsheet/internal/validation"
	"drillsheet/pkg/contracts/domain"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

var (
	parseFormat string
	parseOut    string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a workbook and print the result",
	Long: `Parses a single workbook and writes the result as JSON, or as CSV:
the series points of a discharge test or the activities of a daily report.
The parse job is recorded in the configured store.

The command fails when the workbook cannot be read or does not validate;
the result is still written in the second case.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", formatJSON, "output format: json or csv")
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(parseCmd)
}

type parseOutput struct {
	Result *domain.ParseResult `json:"result"`
	Job    *domain.ParseJob    `json:"job"`
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseFormat != formatJSON && parseFormat != formatCSV {
		return fmt.Errorf("unknown format %q: want json or csv", parseFormat)
	}

	a, err := newApplication()
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	path := args[0]
	files := validation.NewFileValidator(a.Logger)
	if err := files.ValidateExcelFile(path); err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if parseOut != "" {
		if err := files.ValidateOutputDirectory(filepath.Dir(parseOut)); err != nil {
			return err
		}
	}

	res, job, storeErr := a.ParseService.ParseFile(cmd.Context(), path)
	if res == nil {
		return fmt.Errorf("parse failed: %w", storeErr)
	}

	out := cmd.OutOrStdout()
	if parseOut != "" {
		f, err := os.Create(parseOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeResult(out, parseFormat, res, job); err != nil {
		return err
	}
	if storeErr != nil {
		return fmt.Errorf("failed to record parse: %w", storeErr)
	}
	if !res.Validation.IsValid {
		return fmt.Errorf("%s is not valid: %s", filepath.Base(path), strings.Join(res.Validation.Errors, "; "))
	}
	return nil
}

func writeResult(out io.Writer, format string, res *domain.ParseResult, job *domain.ParseJob) error {
	if format == formatCSV {
		headers, records, err := exporter.ResultTable(res)
		if err != nil {
			return err
		}
		return exporter.WriteTo(out, headers, records)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(parseOutput{Result: res, Job: job})
}
