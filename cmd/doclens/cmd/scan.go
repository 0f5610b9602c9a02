package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/radar"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <document-id>",
	Short: "Scan a whole document for terms",
	Long: `Scan every page of a document for the given terms and print a
summary of which terms were found and where. Pages are looked up in
concurrent batches; progress is reported per page.

Examples:
  doclens scan contract-2024 --hit "indemnity"
  doclens scan contract-2024 --hit "indemnity" --context "liability" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		terms, err := termSetFromFlags(cmd)
		if err != nil {
			return err
		}

		eng, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize lookup engine: %w", err)
		}
		defer eng.cleanup()

		batchSize := cfg.Scan.BatchSize
		if cmd.Flags().Changed("batch-size") {
			batchSize, _ = cmd.Flags().GetInt("batch-size")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := []radar.Option{radar.WithBatchSize(batchSize)}
		if !quiet {
			// Progress goes to stderr so stdout stays parseable.
			opts = append(opts,
				radar.WithProgress(func(ev radar.Event) {
					fmt.Fprintf(os.Stderr, "page %d/%d: %d match(es)\n", ev.PagesScanned, ev.TotalPages, ev.PageMatches)
				}),
				radar.WithFirstHit(func(page int) {
					fmt.Fprintf(os.Stderr, "first match on page %d\n", page)
				}),
			)
		}

		scanner := radar.NewScanner(eng.locator, opts...)
		report, err := scanner.Scan(cmd.Context(), args[0], terms, make(radar.Memo))
		if err != nil {
			return fmt.Errorf("radar scan failed: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Document: %s (%d pages, %d failed)\n", report.DocumentID, report.TotalPages, report.PagesFailed)
		fmt.Fprintf(out, "Found:    %s\n", joinOrDash(report.FoundTerms))
		fmt.Fprintf(out, "Missing:  %s\n", joinOrDash(report.MissingTerms))
		if len(report.PagesWithMatches) > 0 {
			fmt.Fprintf(out, "Pages:    %v\n", report.PagesWithMatches)
		}
		if report.FirstMatchPage > 0 {
			fmt.Fprintf(out, "First match on page %d\n", report.FirstMatchPage)
		}
		return nil
	},
}

func joinOrDash(terms []string) string {
	if len(terms) == 0 {
		return "-"
	}
	return strings.Join(terms, ", ")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addTermFlags(scanCmd)
	scanCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	scanCmd.Flags().Int("batch-size", 4, "pages looked up concurrently")
	scanCmd.Flags().BoolP("quiet", "q", false, "suppress per-page progress output")
}
