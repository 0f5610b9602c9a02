package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/locator"
)

// locateCmd represents the locate command.
var locateCmd = &cobra.Command{
	Use:   "locate <document-id> <page>",
	Short: "Locate terms on one page of a document",
	Long: `Locate the given terms on a single page and print their pixel
coordinates. Pages with a text layer are matched directly; scanned pages
fall back to OCR.

Examples:
  doclens locate contract-2024 3 --hit "indemnity"
  doclens locate contract-2024 3 --hit "indemnity" --context "liability" --format text`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		page, err := strconv.Atoi(args[1])
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page number: %s", args[1])
		}

		terms, err := termSetFromFlags(cmd)
		if err != nil {
			return err
		}

		eng, err := buildEngine(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize lookup engine: %w", err)
		}
		defer eng.cleanup()

		res, err := eng.locator.Locate(cmd.Context(), args[0], page, terms)
		if err != nil {
			return fmt.Errorf("term location failed: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "text" {
			writeLocateText(cmd.OutOrStdout(), res)
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// writeLocateText renders one page result in the human-readable format.
func writeLocateText(out io.Writer, res *locator.PageResult) {
	fmt.Fprintf(out, "Page %d (%s, %dx%d): %d match(es)\n",
		res.Page, res.Source, res.ImageWidth, res.ImageHeight, len(res.Matches))
	for _, m := range res.Matches {
		fmt.Fprintf(out, "  %-8s %-20q at (%.1f, %.1f) %gx%g for %q\n",
			m.Kind, m.Word.Text, m.Word.X, m.Word.Y, m.Word.W, m.Word.H, m.Term)
	}
}

func init() {
	rootCmd.AddCommand(locateCmd)
	addTermFlags(locateCmd)
	locateCmd.Flags().StringP("format", "f", "json", "output format (json, text)")
}
