package cmd

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/flatten"
)

// printCmd represents the print command.
var printCmd = &cobra.Command{
	Use:   "print <document-id>",
	Short: "Produce print output with highlights baked in",
	Long: `Flatten every page of a document into an image with term highlights
baked in, and write the result as a single PDF or a directory of PNGs.
Pages that cannot be rendered are skipped.

Examples:
  doclens print contract-2024 --hit "indemnity" -o contract-print.pdf
  doclens print contract-2024 --hit "indemnity" --png-dir ./printout`,
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

		res, err := eng.printer.Flatten(cmd.Context(), args[0], terms)
		if err != nil {
			return fmt.Errorf("print flattening failed: %w", err)
		}
		if len(res.Pages) == 0 {
			return fmt.Errorf("no pages of %s could be rendered", args[0])
		}
		if res.PagesSkipped > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d page(s) skipped\n", res.PagesSkipped)
		}

		if pngDir, _ := cmd.Flags().GetString("png-dir"); pngDir != "" {
			return writePNGDir(res, pngDir)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = args[0] + "-print.pdf"
		}
		if err := flatten.AssemblePDF(res, output); err != nil {
			return fmt.Errorf("failed to assemble print PDF: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d page(s) to %s\n", len(res.Pages), output)
		return nil
	},
}

// writePNGDir writes one PNG per flattened page into dir.
func writePNGDir(res *flatten.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, page := range res.Pages {
		path := filepath.Join(dir, fmt.Sprintf("page_%05d.png", page.Number))
		f, err := os.Create(path) //nolint:gosec // G304: path is built from the page number
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := png.Encode(f, page.Image); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(printCmd)
	addTermFlags(printCmd)
	printCmd.Flags().StringP("output", "o", "", "output PDF path (default <document-id>-print.pdf)")
	printCmd.Flags().String("png-dir", "", "write per-page PNGs into this directory instead of a PDF")
}
