package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Daskott/zantag/colors"
	"github.com/Daskott/zantag/server/ocr"
	"github.com/Daskott/zantag/server/ocr/tesseract"
	"github.com/spf13/cobra"
)

const SCAN_TIMEOUT = time.Minute

var (
	scanLanguages []string
	showRawText   bool

	newOCREngine = func(languages ...string) ocr.Engine {
		return tesseract.NewTesseractEngine(languages...)
	}
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Read the name, email & phone off a business card photo",
	Long: `Run a business card photo through OCR & print the contact details the
server would pre-fill a lead form with. Fields that could not be read are
printed as null.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[0])
		if err != nil {
			return formattedError("unable to read image: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), SCAN_TIMEOUT)
		defer cancel()

		scan, err := ocr.ScanCard(ctx, newOCREngine(scanLanguages...), image, 0)
		if err != nil {
			return formattedError("unable to scan card: %v", err)
		}

		printScan(cmd.OutOrStdout(), scan, showRawText)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanLanguages, "lang", []string{tesseract.DEFAULT_LANGUAGE}, "tesseract languages to read the card with")
	scanCmd.Flags().BoolVar(&showRawText, "raw", false, "also print the text read off the card")
}

func printScan(out io.Writer, scan *ocr.Scan, raw bool) {
	if raw {
		fmt.Fprintln(out, colors.Faint(scan.RawText))
		fmt.Fprintln(out)
	}

	if scan.Fields.Empty() {
		fmt.Fprintln(out, colors.Yellow("Warning:"), "no contact details found")
	}

	fields := []struct {
		label string
		value *string
	}{
		{"name", scan.Fields.Name},
		{"email", scan.Fields.Email},
		{"phone", scan.Fields.Phone},
	}

	for _, field := range fields {
		value := colors.Faint("null")
		if field.value != nil {
			value = colors.Green(*field.value)
		}
		fmt.Fprintf(out, "%-6s %v\n", field.label+":", value)
	}
}
