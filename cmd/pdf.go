package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pdfNumber string

var renderPDFCmd = &cobra.Command{
	Use:   "render-pdf",
	Short: "Regenerate invoice PDF documents",
	Long: `Re-renders the PDF for one invoice selected by number, or for every
invoice that has no document yet when --number is omitted.`,
	Example: `  billing render-pdf --number MEV26-014
  billing render-pdf`,
	RunE: runRenderPDF,
}

func runRenderPDF(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	count, err := eng.gen.RegenerateDocuments(pdfNumber)
	if err != nil {
		return err
	}

	fmt.Printf("documents rendered: %d\n", count)
	return nil
}

func init() {
	renderPDFCmd.Flags().StringVar(&pdfNumber, "number", "", "invoice number (default: all invoices without a document)")
	rootCmd.AddCommand(renderPDFCmd)
}
