package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderTeX    bool
)

var renderCmd = &cobra.Command{
	Use:   "render [id...]",
	Short: "Render company pages or the complete guide",
	Long: "Renders the pages of the given companies into one PDF, in the given order. " +
		"Without ids every participating company is rendered.",
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output file (default fairguide.pdf, or fairguide.tex with --tex)")
	renderCmd.Flags().BoolVar(&renderTeX, "tex", false, "Write the LaTeX markup instead of compiling it")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, ids []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	out := renderOutput
	if out == "" {
		out = "fairguide.pdf"
		if renderTeX {
			out = "fairguide.tex"
		}
	}

	var data []byte
	switch {
	case renderTeX:
		if len(ids) == 0 {
			listings, err := a.service.GetCompanies(ctx)
			if err != nil {
				return fmt.Errorf("failed to list companies: %w", err)
			}
			for _, l := range listings {
				ids = append(ids, l.ID)
			}
		}
		markup, err := a.service.RenderTeX(ctx, ids...)
		if err != nil {
			return fmt.Errorf("failed to render markup: %w", err)
		}
		data = []byte(markup)
	case len(ids) == 0:
		data, err = a.service.RenderGuide(ctx)
		if err != nil {
			return fmt.Errorf("failed to render guide: %w", err)
		}
	default:
		data, err = a.service.RenderCompanies(ctx, ids...)
		if err != nil {
			return fmt.Errorf("failed to render companies: %w", err)
		}
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, humanize.Bytes(uint64(len(data))))
	return nil
}
