package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jonathan/fairguide/internal/guide"
	"github.com/jonathan/fairguide/internal/schemas"
)

var (
	companiesJSON bool
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the participating companies",
	Long:  "Lists every company taking part in the fair, ordered by name, with its CRM id.",
	Args:  cobra.NoArgs,
	RunE:  runCompanies,
}

func init() {
	companiesCmd.Flags().BoolVar(&companiesJSON, "json", false, "Print the list as JSON")
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	listings, err := a.service.GetCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if companiesJSON {
		if err := schemas.ValidateValue(schemas.ListingsSchema, listings); err != nil {
			return fmt.Errorf("company list failed validation: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), listings)
	}
	return writeCompanyTable(cmd.OutOrStdout(), listings)
}

// writeCompanyTable prints listings in two columns. Widths are measured in
// terminal cells so names with umlauts or wide characters stay aligned.
func writeCompanyTable(w io.Writer, listings guide.Listings) error {
	nameWidth := runewidth.StringWidth("NAME")
	for _, l := range listings {
		nameWidth = max(nameWidth, runewidth.StringWidth(l.Name))
	}

	if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight("NAME", nameWidth), "ID"); err != nil {
		return err
	}
	for _, l := range listings {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(l.Name, nameWidth), l.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d companies\n", len(listings))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
