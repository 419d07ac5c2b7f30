package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/fairguide/internal/companies"
	"github.com/jonathan/fairguide/internal/schemas"
)

var (
	companyJSON   bool
	companyAssets bool
)

var companyCmd = &cobra.Command{
	Use:   "company <id>",
	Short: "Show the normalized record of one company",
	Long:  "Fetches one company from the CRM and prints the record the page template receives.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompany,
}

func init() {
	companyCmd.Flags().BoolVar(&companyJSON, "json", false, "Print the record as JSON")
	companyCmd.Flags().BoolVar(&companyAssets, "assets", false, "Resolve logo and ad before printing")
	rootCmd.AddCommand(companyCmd)
}

func runCompany(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	id := args[0]
	company, err := a.service.GetCompany(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch company %s: %w", id, err)
	}
	if company == nil {
		return fmt.Errorf("company %s not found", id)
	}

	if companyAssets {
		if err := a.service.ResolveAssets(ctx, company); err != nil {
			return fmt.Errorf("failed to resolve assets: %w", err)
		}
	}

	if companyJSON {
		if err := schemas.ValidateValue(schemas.CompanySchema, company); err != nil {
			return fmt.Errorf("company record failed validation: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), company)
	}
	return writeCompany(cmd.OutOrStdout(), company)
}

// writeCompany prints the record as labelled lines.
func writeCompany(w io.Writer, c *companies.Company) error {
	var sb strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%-16s %s\n", label+":", value)
		}
	}

	line("ID", c.ID)
	line("Name", c.Name)
	line("Booth", c.Booth)
	line("Website", c.Website)
	line("Contact", strings.ReplaceAll(c.Contact, "\n", " / "))
	line("Interested in", strings.Join(c.InterestedIn, ", "))
	line("Offering", strings.Join(c.Offering, ", "))
	line("Entry level", companies.JoinItems(c.EntryLevel, ", ", " und "))
	line("Thesis", companies.JoinItems(c.Thesis, ", ", " und "))
	for _, e := range c.Employees {
		line("Employees", e.Label+": "+e.Value)
	}
	line("Media package", c.MediaPackage)
	line("Ad", yesNo(c.HasAd))
	line("Logo file", assetLine(c.Logo))
	if c.HasAd {
		line("Ad file", assetLine(c.Ad))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func assetLine(ref companies.AssetRef) string {
	if ref.Path == "" {
		return ""
	}
	if ref.Placeholder {
		return ref.Path + " (placeholder)"
	}
	return ref.Path
}
