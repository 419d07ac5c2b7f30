// Package companies turns raw CRM account rows into display-ready exhibitor
// records.
package companies

// Company is the normalized record of one exhibitor. It is built once per
// fetch and not modified afterwards, except for the asset references which
// are filled in by asset resolution before rendering.
type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website"`
	Contact string `json:"contact"`
	Booth   string `json:"booth"`

	InterestedIn []string `json:"interested_in"`
	Offering     []string `json:"offering"`

	FullTime   bool       `json:"full_time"`
	EntryLevel []ListItem `json:"entry_level"`
	Thesis     []ListItem `json:"thesis"`

	About string `json:"about"`
	Focus string `json:"focus"`

	Employees []SummaryLine `json:"employees"`

	MediaPackage string `json:"media_package"`
	HasAd        bool   `json:"has_ad"`

	Logo AssetRef `json:"logo"`
	Ad   AssetRef `json:"ad"`
}

// ListItem is one entry of a list the template joins in natural language.
// Last marks the final entry so the template can put "und" before it.
type ListItem struct {
	Text string `json:"text"`
	Last bool   `json:"last"`
}

// SummaryLine is one labelled value, e.g. an employee count.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AssetRef points at a local file holding a resolved asset.
type AssetRef struct {
	Path        string `json:"path,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// Listing is one entry of the company overview: display name and CRM id.
type Listing struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
