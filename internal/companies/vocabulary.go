package companies

// FieldSet names the CRM account fields a company record is built from.
type FieldSet struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Website        string `yaml:"website"`
	Contact        string `yaml:"contact"`
	Booth          string `yaml:"booth"`
	InterestedIn   string `yaml:"interested_in"`
	Offering       string `yaml:"offering"`
	About          string `yaml:"about"`
	Focus          string `yaml:"focus"`
	EmployeesLocal string `yaml:"employees_local"`
	EmployeesWorld string `yaml:"employees_world"`
	MediaPackage   string `yaml:"media_package"`
}

// DefaultFieldSet returns the field names used by the association's CRM.
func DefaultFieldSet() FieldSet {
	return FieldSet{
		ID:             "id",
		Name:           "name",
		Website:        "website",
		Contact:        "study_contact11_c",
		Booth:          "standplatz11_c",
		InterestedIn:   "interest_subject11_c",
		Offering:       "job_offer11_c",
		About:          "about_us11_c",
		Focus:          "our_industries11_c",
		EmployeesLocal: "employees_ch11_c",
		EmployeesWorld: "employees_world11_c",
		MediaPackage:   "messepaket11_c",
	}
}

// Select returns the field list for a get_entry_list request.
func (f FieldSet) Select() []string {
	fields := []string{
		f.ID, f.Booth, f.InterestedIn,
		f.Name, f.Website, f.Contact,
		f.EmployeesLocal, f.EmployeesWorld,
		f.Offering, f.About, f.Focus,
		f.MediaPackage,
	}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if field != "" {
			out = append(out, field)
		}
	}
	return out
}

// Label maps a CRM token to the text shown in the guide.
type Label struct {
	Token string `yaml:"token" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// Vocabulary holds the organization specific tokens and labels used while
// normalizing. Order matters for EntryLevel and Thesis: it is the output order.
type Vocabulary struct {
	FullTime   []string `yaml:"full_time"`
	EntryLevel []Label  `yaml:"entry_level" validate:"dive"`
	Thesis     []Label  `yaml:"thesis" validate:"dive"`

	EmployeesLocalLabel string `yaml:"employees_local_label"`
	EmployeesWorldLabel string `yaml:"employees_world_label"`

	// AdPackages lists media package values that include a printed ad.
	AdPackages []string `yaml:"ad_packages"`

	// CountFormat is a go-humanize FormatInteger pattern.
	CountFormat string `yaml:"count_format"`
}

// DefaultVocabulary returns the German vocabulary of the fair guide.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		FullTime: []string{"Festanstellungen"},
		EntryLevel: []Label{
			{Token: "Praktika", Label: "Praktika"},
			{Token: "Trainee", Label: "Traineeprogramme"},
		},
		Thesis: []Label{
			{Token: "Semesterarbeiten", Label: "Semester"},
			{Token: "Bachelorarbeiten", Label: "Bachelor"},
			{Token: "Masterarbeiten", Label: "Master"},
		},
		EmployeesLocalLabel: "Schweiz",
		EmployeesWorldLabel: "Weltweit",
		AdPackages:          []string{"media", "business", "first"},
		CountFormat:         "#'###.",
	}
}
