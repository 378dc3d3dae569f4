// Package setup implements the onboarding wizard that configures a new organization.
package setup

// StepID names a wizard step.
type StepID string

const (
	StepOrganization    StepID = "organization"
	StepRegional        StepID = "regional"
	StepBranches        StepID = "branches"
	StepDepartments     StepID = "departments"
	StepAssetCategories StepID = "asset_categories"
	StepAdmin           StepID = "admin"
)

// Organization is the company being set up.
type Organization struct {
	Name      string `json:"name"`
	LegalName string `json:"legalName,omitempty"`
	Industry  string `json:"industry,omitempty"`
	TaxID     string `json:"taxId,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Regional holds locale settings.
type Regional struct {
	Currency   string `json:"currency"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"dateFormat"`

	// FiscalYearStart is the month (1-12) the fiscal year begins. Zero means January.
	FiscalYearStart int `json:"fiscalYearStart,omitempty"`
}

// Branch is a physical site holding assets.
type Branch struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

// Department belongs to a branch, referenced by branch code.
type Department struct {
	Name       string `json:"name"`
	BranchCode string `json:"branchCode"`
	Head       string `json:"head,omitempty"`
}

// AssetCategory seeds the asset classification with depreciation defaults.
type AssetCategory struct {
	Name               string  `json:"name"`
	DepreciationMethod string  `json:"depreciationMethod,omitempty"`
	UsefulLifeYears    float64 `json:"usefulLifeYears,omitempty"`
}

// Admin is the first administrator account.
type Admin struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Configuration is everything the wizard collects.
type Configuration struct {
	Organization    Organization    `json:"organization"`
	Regional        Regional        `json:"regional"`
	Branches        []Branch        `json:"branches"`
	Departments     []Department    `json:"departments"`
	AssetCategories []AssetCategory `json:"assetCategories"`
	Admin           Admin           `json:"admin"`
}

// StepField describes one input of a step.
type StepField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// Step describes one wizard page.
type Step struct {
	ID          StepID      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Repeated    bool        `json:"repeated"`
	Fields      []StepField `json:"fields"`
}

// Result is the backend's answer to a submitted configuration.
type Result struct {
	OrganizationID string         `json:"organizationId,omitempty"`
	Message        string         `json:"message,omitempty"`
	Raw            map[string]any `json:"raw,omitempty"`
}
