package setup

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/domain/reports"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 8

// DateFormats maps the offered display formats to Go layouts.
var DateFormats = map[string]string{
	"YYYY-MM-DD": "2006-01-02",
	"DD/MM/YYYY": "02/01/2006",
	"MM/DD/YYYY": "01/02/2006",
	"DD-MM-YYYY": "02-01-2006",
	"DD.MM.YYYY": "02.01.2006",
}

var (
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	codePattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)
)

var stepOrder = []StepID{
	StepOrganization,
	StepRegional,
	StepBranches,
	StepDepartments,
	StepAssetCategories,
	StepAdmin,
}

var validators = map[StepID]func(*Configuration) error{
	StepOrganization:    validateOrganization,
	StepRegional:        validateRegional,
	StepBranches:        validateBranches,
	StepDepartments:     validateDepartments,
	StepAssetCategories: validateAssetCategories,
	StepAdmin:           validateAdmin,
}

// Steps returns the wizard steps in order.
func Steps() []Step {
	formats := []string{"YYYY-MM-DD", "DD/MM/YYYY", "MM/DD/YYYY", "DD-MM-YYYY", "DD.MM.YYYY"}

	return []Step{
		{
			ID:          StepOrganization,
			Title:       "Organization",
			Description: "Company identity used on reports and exports.",
			Fields: []StepField{
				{Key: "name", Label: "Organization name", Type: "text", Required: true},
				{Key: "legalName", Label: "Legal name", Type: "text"},
				{Key: "industry", Label: "Industry", Type: "text"},
				{Key: "taxId", Label: "Tax ID", Type: "text"},
				{Key: "email", Label: "Contact email", Type: "email"},
				{Key: "phone", Label: "Phone", Type: "text"},
			},
		},
		{
			ID:          StepRegional,
			Title:       "Regional settings",
			Description: "Currency, time zone and date display.",
			Fields: []StepField{
				{Key: "currency", Label: "Currency (ISO 4217)", Type: "text", Required: true},
				{Key: "timezone", Label: "Time zone", Type: "text", Required: true},
				{Key: "dateFormat", Label: "Date format", Type: "select", Required: true, Options: formats},
				{Key: "fiscalYearStart", Label: "Fiscal year start month", Type: "number"},
			},
		},
		{
			ID:          StepBranches,
			Title:       "Branches",
			Description: "Sites that hold assets. At least one is required.",
			Repeated:    true,
			Fields: []StepField{
				{Key: "code", Label: "Code", Type: "text", Required: true},
				{Key: "name", Label: "Name", Type: "text", Required: true},
				{Key: "city", Label: "City", Type: "text"},
				{Key: "address", Label: "Address", Type: "text"},
			},
		},
		{
			ID:          StepDepartments,
			Title:       "Departments",
			Description: "Departments per branch.",
			Repeated:    true,
			Fields: []StepField{
				{Key: "name", Label: "Name", Type: "text", Required: true},
				{Key: "branchCode", Label: "Branch", Type: "select", Required: true},
				{Key: "head", Label: "Head of department", Type: "text"},
			},
		},
		{
			ID:          StepAssetCategories,
			Title:       "Asset categories",
			Description: "Categories with their default depreciation.",
			Repeated:    true,
			Fields: []StepField{
				{Key: "name", Label: "Name", Type: "text", Required: true},
				{Key: "depreciationMethod", Label: "Depreciation method", Type: "select",
					Options: []string{string(reports.StraightLine), string(reports.WrittenDownValue)}},
				{Key: "usefulLifeYears", Label: "Useful life (years)", Type: "number"},
			},
		},
		{
			ID:          StepAdmin,
			Title:       "Administrator",
			Description: "The first administrator account.",
			Fields: []StepField{
				{Key: "fullName", Label: "Full name", Type: "text", Required: true},
				{Key: "email", Label: "Email", Type: "email", Required: true},
				{Key: "password", Label: "Password", Type: "password", Required: true},
			},
		},
	}
}

// ParseStep resolves a step id.
func ParseStep(s string) (StepID, error) {
	step := StepID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validators[step]; !ok {
		return "", apperror.NewNotFound("setup step", s)
	}
	return step, nil
}

// ValidateStep checks one step of cfg. Steps that reference earlier ones,
// like departments referencing branches, read them from cfg.
func ValidateStep(step StepID, cfg *Configuration) error {
	validate, ok := validators[step]
	if !ok {
		return apperror.NewNotFound("setup step", string(step))
	}
	if err := validate(cfg); err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return appErr.WithDetail("step", string(step))
		}
		return err
	}
	return nil
}

// Validate checks every step in wizard order and returns the first failure.
func Validate(cfg *Configuration) error {
	for _, step := range stepOrder {
		if err := ValidateStep(step, cfg); err != nil {
			return err
		}
	}
	return nil
}

func fieldError(field, message string) *apperror.AppError {
	return apperror.NewValidation(message).WithDetail("field", field)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateOrganization(cfg *Configuration) error {
	if blank(cfg.Organization.Name) {
		return fieldError("organization.name", "organization name is required")
	}
	if e := cfg.Organization.Email; !blank(e) && !strings.Contains(e, "@") {
		return fieldError("organization.email", "contact email is invalid")
	}
	return nil
}

func validateRegional(cfg *Configuration) error {
	r := cfg.Regional
	if !currencyPattern.MatchString(strings.TrimSpace(r.Currency)) {
		return fieldError("regional.currency", "currency must be a 3-letter code")
	}
	if blank(r.Timezone) {
		return fieldError("regional.timezone", "time zone is required")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(r.Timezone)); err != nil {
		return fieldError("regional.timezone", fmt.Sprintf("unknown time zone %q", r.Timezone))
	}
	if _, ok := DateFormats[r.DateFormat]; !ok {
		return fieldError("regional.dateFormat", fmt.Sprintf("unsupported date format %q", r.DateFormat))
	}
	if r.FiscalYearStart < 0 || r.FiscalYearStart > 12 {
		return fieldError("regional.fiscalYearStart", "fiscal year start must be a month between 1 and 12")
	}
	return nil
}

func validateBranches(cfg *Configuration) error {
	if len(cfg.Branches) == 0 {
		return fieldError("branches", "at least one branch is required")
	}
	seen := make(map[string]int, len(cfg.Branches))
	for i, b := range cfg.Branches {
		path := fmt.Sprintf("branches[%d]", i)
		code := strings.TrimSpace(b.Code)
		if !codePattern.MatchString(code) {
			return fieldError(path+".code", "branch code must be 1-20 letters, digits, '-' or '_'")
		}
		if blank(b.Name) {
			return fieldError(path+".name", "branch name is required")
		}
		key := strings.ToUpper(code)
		if first, dup := seen[key]; dup {
			return fieldError(path+".code", fmt.Sprintf("branch code %q is already used by branches[%d]", code, first))
		}
		seen[key] = i
	}
	return nil
}

func validateDepartments(cfg *Configuration) error {
	branches := make(map[string]struct{}, len(cfg.Branches))
	for _, b := range cfg.Branches {
		branches[strings.ToUpper(strings.TrimSpace(b.Code))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(cfg.Departments))
	for i, d := range cfg.Departments {
		path := fmt.Sprintf("departments[%d]", i)
		if blank(d.Name) {
			return fieldError(path+".name", "department name is required")
		}
		branch := strings.ToUpper(strings.TrimSpace(d.BranchCode))
		if _, ok := branches[branch]; !ok {
			return fieldError(path+".branchCode", fmt.Sprintf("unknown branch %q", d.BranchCode))
		}
		key := branch + "/" + strings.ToLower(strings.TrimSpace(d.Name))
		if _, dup := seen[key]; dup {
			return fieldError(path+".name", fmt.Sprintf("department %q already exists in branch %q", d.Name, d.BranchCode))
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateAssetCategories(cfg *Configuration) error {
	seen := make(map[string]struct{}, len(cfg.AssetCategories))
	for i, c := range cfg.AssetCategories {
		path := fmt.Sprintf("assetCategories[%d]", i)
		if blank(c.Name) {
			return fieldError(path+".name", "category name is required")
		}
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, dup := seen[key]; dup {
			return fieldError(path+".name", fmt.Sprintf("category %q is listed twice", c.Name))
		}
		seen[key] = struct{}{}
		if c.UsefulLifeYears < 0 {
			return fieldError(path+".usefulLifeYears", "useful life cannot be negative")
		}
	}
	return nil
}

func validateAdmin(cfg *Configuration) error {
	a := cfg.Admin
	if blank(a.FullName) {
		return fieldError("admin.fullName", "administrator name is required")
	}
	email := strings.TrimSpace(a.Email)
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return fieldError("admin.email", "administrator email is invalid")
	}
	if len([]rune(a.Password)) < MinPasswordLength {
		return fieldError("admin.password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
