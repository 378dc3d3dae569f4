package setup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/domain/audit"
)

type fakeBackend struct {
	got  any
	resp map[string]any
	err  error
}

func (b *fakeBackend) SubmitSetup(_ context.Context, cfg any) (map[string]any, error) {
	b.got = cfg
	return b.resp, b.err
}

type fakeRecorder struct{ events []audit.Event }

func (r *fakeRecorder) Record(_ context.Context, e audit.Event) {
	r.events = append(r.events, e)
}

func validConfig() Configuration {
	return Configuration{
		Organization: Organization{Name: "Acme Hospitals"},
		Regional:     Regional{Currency: "usd", Timezone: "Asia/Kolkata", DateFormat: "DD/MM/YYYY", FiscalYearStart: 4},
		Branches: []Branch{
			{Code: "blr", Name: "Bangalore"},
			{Code: "MUM", Name: "Mumbai"},
		},
		Departments: []Department{
			{Name: "Radiology", BranchCode: "BLR"},
			{Name: "Radiology", BranchCode: "mum"},
		},
		AssetCategories: []AssetCategory{
			{Name: "Medical equipment", DepreciationMethod: "WDV", UsefulLifeYears: 10},
		},
		Admin: Admin{FullName: "Root", Email: " Admin@Acme.test ", Password: "s3cret-pass"},
	}
}

func TestValidateStep(t *testing.T) {
	tests := []struct {
		name   string
		step   StepID
		mutate func(*Configuration)
		field  string
	}{
		{"valid organization", StepOrganization, func(*Configuration) {}, ""},
		{"missing organization name", StepOrganization, func(c *Configuration) { c.Organization.Name = " " }, "organization.name"},
		{"bad contact email", StepOrganization, func(c *Configuration) { c.Organization.Email = "nobody" }, "organization.email"},
		{"currency length", StepRegional, func(c *Configuration) { c.Regional.Currency = "US" }, "regional.currency"},
		{"currency digits", StepRegional, func(c *Configuration) { c.Regional.Currency = "U5D" }, "regional.currency"},
		{"unknown timezone", StepRegional, func(c *Configuration) { c.Regional.Timezone = "Mars/Olympus" }, "regional.timezone"},
		{"missing timezone", StepRegional, func(c *Configuration) { c.Regional.Timezone = "" }, "regional.timezone"},
		{"unsupported date format", StepRegional, func(c *Configuration) { c.Regional.DateFormat = "YYYY/DD/MM" }, "regional.dateFormat"},
		{"fiscal month out of range", StepRegional, func(c *Configuration) { c.Regional.FiscalYearStart = 13 }, "regional.fiscalYearStart"},
		{"no branches", StepBranches, func(c *Configuration) { c.Branches = nil }, "branches"},
		{"duplicate branch code", StepBranches, func(c *Configuration) { c.Branches[1].Code = "BLR" }, "branches[1].code"},
		{"bad branch code", StepBranches, func(c *Configuration) { c.Branches[0].Code = "a b" }, "branches[0].code"},
		{"branch name", StepBranches, func(c *Configuration) { c.Branches[0].Name = "" }, "branches[0].name"},
		{"department unknown branch", StepDepartments, func(c *Configuration) { c.Departments[0].BranchCode = "DEL" }, "departments[0].branchCode"},
		{"department duplicate in branch", StepDepartments, func(c *Configuration) { c.Departments[1].BranchCode = "BLR" }, "departments[1].name"},
		{"no departments is fine", StepDepartments, func(c *Configuration) { c.Departments = nil }, ""},
		{"duplicate category", StepAssetCategories, func(c *Configuration) {
			c.AssetCategories = append(c.AssetCategories, AssetCategory{Name: "medical EQUIPMENT"})
		}, "assetCategories[1].name"},
		{"negative life", StepAssetCategories, func(c *Configuration) { c.AssetCategories[0].UsefulLifeYears = -1 }, "assetCategories[0].usefulLifeYears"},
		{"admin email", StepAdmin, func(c *Configuration) { c.Admin.Email = "admin.acme.test" }, "admin.email"},
		{"admin email without domain", StepAdmin, func(c *Configuration) { c.Admin.Email = "admin@" }, "admin.email"},
		{"short password", StepAdmin, func(c *Configuration) { c.Admin.Password = "1234567" }, "admin.password"},
		{"password of exactly eight", StepAdmin, func(c *Configuration) { c.Admin.Password = "12345678" }, ""},
	}

	svc := NewService(&fakeBackend{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := svc.ValidateStep(string(tt.step), cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Equal(t, string(tt.step), appErr.Details["step"])
		})
	}
}

func TestValidateStep_UnknownStep(t *testing.T) {
	err := NewService(&fakeBackend{}, nil).ValidateStep("payments", validConfig())
	assert.True(t, apperror.IsNotFound(err))
}

func TestSteps(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, len(stepOrder))
	for i, s := range steps {
		assert.Equal(t, stepOrder[i], s.ID)
		assert.NotEmpty(t, s.Fields)
	}

	for _, f := range steps[1].Fields {
		if f.Key == "dateFormat" {
			for _, o := range f.Options {
				assert.Contains(t, DateFormats, o)
			}
		}
	}
}

func TestSubmit(t *testing.T) {
	backend := &fakeBackend{resp: map[string]any{"organization_id": 42.0, "message": "created"}}
	rec := &fakeRecorder{}
	svc := NewService(backend, rec)

	res, err := svc.Submit(context.Background(), validConfig())
	require.NoError(t, err)
	assert.Equal(t, "42", res.OrganizationID)
	assert.Equal(t, "created", res.Message)

	sent, ok := backend.got.(Configuration)
	require.True(t, ok)
	assert.Equal(t, "USD", sent.Regional.Currency)
	assert.Equal(t, "BLR", sent.Branches[0].Code)
	assert.Equal(t, "MUM", sent.Departments[1].BranchCode)
	assert.Equal(t, "written_down_value", sent.AssetCategories[0].DepreciationMethod)
	assert.Equal(t, "admin@acme.test", sent.Admin.Email)
	assert.Equal(t, "s3cret-pass", sent.Admin.Password)

	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.ActionSetupSubmit, rec.events[0].Action)
	assert.Equal(t, 2, rec.events[0].RowCount)

	var logged Configuration
	require.NoError(t, json.Unmarshal(rec.events[0].Filters, &logged))
	assert.Empty(t, logged.Admin.Password, "password is not written to the audit log")
}

func TestSubmit_ValidationStopsBeforeBackend(t *testing.T) {
	backend := &fakeBackend{}
	cfg := validConfig()
	cfg.Branches = nil

	_, err := NewService(backend, nil).Submit(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, backend.got)
}

func TestSubmit_BackendError(t *testing.T) {
	upstream := apperror.NewUpstream(500, "boom")
	rec := &fakeRecorder{}
	_, err := NewService(&fakeBackend{err: upstream}, rec).Submit(context.Background(), validConfig())

	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream))
	assert.Empty(t, rec.events)
}
