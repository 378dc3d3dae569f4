package setup

import (
	"context"
	"fmt"
	"strings"

	"assetdesk/internal/domain/audit"
	"assetdesk/internal/domain/reports"
	"assetdesk/pkg/logger"
)

// Backend receives the completed configuration.
type Backend interface {
	SubmitSetup(ctx context.Context, cfg any) (map[string]any, error)
}

// Service validates wizard steps and submits the configuration.
type Service struct {
	backend Backend
	audit   reports.AuditRecorder
}

// NewService creates a setup service. rec may be nil.
func NewService(backend Backend, rec reports.AuditRecorder) *Service {
	return &Service{backend: backend, audit: rec}
}

// Steps returns the wizard steps.
func (s *Service) Steps() []Step {
	return Steps()
}

// ValidateStep validates a single step of a partially filled configuration.
func (s *Service) ValidateStep(step string, cfg Configuration) error {
	id, err := ParseStep(step)
	if err != nil {
		return err
	}
	normalize(&cfg)
	return ValidateStep(id, &cfg)
}

// Submit validates every step and posts the configuration to the backend.
func (s *Service) Submit(ctx context.Context, cfg Configuration) (*Result, error) {
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	raw, err := s.backend.SubmitSetup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("submit setup: %w", err)
	}

	logger.Info(ctx, "setup submitted",
		"organization", cfg.Organization.Name,
		"branches", len(cfg.Branches),
		"departments", len(cfg.Departments))

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{
			Action:   audit.ActionSetupSubmit,
			RowCount: len(cfg.Branches),
			Filters:  audit.Snapshot(redacted(cfg)),
		})
	}

	result := &Result{Raw: raw}
	if raw != nil {
		result.OrganizationID = stringField(raw, "organizationId", "organization_id", "id")
		result.Message = stringField(raw, "message", "detail")
	}
	return result, nil
}

// normalize trims input and puts codes in canonical case.
func normalize(cfg *Configuration) {
	cfg.Organization.Name = strings.TrimSpace(cfg.Organization.Name)
	cfg.Regional.Currency = strings.ToUpper(strings.TrimSpace(cfg.Regional.Currency))
	cfg.Regional.Timezone = strings.TrimSpace(cfg.Regional.Timezone)
	cfg.Regional.DateFormat = strings.ToUpper(strings.TrimSpace(cfg.Regional.DateFormat))

	branches := make([]Branch, len(cfg.Branches))
	for i, b := range cfg.Branches {
		b.Code = strings.ToUpper(strings.TrimSpace(b.Code))
		b.Name = strings.TrimSpace(b.Name)
		branches[i] = b
	}
	cfg.Branches = branches

	departments := make([]Department, len(cfg.Departments))
	for i, d := range cfg.Departments {
		d.Name = strings.TrimSpace(d.Name)
		d.BranchCode = strings.ToUpper(strings.TrimSpace(d.BranchCode))
		departments[i] = d
	}
	cfg.Departments = departments

	categories := make([]AssetCategory, len(cfg.AssetCategories))
	for i, c := range cfg.AssetCategories {
		c.Name = strings.TrimSpace(c.Name)
		if c.DepreciationMethod != "" {
			c.DepreciationMethod = string(reports.ParseDepreciationMethod(c.DepreciationMethod))
		}
		categories[i] = c
	}
	cfg.AssetCategories = categories

	cfg.Admin.Email = strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
}

func redacted(cfg Configuration) Configuration {
	cfg.Admin.Password = ""
	return cfg
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}
