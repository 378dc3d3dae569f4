package views

import (
	"context"
	"fmt"
	"time"

	"assetdesk/internal/core/apperror"
	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/core/id"
	"assetdesk/internal/core/tx"
	"assetdesk/internal/domain/audit"
	"assetdesk/internal/domain/reports"
)

// ReportValidator checks a selection against a report definition.
type ReportValidator interface {
	Validate(reportID string, q reports.Query) error
}

// Service manages the current user's saved views.
type Service struct {
	repo      Repository
	txManager tx.Manager
	reports   ReportValidator
	audit     reports.AuditRecorder
	now       func() time.Time
}

// ServiceConfig configures the views service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	Reports   ReportValidator
	Audit     reports.AuditRecorder // Optional
}

// NewService creates a views service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		reports:   cfg.Reports,
		audit:     cfg.Audit,
		now:       time.Now,
	}
}

func currentUser(ctx context.Context) (string, error) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return "", apperror.NewUnauthorized("authentication required")
	}
	return userID, nil
}

// List returns the user's views, optionally for one report.
func (s *Service) List(ctx context.Context, reportID string) ([]View, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, ListFilter{UserID: userID, ReportID: reportID})
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	if items == nil {
		items = []View{}
	}
	return items, nil
}

// Get returns one of the user's views.
func (s *Service) Get(ctx context.Context, viewID id.ID) (*View, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.repo.GetByID(ctx, userID, viewID)
	if err != nil {
		return nil, normalizeGetErr(err, viewID)
	}
	return v, nil
}

// Create validates and stores a new view for the user.
func (s *Service) Create(ctx context.Context, in Input) (*View, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := s.validate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	v := &View{ID: id.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	in.apply(v)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUniqueName(ctx, v, nil); err != nil {
			return err
		}
		if v.IsDefault {
			if err := s.repo.ClearDefault(ctx, userID, v.ReportID, v.ID); err != nil {
				return fmt.Errorf("clear default view: %w", err)
			}
		}
		if err := s.repo.Create(ctx, v); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionViewCreate, v)
	return v, nil
}

// Update replaces the editable fields of one of the user's views.
// The report of a view cannot change.
func (s *Service) Update(ctx context.Context, viewID id.ID, in Input) (*View, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	in.normalize()

	var v *View
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, userID, viewID)
		if err != nil {
			return normalizeGetErr(err, viewID)
		}
		if in.ReportID == "" {
			in.ReportID = existing.ReportID
		}
		if in.ReportID != existing.ReportID {
			return apperror.NewValidation("the report of a saved view cannot change").
				WithDetail("field", "reportId")
		}
		if err := s.validate(in); err != nil {
			return err
		}

		in.apply(existing)
		existing.UpdatedAt = s.now().UTC()

		if err := s.ensureUniqueName(ctx, existing, &existing.ID); err != nil {
			return err
		}
		if existing.IsDefault {
			if err := s.repo.ClearDefault(ctx, userID, existing.ReportID, existing.ID); err != nil {
				return fmt.Errorf("clear default view: %w", err)
			}
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update view: %w", err)
		}
		v = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionViewUpdate, v)
	return v, nil
}

// Delete removes one of the user's views.
func (s *Service) Delete(ctx context.Context, viewID id.ID) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	v, err := s.repo.GetByID(ctx, userID, viewID)
	if err != nil {
		return normalizeGetErr(err, viewID)
	}
	if err := s.repo.Delete(ctx, userID, viewID); err != nil {
		return normalizeGetErr(err, viewID)
	}

	s.record(ctx, audit.ActionViewDelete, v)
	return nil
}

func (s *Service) validate(in Input) error {
	if err := in.validateName(); err != nil {
		return err
	}
	if in.ReportID == "" {
		return apperror.NewValidation("report is required").WithDetail("field", "reportId")
	}
	return s.reports.Validate(in.ReportID, reports.Query{
		Quick:    in.Quick,
		Advanced: in.Advanced,
		Columns:  in.Columns,
		SortBy:   in.SortBy,
	})
}

func (s *Service) ensureUniqueName(ctx context.Context, v *View, excludeID *id.ID) error {
	exists, err := s.repo.ExistsByName(ctx, v.UserID, v.ReportID, v.Name, excludeID)
	if err != nil {
		return fmt.Errorf("check view name: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("view", "name", v.Name)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, v *View) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		ReportID: v.ReportID,
		Action:   action,
		Filters: audit.Snapshot(map[string]any{
			"viewId":   v.ID,
			"name":     v.Name,
			"quick":    v.Quick,
			"advanced": v.Advanced,
		}),
	})
}

func normalizeGetErr(err error, viewID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("view", viewID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return fmt.Errorf("get view %s: %w", viewID, err)
}
