package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/core/id"
	"assetdesk/internal/domain/views"
)

const viewsTable = "report_views"

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// Compile-time check.
var _ views.Repository = (*ViewRepo)(nil)

// ViewRepo stores saved views in report_views.
type ViewRepo struct {
	txManager  *TxManager
	selectCols []string
	now        func() time.Time
}

// NewViewRepo creates the repository.
func NewViewRepo(txManager *TxManager) *ViewRepo {
	return &ViewRepo{
		txManager:  txManager,
		selectCols: ExtractDBColumns[views.View](),
		now:        time.Now,
	}
}

func (r *ViewRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ViewRepo) baseSelect(userID string) squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(viewsTable).
		Where(squirrel.Eq{"user_id": userID})
}

// Create inserts a view. ID and timestamps are filled when empty.
func (r *ViewRepo) Create(ctx context.Context, v *views.View) error {
	if id.IsNil(v.ID) {
		v.ID = id.New()
	}
	now := r.now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	sql, args, err := r.builder().
		Insert(viewsTable).
		SetMap(StructToMap(v)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteErr(err, v, "insert view")
	}
	return nil
}

// Update rewrites the editable fields of a view owned by v.UserID.
func (r *ViewRepo) Update(ctx context.Context, v *views.View) error {
	v.UpdatedAt = r.now().UTC()

	sql, args, err := r.builder().
		Update(viewsTable).
		SetMap(StructToMap(v, "id", "user_id", "report_id", "created_at")).
		Where(squirrel.Eq{"id": v.ID, "user_id": v.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteErr(err, v, "update view")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("view", v.ID.String())
	}
	return nil
}

// Delete removes a view owned by userID.
func (r *ViewRepo) Delete(ctx context.Context, userID string, viewID id.ID) error {
	sql, args, err := r.builder().
		Delete(viewsTable).
		Where(squirrel.Eq{"id": viewID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete view %s: %w", viewID, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("view", viewID.String())
	}
	return nil
}

// GetByID loads a view owned by userID.
func (r *ViewRepo) GetByID(ctx context.Context, userID string, viewID id.ID) (*views.View, error) {
	sql, args, err := r.baseSelect(userID).
		Where(squirrel.Eq{"id": viewID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v views.View
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("view", viewID.String())
		}
		return nil, fmt.Errorf("get view %s: %w", viewID, err)
	}
	return &v, nil
}

// listQuery orders views by report, then by name ignoring case.
func (r *ViewRepo) listQuery(f views.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect(f.UserID)
	if f.ReportID != "" {
		q = q.Where(squirrel.Eq{"report_id": f.ReportID})
	}
	return q.OrderBy("report_id", "lower(name)", "id")
}

// List returns the user's views.
func (r *ViewRepo) List(ctx context.Context, f views.ListFilter) ([]views.View, error) {
	sql, args, err := r.listQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []views.View
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return items, nil
}

func (r *ViewRepo) existsByNameQuery(userID, reportID, name string, excludeID *id.ID) squirrel.SelectBuilder {
	q := r.builder().
		Select("1").
		From(viewsTable).
		Where(squirrel.Eq{"user_id": userID, "report_id": reportID}).
		Where("lower(name) = lower(?)", name)
	if excludeID != nil {
		q = q.Where(squirrel.NotEq{"id": *excludeID})
	}
	return q.Limit(1)
}

// ExistsByName reports whether the name is taken on the report, ignoring case.
func (r *ViewRepo) ExistsByName(ctx context.Context, userID, reportID, name string, excludeID *id.ID) (bool, error) {
	sql, args, err := r.existsByNameQuery(userID, reportID, name, excludeID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var rows []int
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return false, fmt.Errorf("exists by name: %w", err)
	}
	return len(rows) > 0, nil
}

func (r *ViewRepo) clearDefaultQuery(userID, reportID string, keepID id.ID) squirrel.UpdateBuilder {
	return r.builder().
		Update(viewsTable).
		Set("is_default", false).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"user_id": userID, "report_id": reportID, "is_default": true}).
		Where(squirrel.NotEq{"id": keepID})
}

// ClearDefault unsets the default flag on every other view of the report.
func (r *ViewRepo) ClearDefault(ctx context.Context, userID, reportID string, keepID id.ID) error {
	sql, args, err := r.clearDefaultQuery(userID, reportID, keepID).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear default view: %w", err)
	}
	return nil
}

// mapWriteErr turns a unique violation into a duplicate-name error. Name
// checks run before writes, so this only fires on concurrent saves.
func (r *ViewRepo) mapWriteErr(err error, v *views.View, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.NewDuplicate("view", "name", v.Name).WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
