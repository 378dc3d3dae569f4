package reports

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"assetdesk/internal/core/apperror"
	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/domain/audit"
	"assetdesk/internal/domain/filter"
	"assetdesk/pkg/logger"
)

const (
	// DefaultMaxRows caps the rows kept from one backend fetch.
	DefaultMaxRows = 1000

	defaultPageSize = 25
	maxPageSize     = 1000
)

// AuditRecorder records report activity. Implementations must not fail the caller.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event)
}

// Observer receives report generation measurements.
type Observer interface {
	ReportGenerated(reportID, kind string, rows int, elapsed time.Duration)
}

// Query is the user's selection for a preview or export.
type Query struct {
	Quick    map[string]any     `json:"quick,omitempty"`
	Advanced []filter.Condition `json:"advanced,omitempty"`
	Columns  []string           `json:"columns,omitempty"`
	Page     int                `json:"page,omitempty"`
	PageSize int                `json:"pageSize,omitempty"`
	SortBy   string             `json:"sortBy,omitempty"`
	SortDesc bool               `json:"sortDesc,omitempty"`
}

// Preview is one page of a report.
type Preview struct {
	ReportID   string       `json:"reportId"`
	Columns    []Column     `json:"columns"`
	Rows       []filter.Row `json:"rows"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`

	// Truncated is set when the backend returned more rows than the service keeps.
	Truncated bool `json:"truncated,omitempty"`
}

// ExportResult is a rendered export file.
type ExportResult struct {
	Filename    string
	ContentType string
	Format      Format
	RowCount    int
	Data        []byte
}

// Service runs the report pipeline: fetch, transform, filter, sort, page or export.
type Service struct {
	registry   *Registry
	source     Source
	exporters  Exporters
	cache      DomainCache
	audit      AuditRecorder
	observer   Observer
	evaluators map[string]*filter.Evaluator
	maxRows    int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDomainCache sets the cache used for filter domains.
func WithDomainCache(c DomainCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithAudit sets the recorder for preview and export events.
func WithAudit(r AuditRecorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithObserver sets the receiver of generation metrics.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithMaxRows overrides DefaultMaxRows.
func WithMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithClock overrides the time source used for derived columns and file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a report service.
func NewService(registry *Registry, source Source, exporters Exporters, opts ...Option) *Service {
	s := &Service{
		registry:   registry,
		source:     source,
		exporters:  exporters,
		cache:      noCache{},
		evaluators: make(map[string]*filter.Evaluator),
		maxRows:    DefaultMaxRows,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, def := range registry.List() {
		s.evaluators[def.ID] = filter.NewEvaluator(def.Fields)
	}
	return s
}

// ListDefinitions returns the catalog in display order.
func (s *Service) ListDefinitions() []Definition {
	return s.registry.List()
}

// GetDefinition returns a report definition or a not-found error.
func (s *Service) GetDefinition(reportID string) (Definition, error) {
	def, ok := s.registry.Get(reportID)
	if !ok {
		return Definition{}, apperror.NewNotFound("report", reportID)
	}
	return def, nil
}

// Formats lists the supported export formats.
func (s *Service) Formats() []Format {
	if s.exporters == nil {
		return nil
	}
	return s.exporters.Formats()
}

// Validate checks a selection against the report without fetching data.
func (s *Service) Validate(reportID string, q Query) error {
	def, err := s.GetDefinition(reportID)
	if err != nil {
		return err
	}
	return s.validate(def, q)
}

func (s *Service) validate(def Definition, q Query) error {
	for _, key := range q.Columns {
		if _, ok := def.Column(key); !ok {
			return apperror.NewValidation(fmt.Sprintf("unknown column %q", key)).WithDetail("column", key)
		}
	}
	if q.SortBy != "" {
		if _, ok := def.Column(q.SortBy); !ok {
			return apperror.NewValidation(fmt.Sprintf("unknown sort column %q", q.SortBy)).WithDetail("column", q.SortBy)
		}
	}
	return s.evaluators[def.ID].Validate(q.Quick, q.Advanced)
}

// Preview returns one page of the filtered, sorted report.
func (s *Service) Preview(ctx context.Context, reportID string, q Query) (*Preview, error) {
	started := time.Now()
	def, err := s.GetDefinition(reportID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(def, q); err != nil {
		return nil, err
	}

	rows, truncated, err := s.run(ctx, def, q)
	if err != nil {
		return nil, err
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	total := len(rows)
	totalPages := (total + pageSize - 1) / pageSize
	page := q.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	cols := s.columns(def, q.Columns)
	result := &Preview{
		ReportID:   def.ID,
		Columns:    cols,
		Rows:       project(rows[start:end], cols),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Truncated:  truncated,
	}

	s.record(ctx, def, q, audit.ActionPreview, "", total)
	if s.observer != nil {
		s.observer.ReportGenerated(def.ID, "preview", total, time.Since(started))
	}
	return result, nil
}

// Export renders the whole filtered, sorted report in format.
func (s *Service) Export(ctx context.Context, reportID string, format Format, q Query) (*ExportResult, error) {
	started := time.Now()
	def, err := s.GetDefinition(reportID)
	if err != nil {
		return nil, err
	}

	format = Format(strings.ToLower(strings.TrimSpace(string(format))))
	var exp Exporter
	if s.exporters != nil {
		exp, _ = s.exporters.Get(format)
	}
	if exp == nil {
		supported := make([]string, 0)
		for _, f := range s.Formats() {
			supported = append(supported, string(f))
		}
		return nil, apperror.NewUnsupportedFormat(string(format), supported)
	}

	if err := s.validate(def, q); err != nil {
		return nil, err
	}

	rows, _, err := s.run(ctx, def, q)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cols := s.columns(def, q.Columns)
	table := &Table{
		ReportID:      def.ID,
		Title:         def.Title,
		GeneratedAt:   now,
		Columns:       cols,
		Rows:          project(rows, cols),
		FilterSummary: Summarize(def, q),
	}

	var buf bytes.Buffer
	if err := exp.Write(&buf, table); err != nil {
		return nil, fmt.Errorf("write %s export: %w", format, err)
	}

	s.record(ctx, def, q, audit.ActionExport, string(format), len(rows))
	if s.observer != nil {
		s.observer.ReportGenerated(def.ID, "export_"+string(format), len(rows), time.Since(started))
	}

	return &ExportResult{
		Filename:    Filename(def.ID, now, exp.Extension()),
		ContentType: exp.ContentType(),
		Format:      format,
		RowCount:    len(rows),
		Data:        buf.Bytes(),
	}, nil
}

// run fetches, shapes, filters and sorts the rows of a report.
func (s *Service) run(ctx context.Context, def Definition, q Query) ([]filter.Row, bool, error) {
	records, err := s.source.Fetch(ctx, def.Source, s.pushDown(def, q.Quick))
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: %w", def.ID, err)
	}

	truncated := len(records) > s.maxRows
	if truncated {
		logger.Warn(ctx, "report rows truncated", "report_id", def.ID, "fetched", len(records), "max_rows", s.maxRows)
		records = records[:s.maxRows]
	}

	rows := s.shape(ctx, def, records)
	rows = s.evaluators[def.ID].Rows(rows, q.Quick, q.Advanced)

	sortBy, desc := q.SortBy, q.SortDesc
	if sortBy == "" {
		sortBy, desc = def.DefaultSort, def.DefaultSortDesc
	}
	if col, ok := def.Column(sortBy); ok {
		sortRows(rows, col, desc)
	}

	return rows, truncated, nil
}

// shape transforms records and drops rows outside the user's branches.
// Restriction fails closed: a row without any branch is dropped too.
func (s *Service) shape(ctx context.Context, def Definition, records []map[string]any) []filter.Row {
	now := s.now()
	allowed := allowedBranches(ctx)
	keys := def.branchKeys()

	rows := make([]filter.Row, 0, len(records))
	for _, rec := range records {
		row := def.Transform(rec, now)
		if allowed != nil && !inBranches(row, keys, allowed) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// allowedBranches returns the branches the user is limited to, or nil when
// the user sees every branch.
func allowedBranches(ctx context.Context) map[string]struct{} {
	user := appctx.GetUser(ctx)
	if user == nil || user.IsAdmin || len(user.BranchIDs) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(user.BranchIDs))
	for _, b := range user.BranchIDs {
		allowed[b] = struct{}{}
	}
	return allowed
}

func inBranches(row filter.Row, keys []string, allowed map[string]struct{}) bool {
	for _, k := range keys {
		b, _ := row[k].(string)
		if b == "" {
			continue
		}
		if _, ok := allowed[b]; ok {
			return true
		}
	}
	return false
}

// pushDown maps quick filters with a server parameter to backend query params.
func (s *Service) pushDown(def Definition, quick map[string]any) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(s.maxRows))

	for key, sp := range def.ServerParams {
		v, ok := quick[key]
		if !ok || filter.IsEmpty(v) {
			continue
		}
		f, ok := def.Field(key)
		if !ok {
			continue
		}

		switch f.Type {
		case filter.TypeDateRange:
			r, ok := filter.RangeOf(v)
			if !ok {
				continue
			}
			if r.From != "" {
				params.Set(sp.Param, r.From)
			}
			if r.To != "" && sp.ToParam != "" {
				params.Set(sp.ToParam, r.To)
			}
		case filter.TypeMultiSelect:
			for _, item := range filter.Values(v) {
				params.Add(sp.Param, item)
			}
		default:
			params.Set(sp.Param, filter.Text(v))
		}
	}
	return params
}

// columns resolves the selected column keys, falling back to the defaults.
func (s *Service) columns(def Definition, keys []string) []Column {
	if len(keys) == 0 {
		keys = def.DefaultColumns
	}
	if len(keys) == 0 {
		return def.Columns
	}
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		if c, ok := def.Column(k); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

func project(rows []filter.Row, cols []Column) []filter.Row {
	out := make([]filter.Row, 0, len(rows))
	for _, r := range rows {
		p := make(filter.Row, len(cols))
		for _, c := range cols {
			p[c.Key] = r[c.Key]
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) record(ctx context.Context, def Definition, q Query, action audit.Action, format string, rows int) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Event{
		ReportID: def.ID,
		Action:   action,
		Format:   format,
		RowCount: rows,
		Filters: audit.Snapshot(map[string]any{
			"quick":    q.Quick,
			"advanced": q.Advanced,
			"columns":  q.Columns,
			"sortBy":   q.SortBy,
			"sortDesc": q.SortDesc,
		}),
	})
}
