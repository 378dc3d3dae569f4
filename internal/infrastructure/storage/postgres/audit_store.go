package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"assetdesk/internal/domain/audit"
)

const auditTable = "report_audit"

// CompressionAlgo specifies how a filter payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which filters are
// stored zstd-compressed.
const DefaultCompressThreshold = 4 * 1024

// Compile-time check.
var _ audit.Store = (*AuditStore)(nil)

// auditRow is the stored form of an event.
type auditRow struct {
	audit.Event
	FiltersCompressed []byte          `db:"filters_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
}

// AuditStore keeps audit events in report_audit.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	selectCols        []string
}

// NewAuditStore creates the store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
		selectCols:        ExtractDBColumns[auditRow](),
	}, nil
}

func (s *AuditStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// pack moves large filter payloads into the compressed column.
func (s *AuditStore) pack(e audit.Event) auditRow {
	row := auditRow{Event: e, CompressionAlgo: CompressionNone}
	if len(e.Filters) > s.compressThreshold {
		row.FiltersCompressed = s.encoder.EncodeAll(e.Filters, nil)
		row.Filters = nil
		row.CompressionAlgo = CompressionZstd
	}
	return row
}

// unpack restores the filter payload of a stored row.
func (s *AuditStore) unpack(row auditRow) (audit.Event, error) {
	e := row.Event
	if row.CompressionAlgo == CompressionZstd && len(row.FiltersCompressed) > 0 {
		data, err := s.decoder.DecodeAll(row.FiltersCompressed, nil)
		if err != nil {
			return e, fmt.Errorf("decompress filters of %s: %w", e.ID, err)
		}
		e.Filters = json.RawMessage(data)
	}
	return e, nil
}

// Insert stores one event.
func (s *AuditStore) Insert(ctx context.Context, e audit.Event) error {
	row := s.pack(e)

	values := StructToMap(row)
	// A nil RawMessage would be sent as JSON null instead of SQL NULL.
	if row.Filters == nil {
		values["filters"] = nil
	}

	sql, args, err := s.builder().
		Insert(auditTable).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// listQuery builds the filtered select without ordering or paging.
func (s *AuditStore) listQuery(f audit.ListFilter) squirrel.SelectBuilder {
	q := s.builder().Select(s.selectCols...).From(auditTable)

	if f.ReportID != "" {
		q = q.Where(squirrel.Eq{"report_id": f.ReportID})
	}
	if f.UserID != "" {
		q = q.Where(squirrel.Eq{"user_id": f.UserID})
	}
	if f.Action != "" {
		q = q.Where(squirrel.Eq{"action": string(f.Action)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	return q
}

// List returns one page of events, newest first, and the total match count.
func (s *AuditStore) List(ctx context.Context, f audit.ListFilter) ([]audit.Event, int, error) {
	q := s.listQuery(f)
	querier := s.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := s.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}

	events := make([]audit.Event, 0, len(rows))
	for _, row := range rows {
		e, err := s.unpack(row)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, nil
}
