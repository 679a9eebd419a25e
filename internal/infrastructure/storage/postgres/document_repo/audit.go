package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/audit"
	"hydrostock/internal/infrastructure/storage/postgres"
)

const auditTable = "audit_records"

var auditColumns = append(postgres.ExtractDBColumns[entity.AuditRecord](),
	"payload", "payload_compressed", "compression_algo")

// auditRow adds the stored payload columns to the record.
type auditRow struct {
	entity.AuditRecord

	PayloadPlain      []byte                   `db:"payload"`
	PayloadCompressed []byte                   `db:"payload_compressed"`
	CompressionAlgo   postgres.CompressionAlgo `db:"compression_algo"`
}

// AuditRepo implements audit.Repository. Payloads above the codec
// threshold are stored zstd-compressed.
type AuditRepo struct {
	txm     *postgres.TxManager
	codec   *postgres.PayloadCodec
	builder squirrel.StatementBuilderType
}

var _ audit.Repository = (*AuditRepo)(nil)

// NewAuditRepo creates an audit repository.
func NewAuditRepo(txm *postgres.TxManager, codec *postgres.PayloadCodec) *AuditRepo {
	return &AuditRepo{
		txm:     txm,
		codec:   codec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends a record.
func (r *AuditRepo) Insert(ctx context.Context, rec *entity.AuditRecord) error {
	data := postgres.StructToMap(rec)
	plain, compressed, algo := r.codec.Encode(rec.Payload)
	if len(plain) > 0 {
		data["payload"] = plain
	} else {
		data["payload"] = nil
	}
	data["payload_compressed"] = compressed
	data["compression_algo"] = algo

	sql, args, err := r.builder.Insert(auditTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit record: %w", postgres.MapError(err))
	}
	return nil
}

// SetMovement links a PENDING record to its movement.
func (r *AuditRepo) SetMovement(ctx context.Context, auditID, movementID id.ID) (bool, error) {
	sql, args, err := r.builder.Update(auditTable).
		Set("movement_id", movementID).
		Where(squirrel.Eq{"id": auditID, "outcome": entity.AuditPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("link audit record: %w", postgres.MapError(err))
	}
	return tag.RowsAffected() == 1, nil
}

// Finalize moves a PENDING record to a terminal outcome. FAILED clears the movement link.
func (r *AuditRepo) Finalize(ctx context.Context, auditID id.ID, outcome entity.AuditOutcome, code, message string, at time.Time) (bool, error) {
	q := r.builder.Update(auditTable).
		Set("outcome", outcome).
		Set("code", code).
		Set("message", message).
		Set("finalized_at", at).
		Where(squirrel.Eq{"id": auditID, "outcome": entity.AuditPending})
	if outcome == entity.AuditFailed {
		q = q.Set("movement_id", nil)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("finalize audit record: %w", postgres.MapError(err))
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID returns the record or NOT_FOUND.
func (r *AuditRepo) GetByID(ctx context.Context, auditID id.ID) (*entity.AuditRecord, error) {
	sql, args, err := r.builder.Select(auditColumns...).
		From(auditTable).
		Where(squirrel.Eq{"id": auditID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row auditRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("audit record", auditID)
		}
		return nil, fmt.Errorf("get audit record: %w", err)
	}
	return r.decode(row)
}

// List returns records newest first.
func (r *AuditRepo) List(ctx context.Context, filter audit.Filter) ([]entity.AuditRecord, error) {
	sql, args, err := r.listQuery(filter.Normalize()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select audit records: %w", err)
	}

	out := make([]entity.AuditRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *AuditRepo) listQuery(filter audit.Filter) squirrel.SelectBuilder {
	q := r.builder.Select(auditColumns...).From(auditTable)

	if filter.Outcome != nil {
		q = q.Where(squirrel.Eq{"outcome": *filter.Outcome})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if filter.Product != nil {
		q = q.Where(squirrel.Eq{"product_kind": filter.Product.Kind, "product_id": filter.Product.ID})
	}
	if filter.LocationID != nil {
		q = q.Where(touchesLocation(*filter.LocationID))
	}
	if filter.MovementID != nil {
		q = q.Where(squirrel.Eq{"movement_id": *filter.MovementID})
	}

	return q.OrderBy("id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
}

func (r *AuditRepo) decode(row auditRow) (*entity.AuditRecord, error) {
	payload, err := r.codec.Decode(row.PayloadPlain, row.PayloadCompressed, row.CompressionAlgo)
	if err != nil {
		return nil, fmt.Errorf("audit record %s: %w", row.ID, err)
	}
	rec := row.AuditRecord
	rec.Payload = payload
	return &rec, nil
}
