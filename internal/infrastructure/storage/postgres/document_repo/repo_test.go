package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/domain/audit"
	"hydrostock/internal/domain/movement"
	"hydrostock/internal/infrastructure/storage/postgres"
)

func TestMovementListQuery(t *testing.T) {
	repo := NewMovementRepo(nil)
	issue := entity.MovementIssue

	sql, args, err := repo.listQuery(movement.ListFilter{Type: &issue}.Normalize()).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, type, product_kind, product_id, source_location_id, dest_location_id, quantity, reason, requested_by, cross_branch, created_at "+
			"FROM movements WHERE type = $1 ORDER BY id DESC LIMIT 100 OFFSET 0", sql)
	assert.Equal(t, []any{issue}, args)
}

func TestMovementListQuery_Location(t *testing.T) {
	repo := NewMovementRepo(nil)
	loc := id.New()

	sql, args, err := repo.listQuery(movement.ListFilter{LocationID: &loc, Limit: 10}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (source_location_id = $1 OR dest_location_id = $2)")
	assert.Equal(t, []any{loc.String(), loc.String()}, args)
}

func TestAuditListQuery(t *testing.T) {
	repo := NewAuditRepo(nil, nil)
	failed := entity.AuditFailed
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	product := entity.NewProductRef(entity.ProductKindPump, id.New())

	sql, args, err := repo.listQuery(audit.Filter{
		Outcome: &failed,
		From:    &from,
		Product: &product,
	}.Normalize()).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM audit_records WHERE outcome = $1 AND created_at >= $2 AND product_id = $3 AND product_kind = $4")
	assert.Contains(t, sql, "payload, payload_compressed, compression_algo FROM")
	assert.Contains(t, sql, "ORDER BY id DESC LIMIT 100 OFFSET 0")
	assert.Equal(t, []any{failed, from, product.ID.String(), product.Kind}, args)
}

func TestAuditDecode(t *testing.T) {
	codec, err := postgres.NewPayloadCodec(16)
	require.NoError(t, err)
	repo := NewAuditRepo(nil, codec)

	payload := []byte(`{"type":"TRANSFER","quantity":"40","reason":"relocation to pumping station"}`)
	plain, compressed, algo := codec.Encode(payload)
	require.Equal(t, postgres.CompressionZstd, algo)

	rec, err := repo.decode(auditRow{
		AuditRecord:       entity.AuditRecord{ID: id.New(), Outcome: entity.AuditSuccess},
		PayloadPlain:      plain,
		PayloadCompressed: compressed,
		CompressionAlgo:   algo,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(rec.Payload))
}
