package entity

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/types"
)

func TestParseProductKind(t *testing.T) {
	k, err := ParseProductKind(" Pipe ")
	require.NoError(t, err)
	assert.Equal(t, ProductKindPipe, k)

	_, err = ParseProductKind("valve")
	assert.True(t, apperror.HasCode(err, apperror.CodeProduct))
}

func TestProductRefValidate(t *testing.T) {
	pid := id.New()
	assert.NoError(t, NewProductRef(ProductKindPump, pid).Validate())
	assert.Error(t, NewProductRef("", pid).Validate())
	assert.Error(t, NewProductRef(ProductKindPump, id.ID{}).Validate())
}

func TestStockKeyOrder(t *testing.T) {
	p1 := id.MustParse("00000000-0000-0000-0000-000000000001")
	p2 := id.MustParse("00000000-0000-0000-0000-000000000002")
	l1 := id.MustParse("10000000-0000-0000-0000-000000000001")
	l2 := id.MustParse("10000000-0000-0000-0000-000000000002")

	keys := []StockKey{
		NewStockKey(NewProductRef(ProductKindPump, p1), l1),
		NewStockKey(NewProductRef(ProductKindChemical, p2), l2),
		NewStockKey(NewProductRef(ProductKindChemical, p2), l1),
		NewStockKey(NewProductRef(ProductKindChemical, p1), l2),
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	assert.Equal(t, []StockKey{
		NewStockKey(NewProductRef(ProductKindChemical, p1), l2),
		NewStockKey(NewProductRef(ProductKindChemical, p2), l1),
		NewStockKey(NewProductRef(ProductKindChemical, p2), l2),
		NewStockKey(NewProductRef(ProductKindPump, p1), l1),
	}, keys)
}

func TestValidateMovementQuantity(t *testing.T) {
	tests := []struct {
		q    string
		code string
	}{
		{"1", ""},
		{"0.0001", ""},
		{"0", apperror.CodeInvalidQuantity},
		{"-5", apperror.CodeInvalidQuantity},
		{"0.00001", apperror.CodeInvalidQuantity},
		{"99999999999999.9999", ""},
		{"100000000000000", apperror.CodeInvalidQuantity},
		{"1000000000000000", apperror.CodeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			err := ValidateMovementQuantity(types.MustQuantity(tt.q))
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, tt.code))
		})
	}
}

func TestValidateMovementText(t *testing.T) {
	assert.NoError(t, ValidateMovementText("reason", "pipe burst on Main St."))
	assert.NoError(t, ValidateMovementText("reason", ""))
	assert.True(t, apperror.HasCode(ValidateMovementText("reason", "pallet\x00broken"), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(ValidateMovementText("reason", "bad \xff byte"), apperror.CodeValidation))

	assert.Equal(t, "palletbroken", SanitizeMovementText("pallet\x00broken"))
	assert.Equal(t, "bad \uFFFD byte", SanitizeMovementText("bad \xff byte"))
}

func TestParseMovementType(t *testing.T) {
	mt, err := ParseMovementType("transfer")
	require.NoError(t, err)
	assert.Equal(t, MovementTransfer, mt)

	_, err = ParseMovementType("WRITE_OFF")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSameBranch(t *testing.T) {
	branch := id.New()
	a := &Location{ID: id.New(), BranchID: branch}
	b := &Location{ID: id.New(), BranchID: branch}
	c := &Location{ID: id.New(), BranchID: id.New()}

	assert.True(t, a.SameBranch(b))
	assert.False(t, a.SameBranch(c))
	assert.False(t, a.SameBranch(nil))
}
