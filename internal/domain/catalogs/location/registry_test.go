package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

type mapRegistry map[id.ID]*entity.Location

func (r mapRegistry) Get(_ context.Context, locationID id.ID) (*entity.Location, error) {
	if loc, ok := r[locationID]; ok {
		return loc, nil
	}
	return nil, apperror.NewNotFound("location", locationID)
}

func TestRequire(t *testing.T) {
	warehouse := &entity.Location{ID: id.New(), Code: "WH-01", BranchID: id.New()}
	reg := mapRegistry{warehouse.ID: warehouse}
	unknown := id.New()

	loc, err := Require(context.Background(), reg, RoleDestination, &warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, warehouse, loc)

	_, err = Require(context.Background(), reg, RoleSource, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeLocation))

	_, err = Require(context.Background(), reg, RoleSource, &unknown)
	require.True(t, apperror.HasCode(err, apperror.CodeLocation))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "source", appErr.Details["location"])
}
