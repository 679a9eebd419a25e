package product

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

type staticRegistry struct {
	known map[entity.ProductRef]bool
	err   error
}

func (r staticRegistry) Exists(_ context.Context, ref entity.ProductRef) (bool, error) {
	return r.known[ref], r.err
}

func TestResolve(t *testing.T) {
	chlorine := entity.NewProductRef(entity.ProductKindChemical, id.New())
	pipe := entity.NewProductRef(entity.ProductKindPipe, id.New())
	reg := staticRegistry{known: map[entity.ProductRef]bool{chlorine: true, pipe: true}}

	tests := []struct {
		name string
		refs []entity.ProductRef
		want entity.ProductRef
		code string
	}{
		{"single known", []entity.ProductRef{chlorine}, chlorine, ""},
		{"none", nil, entity.ProductRef{}, apperror.CodeProduct},
		{"ambiguous", []entity.ProductRef{chlorine, pipe}, entity.ProductRef{}, apperror.CodeProduct},
		{"unknown", []entity.ProductRef{entity.NewProductRef(entity.ProductKindPump, id.New())}, entity.ProductRef{}, apperror.CodeProduct},
		{"bad kind", []entity.ProductRef{entity.NewProductRef("valve", id.New())}, entity.ProductRef{}, apperror.CodeProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(context.Background(), reg, tt.refs)
			if tt.code != "" {
				assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveInfrastructureError(t *testing.T) {
	ref := entity.NewProductRef(entity.ProductKindPipe, id.New())
	_, err := Resolve(context.Background(), staticRegistry{err: errors.New("conn reset")}, []entity.ProductRef{ref})
	require.Error(t, err)
	assert.False(t, apperror.IsRejection(err))
}
