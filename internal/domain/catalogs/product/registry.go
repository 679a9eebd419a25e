// Package product is the port to the product catalogs (chemicals, pipes, pumps,
// accessories, equipment). The ledger only asks whether a reference exists.
package product

import (
	"context"
	"fmt"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
)

// Registry answers existence checks for product references.
type Registry interface {
	Exists(ctx context.Context, ref entity.ProductRef) (bool, error)
}

// Resolve expects exactly one reference and checks it against the registry.
// Zero, several or unknown references fail with AMBIGUOUS_OR_MISSING_PRODUCT.
func Resolve(ctx context.Context, reg Registry, refs []entity.ProductRef) (entity.ProductRef, error) {
	switch len(refs) {
	case 0:
		return entity.ProductRef{}, apperror.NewProductReference("a product reference is required")
	case 1:
	default:
		return entity.ProductRef{}, apperror.NewProductReference(
			fmt.Sprintf("exactly one product reference is required, got %d", len(refs))).
			WithDetail("count", len(refs))
	}

	ref := refs[0]
	if err := ref.Validate(); err != nil {
		return entity.ProductRef{}, err
	}

	ok, err := reg.Exists(ctx, ref)
	if err != nil {
		return entity.ProductRef{}, fmt.Errorf("check product %s: %w", ref, err)
	}
	if !ok {
		return entity.ProductRef{}, apperror.NewProductReference(fmt.Sprintf("product %s does not exist", ref)).
			WithDetail("product", ref.String())
	}
	return ref, nil
}
