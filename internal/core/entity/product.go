// Package entity provides core domain entities of the stock ledger.
package entity

import (
	"fmt"
	"strings"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/id"
)

// ProductKind identifies which product catalog a reference points into.
type ProductKind string

const (
	ProductKindChemical  ProductKind = "chemical"
	ProductKindPipe      ProductKind = "pipe"
	ProductKindPump      ProductKind = "pump"
	ProductKindAccessory ProductKind = "accessory"
	ProductKindEquipment ProductKind = "equipment"
)

var productKinds = []ProductKind{
	ProductKindChemical,
	ProductKindPipe,
	ProductKindPump,
	ProductKindAccessory,
	ProductKindEquipment,
}

// ProductKinds returns all known kinds in their canonical order.
func ProductKinds() []ProductKind {
	out := make([]ProductKind, len(productKinds))
	copy(out, productKinds)
	return out
}

// Valid reports whether k is one of the known catalogs.
func (k ProductKind) Valid() bool {
	for _, known := range productKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseProductKind accepts a kind name in any letter case.
func ParseProductKind(s string) (ProductKind, error) {
	k := ProductKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", apperror.NewProductReference(fmt.Sprintf("unknown product kind %q", s)).
			WithDetail("kind", s)
	}
	return k, nil
}

// ProductRef is a polymorphic handle to one product in one of the catalogs.
// The ledger stores it verbatim and never reads product attributes.
type ProductRef struct {
	Kind ProductKind `db:"product_kind" json:"productKind"`
	ID   id.ID       `db:"product_id" json:"productId"`
}

// NewProductRef creates a reference.
func NewProductRef(kind ProductKind, productID id.ID) ProductRef {
	return ProductRef{Kind: kind, ID: productID}
}

// Validate checks the reference shape without consulting a registry.
func (p ProductRef) Validate() error {
	if !p.Kind.Valid() {
		return apperror.NewProductReference(fmt.Sprintf("unknown product kind %q", p.Kind)).
			WithDetail("kind", string(p.Kind))
	}
	if id.IsNil(p.ID) {
		return apperror.NewProductReference("product id is required")
	}
	return nil
}

func (p ProductRef) String() string {
	return string(p.Kind) + ":" + p.ID.String()
}

// Compare orders references by kind, then id.
func (p ProductRef) Compare(o ProductRef) int {
	if c := strings.Compare(string(p.Kind), string(o.Kind)); c != 0 {
		return c
	}
	return id.Compare(p.ID, o.ID)
}
