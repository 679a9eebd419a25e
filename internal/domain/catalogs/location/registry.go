// Package location is the port to the location hierarchy
// (Organization -> Branch -> System -> Storage Location).
package location

import (
	"context"
	"fmt"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
)

// Registry looks up storage locations.
type Registry interface {
	// Get returns the location or a NOT_FOUND AppError.
	Get(ctx context.Context, locationID id.ID) (*entity.Location, error)
}

// Role names which side of a movement a location plays.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Require resolves a location the movement type cannot do without.
// Absent or unknown locations fail with MISSING_OR_INVALID_LOCATION.
func Require(ctx context.Context, reg Registry, role Role, locationID *id.ID) (*entity.Location, error) {
	if locationID == nil || id.IsNil(*locationID) {
		return nil, apperror.NewInvalidLocation(string(role), fmt.Sprintf("%s location is required", role))
	}

	loc, err := reg.Get(ctx, *locationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInvalidLocation(string(role), fmt.Sprintf("%s location %s does not exist", role, locationID)).
				WithDetail("locationId", locationID.String())
		}
		return nil, fmt.Errorf("get %s location: %w", role, err)
	}
	return loc, nil
}
