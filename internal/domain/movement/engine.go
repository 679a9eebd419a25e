package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"hydrostock/internal/core/apperror"
	"hydrostock/internal/core/entity"
	"hydrostock/internal/core/id"
	"hydrostock/internal/core/tx"
	"hydrostock/internal/core/types"
	"hydrostock/internal/domain/audit"
	"hydrostock/internal/domain/catalogs/location"
	"hydrostock/internal/domain/catalogs/product"
	"hydrostock/internal/domain/outbox"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/pkg/logger"
	"hydrostock/pkg/numerator"
)

var tracer = otel.Tracer("hydrostock/movement")

// lostAuditTimeout bounds the fallback audit write after a transaction was lost.
const lostAuditTimeout = 5 * time.Second

// Engine is the only component allowed to mutate stock quantities and to
// finalize audit records.
type Engine struct {
	txManager tx.Manager
	ledger    *stock.Ledger
	repo      Repository
	trail     *audit.Trail
	products  product.Registry
	locations location.Registry
	events    outbox.Publisher
	numbers   Numberer
}

// Numberer issues display numbers.
type Numberer interface {
	Next(ctx context.Context, cfg numerator.Config, period time.Time) (string, error)
}

var numberPrefixes = map[entity.MovementType]string{
	entity.MovementReceipt:    "RCV",
	entity.MovementIssue:      "ISS",
	entity.MovementTransfer:   "TRF",
	entity.MovementAdjustment: "ADJ",
}

// NewEngine creates a movement engine. events may be nil.
func NewEngine(
	txManager tx.Manager,
	ledger *stock.Ledger,
	repo Repository,
	trail *audit.Trail,
	products product.Registry,
	locations location.Registry,
	events outbox.Publisher,
) *Engine {
	return &Engine{
		txManager: txManager,
		ledger:    ledger,
		repo:      repo,
		trail:     trail,
		products:  products,
		locations: locations,
		events:    events,
	}
}

// WithNumbering makes the engine give applied movements a display number.
func (e *Engine) WithNumbering(n Numberer) *Engine {
	e.numbers = n
	return e
}

// Submit validates and applies a movement in one transaction.
//
// A PENDING audit record is written first. The movement insert, row locks and
// stock deltas run inside a savepoint; a rejection rolls back to it, the audit
// record is finalized as FAILED and the transaction still commits, so the caller
// gets a typed error and the attempt stays on record. If the whole transaction
// is lost, a FAILED record is written in a fresh transaction.
func (e *Engine) Submit(ctx context.Context, req Request) (id.ID, error) {
	ctx, span := tracer.Start(ctx, "movement.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("movement.type", string(req.Type)))

	attempt := req.attempt()
	var (
		auditID   id.ID
		applied   *entity.Movement
		rejection error
	)

	number, err := e.nextNumber(ctx, req.Type)
	if err == nil {
		err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			applied, rejection = nil, nil

			var err error
			auditID, err = e.trail.Open(ctx, attempt)
			if err != nil {
				return err
			}

			applyErr := e.txManager.RunInSavepoint(ctx, func(ctx context.Context) error {
				m, err := e.apply(ctx, req, number)
				if err != nil {
					return err
				}
				if err := e.trail.Link(ctx, auditID, m.ID); err != nil {
					return err
				}
				applied = m
				return nil
			})

			if applyErr != nil {
				if !apperror.IsRejection(applyErr) {
					return applyErr
				}
				applied, rejection = nil, applyErr
				appErr, _ := apperror.AsAppError(applyErr)
				if err := e.trail.Finalize(ctx, auditID, entity.AuditFailed, appErr.Code, appErr.Message); err != nil {
					// Keep the rejection visible to the caller and the fallback audit.
					return errors.Join(applyErr, err)
				}
				return nil
			}

			if err := e.trail.Finalize(ctx, auditID, entity.AuditSuccess, "", "movement applied"); err != nil {
				return err
			}
			return e.publishApplied(ctx, applied)
		})
	}

	if err != nil {
		lostID := e.recordLost(ctx, attempt, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("movement.outcome", string(entity.AuditFailed)))
		logger.Error(ctx, "movement failed",
			"audit_id", lostID,
			"type", req.Type,
			"product_kind", attempt.ProductKind,
			"product_id", attempt.ProductID,
			"code", errorCode(err),
			"error", err,
		)
		if apperror.IsAppError(err) {
			return id.ID{}, err
		}
		return id.ID{}, fmt.Errorf("submit movement: %w", err)
	}

	if rejection != nil {
		span.SetAttributes(attribute.String("movement.outcome", string(entity.AuditFailed)))
		logger.Warn(ctx, "movement rejected",
			"audit_id", auditID,
			"type", req.Type,
			"product_kind", attempt.ProductKind,
			"product_id", attempt.ProductID,
			"code", errorCode(rejection),
			"reason", rejection.Error(),
		)
		if appErr, ok := apperror.AsAppError(rejection); ok {
			appErr.WithDetail("auditId", auditID.String())
		}
		return id.ID{}, rejection
	}

	span.SetAttributes(attribute.String("movement.outcome", string(entity.AuditSuccess)))
	logger.Info(ctx, "movement applied",
		"movement_id", applied.ID,
		"number", applied.Number,
		"audit_id", auditID,
		"type", applied.Type,
		"product_kind", applied.Kind,
		"product_id", applied.ProductRef.ID,
		"quantity", applied.Quantity.String(),
		"cross_branch", applied.CrossBranch,
	)
	return applied.ID, nil
}

// apply validates the request, persists the movement and mutates stock.
// It must run inside a savepoint.
func (e *Engine) apply(ctx context.Context, req Request, number string) (*entity.Movement, error) {
	mt, err := entity.ParseMovementType(string(req.Type))
	if err != nil {
		return nil, err
	}

	if err := entity.ValidateMovementText("reason", req.Reason); err != nil {
		return nil, err
	}
	if err := entity.ValidateMovementText("requestedBy", req.RequestedBy); err != nil {
		return nil, err
	}

	ref, err := product.Resolve(ctx, e.products, req.Products)
	if err != nil {
		return nil, err
	}

	if err := entity.ValidateMovementQuantity(req.Quantity); err != nil {
		return nil, err
	}

	m := &entity.Movement{
		ID:          id.New(),
		Type:        mt,
		Number:      number,
		ProductRef:  ref,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		RequestedBy: req.RequestedBy,
		CreatedAt:   time.Now().UTC(),
	}

	legs, err := e.plan(ctx, m, req)
	if err != nil {
		return nil, err
	}

	if err := e.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}

	locks := make([]stock.LockRequest, 0, len(legs))
	for _, l := range legs {
		locks = append(locks, stock.LockRequest{Key: l.key, Create: l.allowCreate})
	}
	if err := e.ledger.Lock(ctx, locks); err != nil {
		return nil, err
	}

	for _, l := range legs {
		if _, err := e.ledger.ApplyDelta(ctx, l.key, l.delta, l.allowCreate); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// plan resolves locations and returns the row changes for the movement type.
// It fills the movement's location fields.
func (e *Engine) plan(ctx context.Context, m *entity.Movement, req Request) ([]leg, error) {
	qty := req.Quantity

	switch m.Type {
	case entity.MovementReceipt:
		dst, err := location.Require(ctx, e.locations, location.RoleDestination, req.DestLocationID)
		if err != nil {
			return nil, err
		}
		m.DestLocationID = &dst.ID
		return []leg{{key: entity.NewStockKey(m.ProductRef, dst.ID), delta: qty, allowCreate: true}}, nil

	case entity.MovementIssue:
		src, err := location.Require(ctx, e.locations, location.RoleSource, req.SourceLocationID)
		if err != nil {
			return nil, err
		}
		m.SourceLocationID = &src.ID
		return []leg{{key: entity.NewStockKey(m.ProductRef, src.ID), delta: qty.Neg()}}, nil

	case entity.MovementTransfer:
		src, err := location.Require(ctx, e.locations, location.RoleSource, req.SourceLocationID)
		if err != nil {
			return nil, err
		}
		dst, err := location.Require(ctx, e.locations, location.RoleDestination, req.DestLocationID)
		if err != nil {
			return nil, err
		}
		if src.ID == dst.ID {
			return nil, apperror.NewInvalidLocation(string(location.RoleDestination),
				"source and destination of a transfer must differ")
		}
		m.SourceLocationID = &src.ID
		m.DestLocationID = &dst.ID
		m.CrossBranch = !src.SameBranch(dst)
		return []leg{
			{key: entity.NewStockKey(m.ProductRef, src.ID), delta: qty.Neg()},
			{key: entity.NewStockKey(m.ProductRef, dst.ID), delta: qty, allowCreate: true},
		}, nil

	case entity.MovementAdjustment:
		hasSrc := req.SourceLocationID != nil
		hasDst := req.DestLocationID != nil
		if hasSrc == hasDst {
			return nil, apperror.NewInvalidLocation("adjustment",
				"an adjustment needs exactly one of source or destination location")
		}
		role, locID := location.RoleDestination, req.DestLocationID
		if hasSrc {
			role, locID = location.RoleSource, req.SourceLocationID
		}
		loc, err := location.Require(ctx, e.locations, role, locID)
		if err != nil {
			return nil, err
		}
		if hasSrc {
			m.SourceLocationID = &loc.ID
		} else {
			m.DestLocationID = &loc.ID
		}
		// Adjustments only add.
		return []leg{{key: entity.NewStockKey(m.ProductRef, loc.ID), delta: qty, allowCreate: true}}, nil
	}

	return nil, apperror.NewValidation(fmt.Sprintf("unknown movement type %q", m.Type))
}

// nextNumber draws the display number before the transaction starts, so the
// counter row is never held across a movement. A rejected attempt leaves a gap.
func (e *Engine) nextNumber(ctx context.Context, t entity.MovementType) (string, error) {
	if e.numbers == nil {
		return "", nil
	}
	mt, err := entity.ParseMovementType(string(t))
	if err != nil {
		// Rejected and audited inside the transaction.
		return "", nil
	}
	return e.numbers.Next(ctx, numerator.DefaultConfig(numberPrefixes[mt]), time.Now().UTC())
}

func (e *Engine) publishApplied(ctx context.Context, m *entity.Movement) error {
	if e.events == nil {
		return nil
	}
	return e.events.Publish(ctx, outbox.Event{
		AggregateType: "movement",
		AggregateID:   m.ID,
		EventType:     outbox.EventMovementApplied,
		Payload:       m,
	})
}

// recordLost writes the FAILED audit record for an attempt whose transaction
// was rolled back as a whole. Best effort: a failure here is only logged.
func (e *Engine) recordLost(ctx context.Context, attempt audit.Attempt, cause error) id.ID {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lostAuditTimeout)
	defer cancel()

	message := cause.Error()
	if appErr, ok := apperror.AsAppError(cause); ok {
		message = appErr.Message
	}

	var auditID id.ID
	write := func(attempt audit.Attempt) error {
		return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			var err error
			auditID, err = e.trail.Record(ctx, attempt, entity.AuditFailed, errorCode(cause), message)
			return err
		})
	}

	err := write(attempt)
	if err != nil && attempt.Payload != nil {
		// The payload may be what the store refused.
		logger.Warn(ctx, "retrying failed movement audit without payload", "error", err)
		attempt.Payload = nil
		err = write(attempt)
	}
	if err != nil {
		logger.Error(ctx, "audit record for failed movement was not written",
			"error", err,
			"cause", cause,
		)
	}
	return auditID
}

// CurrentQuantity returns the on-hand quantity, zero when the row does not exist.
func (e *Engine) CurrentQuantity(ctx context.Context, ref entity.ProductRef, locationID id.ID) (types.Quantity, error) {
	if err := ref.Validate(); err != nil {
		return types.ZeroQuantity(), err
	}
	return e.ledger.GetOrZero(ctx, entity.NewStockKey(ref, locationID))
}

// Get returns an applied movement.
func (e *Engine) Get(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	return e.repo.GetByID(ctx, movementID)
}

// List returns applied movements newest first.
func (e *Engine) List(ctx context.Context, filter ListFilter) ([]entity.Movement, error) {
	return e.repo.List(ctx, filter.Normalize())
}

func errorCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return apperror.CodeInternal
}
