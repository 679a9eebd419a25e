package handlers

import (
	"github.com/gin-gonic/gin"

	"hydrostock/internal/domain/movement"
	"hydrostock/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles movement submission and lookup.
type MovementHandler struct {
	*BaseHandler
	engine *movement.Engine
}

// NewMovementHandler creates a movement handler.
func NewMovementHandler(base *BaseHandler, engine *movement.Engine) *MovementHandler {
	return &MovementHandler{BaseHandler: base, engine: engine}
}

// Submit handles POST /movements.
func (h *MovementHandler) Submit(c *gin.Context) {
	var req dto.SubmitMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.Error(c, err)
		return
	}

	movementID, err := h.engine.Submit(c.Request.Context(), req.ToRequest(h.GetUserID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, movementID.String())
}

// Get handles GET /movements/:id.
func (h *MovementHandler) Get(c *gin.Context) {
	movementID, ok := h.PathID(c)
	if !ok {
		return
	}

	m, err := h.engine.Get(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovement(m))
}

// List handles GET /movements.
func (h *MovementHandler) List(c *gin.Context) {
	var q dto.MovementListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.engine.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.MovementResponse, len(items))
	for i := range items {
		out[i] = dto.FromMovement(&items[i])
	}
	h.OK(c, dto.ListResponse[dto.MovementResponse]{Items: out, Limit: filter.Limit, Offset: filter.Offset})
}
