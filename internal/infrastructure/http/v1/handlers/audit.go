package handlers

import (
	"github.com/gin-gonic/gin"

	"hydrostock/internal/core/entity"
	"hydrostock/internal/domain/audit"
	"hydrostock/internal/infrastructure/http/v1/dto"
)

// AuditHandler serves the audit trail read model.
type AuditHandler struct {
	*BaseHandler
	reader *audit.Reader
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, reader *audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// List handles GET /audit.
func (h *AuditHandler) List(c *gin.Context) {
	var q dto.AuditListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.reader.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[entity.AuditRecord]{Items: items, Limit: filter.Limit, Offset: filter.Offset})
}

// Get handles GET /audit/:id.
func (h *AuditHandler) Get(c *gin.Context) {
	auditID, ok := h.PathID(c)
	if !ok {
		return
	}

	rec, err := h.reader.Get(c.Request.Context(), auditID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}
