package handler

import (
	"net/http"

	"tradenet/internal/apperr"
	"tradenet/internal/dto"
	"tradenet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// nodeProtectedFields may never appear in a create/update payload; the
// dedicated clear-debt operation is the only write path for debt, and level
// is derived from the supplier chain.
var nodeProtectedFields = []string{"debt", "level", "id", "created_at", "updated_at"}

type NodesHandler struct {
	svc service.NodeService
}

func NewNodesHandler(svc service.NodeService) *NodesHandler {
	return &NodesHandler{svc: svc}
}

func (h *NodesHandler) Create(c *gin.Context) {
	var req dto.CreateNodeRequest
	if _, ok := bindGuarded(c, &req, nodeProtectedFields...); !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *NodesHandler) List(c *gin.Context) {
	if !checkQueryKeys(c, dto.NodeFilterKeys) {
		return
	}
	var filter dto.NodeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, apperr.InvalidQuery(err.Error()))
		return
	}
	if !validateStruct(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NodesHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NodesHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateNodeRequest
	raw, ok := bindGuarded(c, &req, nodeProtectedFields...)
	if !ok {
		return
	}
	// "supplier_id": null re-roots the node; an absent key leaves the
	// supplier untouched.
	_, req.SupplierSet = raw["supplier_id"]

	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NodesHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NodesHandler) ClearDebt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ClearDebt(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NodesHandler) ClearDebtBulk(c *gin.Context) {
	var req dto.ClearDebtBulkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cleared, err := h.svc.ClearDebtBulk(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClearDebtBulkResponse{Cleared: cleared})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperr.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
