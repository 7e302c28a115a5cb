package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// AccountHandler serves self-service and administrative account changes.
type AccountHandler struct {
	facade AccountFacade
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(facade AccountFacade) *AccountHandler {
	return &AccountHandler{facade: facade}
}

// DeleteSelf handles DELETE /api/user.
func (h *AccountHandler) DeleteSelf(c *gin.Context) {
	if err := h.facade.DeleteAccount(c.Request.Context(), CurrentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Block handles POST /api/admin/users/:id/block.
func (h *AccountHandler) Block(c *gin.Context) {
	h.changeStatus(c, h.facade.BlockUser)
}

// Unblock handles POST /api/admin/users/:id/unblock.
func (h *AccountHandler) Unblock(c *gin.Context) {
	h.changeStatus(c, h.facade.UnblockUser)
}

func (h *AccountHandler) changeStatus(c *gin.Context, apply func(ctx context.Context, actor model.Actor, userID int64) error) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := apply(c.Request.Context(), CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
