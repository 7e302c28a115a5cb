package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/dto"
)

// OfferHandler manages offer endpoints.
type OfferHandler struct {
	facade OfferFacade
}

// NewOfferHandler constructs OfferHandler.
func NewOfferHandler(facade OfferFacade) *OfferHandler {
	return &OfferHandler{facade: facade}
}

// Create handles POST /api/offers.
func (h *OfferHandler) Create(c *gin.Context) {
	var req dto.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	offer, err := h.facade.CreateOffer(c.Request.Context(), CurrentActor(c), model.OfferDraft{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Price:      price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOfferResponse(offer))
}

// Get handles GET /api/offers/:id.
func (h *OfferHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	offer, err := h.facade.Offer(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOfferResponse(offer))
}

// Edit handles PATCH /api/offers/:id.
func (h *OfferHandler) Edit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.OfferPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	patch := model.OfferPatch{CategoryID: req.CategoryID, Title: req.Title}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			respondError(c, err)
			return
		}
		patch.Price = &price
	}

	offer, err := h.facade.EditOffer(c.Request.Context(), CurrentActor(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOfferResponse(offer))
}

// Restock handles POST /api/offers/:id/restock.
func (h *OfferHandler) Restock(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	offer, err := h.facade.RestockOffer(c.Request.Context(), CurrentActor(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOfferResponse(offer))
}

// Transition returns handler applying a status action such as activate,
// archive or moderate to the offer in the path.
func (h *OfferHandler) Transition(action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		offer, err := h.facade.ChangeOfferStatus(c.Request.Context(), CurrentActor(c), action, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOfferResponse(offer))
	}
}

func parsePrice(raw string) (model.Money, error) {
	price, err := model.ParseMoney(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
	}
	return price, nil
}
