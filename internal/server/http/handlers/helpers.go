package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/dto"
	"github.com/polkiloo/digimarket/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentActor extracts caller identity loaded by middleware.ActorRequired.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{ID: CurrentUserID(c)}
	}
	actor, _ := val.(model.Actor)
	return actor
}

var errBadID = errors.New("id must be a positive integer")

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", domainErrors.ErrInvalidInput, errBadID)
	}
	return id, nil
}

// StatusFor maps domain error kind to HTTP status.
func StatusFor(err error) int {
	switch domainErrors.Code(err) {
	case "FORBIDDEN", "ACCOUNT_INACTIVE":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "INVALID_TRANSITION", "ALREADY_IN_STATE", "INSUFFICIENT_STOCK", "OUT_OF_STOCK", "OFFER_UNAVAILABLE", "ALREADY_EXISTS":
		return http.StatusConflict
	case "INVALID_INPUT":
		return http.StatusBadRequest
	case "INVALID_CREDENTIALS":
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": code, "reason": denial} and aborts the chain.
func respondError(c *gin.Context, err error) {
	body := dto.ErrorResponse{Error: domainErrors.Code(err)}
	if reason, ok := domainErrors.ReasonOf(err); ok {
		body.Reason = string(reason)
	}
	c.AbortWithStatusJSON(StatusFor(err), body)
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "INVALID_INPUT"})
}

func toOfferResponse(offer *model.Offer) dto.OfferResponse {
	return dto.OfferResponse{
		ID:         offer.ID,
		SellerID:   offer.SellerID,
		CategoryID: offer.CategoryID,
		Title:      offer.Title,
		Price:      offer.Price.String(),
		Quantity:   offer.Quantity,
		Status:     string(offer.Status),
		CreatedAt:  offer.CreatedAt,
		UpdatedAt:  offer.UpdatedAt,
	}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			OfferID:         item.OfferID,
			SellerID:        item.SellerID,
			Title:           item.Title,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase.String(),
		})
	}
	return dto.OrderResponse{
		ID:          order.ID,
		BuyerID:     order.BuyerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.String(),
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
