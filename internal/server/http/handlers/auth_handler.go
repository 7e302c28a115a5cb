package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/dto"
	"github.com/polkiloo/digimarket/internal/server/http/middleware"
)

// AuthHandler processes registration and login.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/user/register. An empty role registers a buyer.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	token, err := h.facade.Register(c.Request.Context(), req.Login, req.Password, model.Role(req.Role))
	if err != nil {
		// Blank credentials are a malformed registration, not a failed login.
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.Code(err)})
			return
		}
		respondError(c, err)
		return
	}

	issueSession(c, token)
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	token, err := h.facade.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	issueSession(c, token)
}

func issueSession(c *gin.Context, token string) {
	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, TokenType: "Bearer"})
}
