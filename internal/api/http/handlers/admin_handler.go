package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoodmarket/ticket-bot/internal/api/dto"
	"github.com/hoodmarket/ticket-bot/internal/auth"
	"github.com/hoodmarket/ticket-bot/internal/intents"
	"github.com/hoodmarket/ticket-bot/internal/router"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

// AdminHandler exposes the privileged operator commands over HTTP.
type AdminHandler struct {
	tokens       *auth.TokenManager
	passwordHash string
	router       *router.Router
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tokens *auth.TokenManager, passwordHash string, r *router.Router) *AdminHandler {
	return &AdminHandler{tokens: tokens, passwordHash: passwordHash, router: r}
}

// Login POST /admin/login. Verifies the operator password and issues an
// admin bearer token.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	if h.passwordHash == "" {
		return apperrors.NewUnauthorized("admin login disabled")
	}
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := auth.ComparePassword(h.passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken("operator", auth.RoleAdmin)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}})
}

// PublishPanel POST /admin/panel. Publishes the ticket panel.
func (h *AdminHandler) PublishPanel(c *fiber.Ctx) error {
	var req dto.PublishPanelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	resp := h.router.Dispatch(c.UserContext(), &intents.PublishPanel{ChannelRef: req.ChannelRef})
	return c.JSON(fiber.Map{"response": resp})
}

// ResetTickets POST /admin/reset. Clears the ticket namespace.
func (h *AdminHandler) ResetTickets(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)
	actorID := ""
	if claims != nil {
		actorID = claims.Subject
	}
	resp := h.router.Dispatch(c.UserContext(), &intents.ResetTickets{ActorID: actorID})
	return c.JSON(fiber.Map{"response": resp})
}
