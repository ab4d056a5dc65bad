package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoodmarket/ticket-bot/internal/intents"
	"github.com/hoodmarket/ticket-bot/internal/router"
	apperrors "github.com/hoodmarket/ticket-bot/pkg/util"
)

// IntentsHandler receives platform interaction webhooks.
type IntentsHandler struct {
	router *router.Router
}

// NewIntentsHandler constructs handler.
func NewIntentsHandler(r *router.Router) *IntentsHandler {
	return &IntentsHandler{router: r}
}

// Receive POST /intents. Decodes the intent envelope, dispatches it and
// writes the single terminal response.
func (h *IntentsHandler) Receive(c *fiber.Ctx) error {
	intent, err := intents.Parse(c.Body())
	if err != nil {
		return apperrors.NewValidationError("invalid intent payload", map[string]any{"reason": err.Error()})
	}

	resp := h.router.Dispatch(c.UserContext(), intent)
	return c.JSON(fiber.Map{"response": resp})
}
