package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tokengrid/tokengrid/internal/token"
)

// RegisterWalletRoutes wires the authenticated wallet endpoints. The caller
// identity comes from the JWT middleware on the enclosing group.
func RegisterWalletRoutes(r fiber.Router, h *token.Handler, idem fiber.Handler) {
	group := r.Group("/wallet")
	group.Get("/balance", h.Balance)
	group.Get("/history", h.History)
	if idem != nil {
		group.Post("/redeem", idem, h.Redeem)
	} else {
		group.Post("/redeem", h.Redeem)
	}
}
