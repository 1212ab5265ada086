package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tokengrid/tokengrid/internal/token"
)

// RegisterTransactionRoutes wires the simulated escrow completion endpoint.
// The route stands in for a webhook from an external escrow provider, so it
// is not behind user authentication.
func RegisterTransactionRoutes(r fiber.Router, h *token.Handler, idem fiber.Handler) {
	group := r.Group("/transactions")
	if idem != nil {
		group.Post("/complete", idem, h.CompleteSale)
	} else {
		group.Post("/complete", h.CompleteSale)
	}
}
