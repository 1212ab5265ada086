package token

import (
	"errors"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the wallet and transaction endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the token HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type completeSaleRequest struct {
	TransactionID string   `json:"transactionId"`
	BuyerID       string   `json:"buyerId"`
	SellerID      string   `json:"sellerId"`
	TotalFiatPaid *float64 `json:"totalFiatPaid"`
}

type redeemRequest struct {
	TokensToRedeem *float64 `json:"tokensToRedeem"`
}

// CompleteSale handles the simulated escrow webhook that triggers the
// credit-on-sale operation.
func (h *Handler) CompleteSale(c *fiber.Ctx) error {
	var req completeSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, NewError(KindInvalidInput, "malformed request body"))
	}
	if req.SellerID == "" || req.TotalFiatPaid == nil || *req.TotalFiatPaid <= 0 {
		return errorResponse(c, NewError(KindInvalidInput, "seller id and positive total fiat paid are required"))
	}

	result, err := h.service.CompleteSale(c.UserContext(), SaleInput{
		TransactionID: req.TransactionID,
		BuyerID:       req.BuyerID,
		SellerID:      req.SellerID,
		FiatAmount:    *req.TotalFiatPaid,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":        "Transaction completed, tokens credited.",
		"transactionId":  result.TransactionID,
		"feeCharged":     result.FeeCharged,
		"tokensCredited": result.TokensCredited,
	})
}

// Redeem burns tokens for the authenticated caller. The user id is bound from
// the verified credential by the auth middleware, never from the body.
func (h *Handler) Redeem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return errorResponse(c, NewError(KindUnauthorized, "not authorized"))
	}

	var req redeemRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, NewError(KindInvalidInput, "malformed request body"))
	}
	if req.TokensToRedeem == nil || *req.TokensToRedeem <= 0 {
		return errorResponse(c, NewError(KindInvalidInput, "tokens to redeem must be a positive number"))
	}
	amount := *req.TokensToRedeem
	if amount != math.Trunc(amount) {
		return errorResponse(c, NewError(KindInvalidInput, "tokens to redeem must be a whole number"))
	}

	result, err := h.service.Redeem(c.UserContext(), userID, int64(amount))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "Token redemption successful. Fiat payout simulated.",
		"fiatRedeemed": result.FiatRedeemed,
	})
}

// Balance returns the authenticated caller's wallet balances.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return errorResponse(c, NewError(KindUnauthorized, "not authorized"))
	}

	w, err := h.service.Balance(c.UserContext(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token_balance": w.TokenBalance,
		"fiat_balance":  w.FiatBalance,
	})
}

// History lists the caller's ledger entries, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return errorResponse(c, NewError(KindUnauthorized, "not authorized"))
	}

	entries, err := h.service.Entries(c.UserContext(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, fiber.Map{
			"type":        string(e.Type),
			"amount":      e.Amount,
			"source_fiat": e.SourceFiat,
			"created_at":  e.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": out})
}

// errorResponse maps a structured token error onto the JSON error contract.
// Transaction failures return a generic message; their detail is logged
// server-side only.
func errorResponse(c *fiber.Ctx, err error) error {
	var te *Error
	if !errors.As(err, &te) {
		te = NewError(KindTransactionFailed, "transaction failed")
	}

	status := http.StatusInternalServerError
	detail := te.Detail
	switch te.Kind {
	case KindInvalidInput, KindInsufficientBalance:
		status = http.StatusBadRequest
	case KindUnauthorized:
		status = http.StatusUnauthorized
	case KindNotFound:
		status = http.StatusNotFound
	case KindTransactionFailed:
		detail = "transaction failed"
	}

	return c.Status(status).JSON(fiber.Map{
		"error":  string(te.Kind),
		"detail": detail,
	})
}
