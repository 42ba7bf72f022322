package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appledger "github.com/hms/backend/internal/application/ledger"
	"github.com/hms/backend/internal/domain/ledger"
)

// LedgerHandler exposes the wallet balance and the per-source audit trail
type LedgerHandler struct {
	BaseHandler
	service *appledger.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *appledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	led := rg.Group("/ledger")
	{
		led.GET("/balance", h.Balance)
		led.GET("/transactions", h.History)
	}
}

// BalanceResponse is the cached wallet balance
type BalanceResponse struct {
	Balance string `json:"balance" example:"1250.50"`
}

// TransactionResponse represents one immutable ledger entry
type TransactionResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Amount          string    `json:"amount"`
	Description     string    `json:"description"`
	ReferenceType   string    `json:"reference_type"`
	ReferenceID     string    `json:"reference_id"`
	TransactionDate time.Time `json:"transaction_date"`
	ReversalOfID    *string   `json:"reversal_of_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Balance returns the hospital wallet's cached balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	balance, err := h.service.WalletBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, BalanceResponse{Balance: balance.StringFixed(2)})
}

// History returns every ledger entry for a source reference, oldest
// first, reversals included
func (h *LedgerHandler) History(c *gin.Context) {
	refType := c.Query("reference_type")
	refID, err := uuid.Parse(c.Query("reference_id"))
	if refType == "" || err != nil {
		h.BadRequest(c, "reference_type and a valid reference_id are required")
		return
	}

	entries, err := h.service.History(c.Request.Context(), ledger.Reference{Type: refType, ID: refID})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]TransactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, newTransactionResponse(&entries[i]))
	}
	h.Success(c, out)
}

func newTransactionResponse(txn *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              txn.ID.String(),
		Type:            string(txn.Type),
		Amount:          txn.Amount.StringFixed(2),
		Description:     txn.Description,
		ReferenceType:   txn.ReferenceType,
		ReferenceID:     txn.ReferenceID.String(),
		TransactionDate: txn.TransactionDate,
		CreatedAt:       txn.CreatedAt,
	}
	if txn.ReversalOfID != nil {
		id := txn.ReversalOfID.String()
		resp.ReversalOfID = &id
	}
	return resp
}
