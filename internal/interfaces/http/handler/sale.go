package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appledger "github.com/hms/backend/internal/application/ledger"
	"github.com/hms/backend/internal/domain/revenue"
)

// SaleHandler exposes pharmacy sale processing
type SaleHandler struct {
	BaseHandler
	processor *appledger.SaleProcessor
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(processor *appledger.SaleProcessor) *SaleHandler {
	return &SaleHandler{processor: processor}
}

// RegisterRoutes registers sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST(":id/process", h.Process)
	}
}

// ProcessSaleRequest holds the lines to dispense when finalizing a sale
type ProcessSaleRequest struct {
	Lines []ProcessSaleLine `json:"lines" binding:"required,min=1,dive"`
}

// ProcessSaleLine is one requested stock deduction
type ProcessSaleLine struct {
	StockItemID string `json:"stock_item_id" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// SaleResponse represents a finalized sale in API responses
type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	GrandTotal    string             `json:"grand_total"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	SoldAt        time.Time          `json:"sold_at"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleItemResponse represents one dispensed line
type SaleItemResponse struct {
	StockItemID string `json:"stock_item_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// Process finalizes a pending sale: stock deduction, item rows, payment
// marking and the ledger credit commit or roll back together
func (h *SaleHandler) Process(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	var req ProcessSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lines := make([]appledger.SaleLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		stockID, err := uuid.Parse(line.StockItemID)
		if err != nil {
			h.BadRequest(c, "Invalid stock item ID: "+line.StockItemID)
			return
		}
		lines = append(lines, appledger.SaleLine{StockItemID: stockID, Quantity: line.Quantity})
	}

	sale, err := h.processor.ProcessSale(c.Request.Context(), saleID, lines, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newSaleResponse(sale))
}

func newSaleResponse(sale *revenue.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemResponse{
			StockItemID: item.StockItemID.String(),
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	return SaleResponse{
		ID:            sale.ID.String(),
		InvoiceNumber: sale.InvoiceNumber,
		GrandTotal:    sale.GrandTotal.StringFixed(2),
		Status:        string(sale.Status),
		PaymentStatus: string(sale.PaymentStatus),
		SoldAt:        sale.SoldAt,
		Items:         items,
	}
}
