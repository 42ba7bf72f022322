package handler

import (
	"github.com/gin-gonic/gin"
	apprevenue "github.com/hms/backend/internal/application/revenue"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/interfaces/http/dto"
)

// RevenueHandler exposes revenue aggregation endpoints
type RevenueHandler struct {
	BaseHandler
	aggregator *apprevenue.Aggregator
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(aggregator *apprevenue.Aggregator) *RevenueHandler {
	return &RevenueHandler{aggregator: aggregator}
}

// RegisterRoutes registers revenue routes
func (h *RevenueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rev := rg.Group("/revenue")
	{
		rev.GET("", h.Aggregate)
		rev.GET("/current", h.CurrentDay)
		rev.POST("/refresh", h.Refresh)
	}
}

// Aggregate returns the per-bucket breakdown over an arbitrary window.
// Without bounds it covers all recorded history.
func (h *RevenueHandler) Aggregate(c *gin.Context) {
	var req dto.AggregateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid window bounds: "+err.Error())
		return
	}

	window := revenue.AllTime(timeOrZero(req.From))
	if req.To != nil {
		window.End = *req.To
	}
	if !window.End.After(window.Start) {
		h.BadRequest(c, "Window end must be after window start")
		return
	}

	breakdown, err := h.aggregator.Aggregate(c.Request.Context(), window)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.WindowedBreakdownResponse{
		Breakdown: dto.NewBreakdownResponse(breakdown),
		From:      window.Start,
		To:        window.End,
	})
}

// CurrentDay returns today's running breakdown. Store failures degrade
// to a zero breakdown so dashboards keep rendering.
func (h *RevenueHandler) CurrentDay(c *gin.Context) {
	breakdown := h.aggregator.CurrentDaySafe(c.Request.Context())
	h.Success(c, dto.NewBreakdownResponse(breakdown))
}

// Refresh recomputes the all-history breakdown and repopulates its cache
func (h *RevenueHandler) Refresh(c *gin.Context) {
	breakdown, err := h.aggregator.RefreshAllHistory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewBreakdownResponse(breakdown))
}
