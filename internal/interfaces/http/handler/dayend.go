package handler

import (
	"github.com/gin-gonic/gin"
	appdayend "github.com/hms/backend/internal/application/dayend"
	"github.com/hms/backend/internal/interfaces/http/dto"
)

// DayEndHandler exposes the business-day cutover endpoints
type DayEndHandler struct {
	BaseHandler
	cutover *appdayend.CutoverService
}

// NewDayEndHandler creates a new DayEndHandler
func NewDayEndHandler(cutover *appdayend.CutoverService) *DayEndHandler {
	return &DayEndHandler{cutover: cutover}
}

// RegisterRoutes registers day-end routes
func (h *DayEndHandler) RegisterRoutes(rg *gin.RouterGroup) {
	day := rg.Group("/day")
	{
		day.GET("/status", h.Status)
		day.GET("/summary", h.Summary)
		day.POST("/close", h.Close)
	}
}

// Status reports whether a new business day is available to close
func (h *DayEndHandler) Status(c *gin.Context) {
	status, err := h.cutover.CheckStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.DayStatusResponse{Status: status})
}

// Summary returns the live breakdown of the open business day
func (h *DayEndHandler) Summary(c *gin.Context) {
	breakdown, window, err := h.cutover.Summary(c.Request.Context())
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

// Close archives the open business day and advances the day boundary
func (h *DayEndHandler) Close(c *gin.Context) {
	if err := h.cutover.CloseDay(c.Request.Context(), getActorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	status, err := h.cutover.CheckStatus(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.DayStatusResponse{Status: status})
}
