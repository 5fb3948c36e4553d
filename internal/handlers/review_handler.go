package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/hotelmatch/internal/errors"
	"github.com/stwalsh4118/hotelmatch/internal/middleware"
	"github.com/stwalsh4118/hotelmatch/internal/review"
	"github.com/stwalsh4118/hotelmatch/internal/services"
)

// ReviewHandler exposes the reviewer's session over HTTP.
type ReviewHandler struct {
	service services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler instance.
func NewReviewHandler(service services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// AdvanceRequest is the body of POST /api/v1/review/advance.
// Direction is a pointer so an explicit 0 (stay) passes "required".
type AdvanceRequest struct {
	Direction *int `json:"direction" binding:"required,oneof=-1 0 1"`
}

// ReviewResponse is the current page as sent to the front end.
type ReviewResponse struct {
	review.View
}

// GroupsResponse lists the day's match groups.
type GroupsResponse struct {
	Groups []services.GroupSummary `json:"groups"`
	Count  int                     `json:"count"`
}

// Register mounts the review routes on rg.
func (h *ReviewHandler) Register(rg *gin.RouterGroup) {
	r := rg.Group("/review")
	r.GET("", h.Current)
	r.GET("/groups", h.Groups)
	r.POST("/next", h.Next)
	r.POST("/previous", h.Previous)
	r.POST("/advance", h.Advance)
	r.POST("/distance/cycle", h.CycleDistance)
	r.POST("/mode/toggle", h.ToggleMode)
	r.POST("/reload", h.Reload)
}

// Current handles GET /api/v1/review.
func (h *ReviewHandler) Current(c *gin.Context) {
	h.respond(c, "view")(h.service.View())
}

// Next handles POST /api/v1/review/next.
func (h *ReviewHandler) Next(c *gin.Context) {
	h.respond(c, "next")(h.service.Next())
}

// Previous handles POST /api/v1/review/previous.
func (h *ReviewHandler) Previous(c *gin.Context) {
	h.respond(c, "previous")(h.service.Previous())
}

// Advance handles POST /api/v1/review/advance.
func (h *ReviewHandler) Advance(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	h.respond(c, "advance")(h.service.Advance(review.Direction(*req.Direction)))
}

// CycleDistance handles POST /api/v1/review/distance/cycle.
func (h *ReviewHandler) CycleDistance(c *gin.Context) {
	h.respond(c, "cycle_distance")(h.service.CycleDistance())
}

// ToggleMode handles POST /api/v1/review/mode/toggle.
func (h *ReviewHandler) ToggleMode(c *gin.Context) {
	h.respond(c, "toggle_mode")(h.service.ToggleMode())
}

// Reload handles POST /api/v1/review/reload. It re-queries the latest day
// and returns the first page.
func (h *ReviewHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, "reload")(h.service.View())
}

// Groups handles GET /api/v1/review/groups.
func (h *ReviewHandler) Groups(c *gin.Context) {
	groups, err := h.service.Groups()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GroupsResponse{Groups: groups, Count: len(groups)})
}

// respond writes the view or maps the error. It returns a func so call
// sites can pass a (View, error) pair directly.
func (h *ReviewHandler) respond(c *gin.Context, action string) func(review.View, error) {
	return func(v review.View, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		if log := middleware.GetLogger(c); log != nil {
			log.Debug("Review action applied", map[string]interface{}{
				"action":       action,
				"page":         v.Page,
				"geobox":       v.Geobox,
				"max_distance": v.MaxDistance,
				"mode":         v.Mode,
			})
		}
		c.JSON(http.StatusOK, ReviewResponse{View: v})
	}
}

func (h *ReviewHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoData):
		apierrors.ServiceUnavailable(c, apierrors.ErrNoData, "No match data is available for review")
	case errors.Is(err, services.ErrNotStarted):
		apierrors.ServiceUnavailable(c, apierrors.ErrNotStarted, "The review session has not been loaded")
	case errors.Is(err, review.ErrInvalidDirection):
		apierrors.BadRequest(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, "Failed to apply review action", err)
	}
}
