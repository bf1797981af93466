package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/handler"
	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/service/availability"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

// ListAvailability serves the marketplace listing: therapists with at
// least one bookable slot, optionally narrowed to one modality.
func (h *Handler) ListAvailability(c *gin.Context) {
	modality, ok := parseModalityQuery(c)
	if !ok {
		return
	}

	now := time.Now().UTC()

	if raw := c.Query("therapist_id"); raw != "" {
		therapistID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
			return
		}
		result, err := h.service.QueryTherapist(c.Request.Context(), now, therapistID, modality)
		if err != nil {
			c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse([]*model.TherapistAvailability{result}))
		return
	}

	listing, err := h.service.Query(c.Request.Context(), now, modality)
	if err != nil {
		c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(listing))
}

// GetTherapistAvailability serves one therapist's bookable slots, flat or
// bucketed into 7 calendar days when view=week.
func (h *Handler) GetTherapistAvailability(c *gin.Context) {
	therapistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
		return
	}

	modality, ok := parseModalityQuery(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	result, err := h.service.QueryTherapist(c.Request.Context(), now, therapistID, modality)
	if err != nil {
		c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
		return
	}

	if c.Query("view") == "week" {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
			"therapist": result.Therapist,
			"week":      availability.BucketByDay(result.Slots, now),
		}))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.ListAvailability)
	r.GET("/therapists/:id/availability", h.GetTherapistAvailability)
}

func parseModalityQuery(c *gin.Context) (*model.Modality, bool) {
	raw := c.Query("modality")
	if raw == "" {
		return nil, true
	}
	modality, err := model.ParseModality(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid modality"))
		return nil, false
	}
	return &modality, true
}
