package therapist

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/handler"
	"github.com/psiconecta/booking-api/internal/service/therapist"
)

type Handler struct {
	service *therapist.Service
}

func NewHandler(service *therapist.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListTherapists(c *gin.Context) {
	var specialty *string
	if raw := c.Query("specialty"); raw != "" {
		specialty = &raw
	}

	therapists, err := h.service.List(c.Request.Context(), specialty)
	if err != nil {
		c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(therapists))
}

func (h *Handler) GetTherapist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid therapist ID"))
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(t))
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.Specialties(c.Request.Context())
	if err != nil {
		c.JSON(handler.StatusFromError(err), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(specialties))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/therapists", h.ListTherapists)
	r.GET("/therapists/:id", h.GetTherapist)
	r.GET("/specialties", h.ListSpecialties)
}
