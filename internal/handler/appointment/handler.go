package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/handler"
	"github.com/gorica/clinic-api/internal/model"
)

type Service interface {
	List(ctx context.Context, q *model.AppointmentQuery) ([]*model.AppointmentDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
	Create(ctx context.Context, req *model.CreateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool, principal *model.Principal) (*model.DeleteAppointmentResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q model.AppointmentQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	appointments, err := h.service.List(c.Request.Context(), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Appointment")
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req, handler.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Appointment")
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req, handler.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// DeleteAppointment cancels the appointment; ?hard_delete=true removes the row.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Appointment")
	if !ok {
		return
	}

	hard := c.Query("hard_delete") == "true"
	resp, err := h.service.Delete(c.Request.Context(), id, hard, handler.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
