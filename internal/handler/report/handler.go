package report

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/handler"
	"github.com/gorica/clinic-api/internal/model"
)

type Service interface {
	List(ctx context.Context, q *model.ReportQuery) ([]*model.ReportDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ReportDetails, error)
	Create(ctx context.Context, req *model.ReportRequest, principal *model.Principal) (*model.ReportDetails, error)
	Update(ctx context.Context, id uuid.UUID, req *model.ReportRequest) (*model.ReportDetails, error)
	Upsert(ctx context.Context, appointmentID uuid.UUID, req *model.ReportRequest, principal *model.Principal) (*model.ReportDetails, bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("", h.ListReports)
		reports.POST("", h.CreateReport)
		reports.GET("/appointment/:appointmentId", h.GetAppointmentReport)
		reports.PUT("/appointment/:appointmentId", h.SaveAppointmentReport)
		reports.GET("/:id", h.GetReport)
		reports.PUT("/:id", h.UpdateReport)
		reports.DELETE("/:id", h.DeleteReport)
	}
}

func (h *Handler) ListReports(c *gin.Context) {
	var q model.ReportQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	reports, err := h.service.List(c.Request.Context(), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Report")
	if !ok {
		return
	}

	report, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetAppointmentReport(c *gin.Context) {
	appointmentID, ok := handler.ParseID(c, "appointmentId", "Report")
	if !ok {
		return
	}

	report, err := h.service.GetByAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req model.ReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.service.Create(c.Request.Context(), &req, handler.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *Handler) UpdateReport(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Report")
	if !ok {
		return
	}

	var req model.ReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SaveAppointmentReport creates the appointment's report or replaces the
// existing one; 201 signals a new report.
func (h *Handler) SaveAppointmentReport(c *gin.Context) {
	appointmentID, ok := handler.ParseID(c, "appointmentId", "Appointment")
	if !ok {
		return
	}

	var req model.ReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, created, err := h.service.Upsert(c.Request.Context(), appointmentID, &req, handler.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, report)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Report")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Report deleted successfully"))
}
