package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/handler"
	"github.com/gorica/clinic-api/internal/model"
)

type Service interface {
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Create(ctx context.Context, req *model.PatientRequest) (*model.Patient, error)
	Update(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.DeletePatientResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

// ListPatients supports ?search= over first name, last name and phone.
func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if !handler.BindQuery(c, &filters) {
		return
	}

	patients, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Patient")
	if !ok {
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Patient")
	if !ok {
		return
	}

	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "Patient")
	if !ok {
		return
	}

	resp, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
