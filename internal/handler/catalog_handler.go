package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enroll-wizard-api/internal/dto"
	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/internal/service"
	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
	"github.com/noah-isme/enroll-wizard-api/pkg/response"
)

type catalogService interface {
	service.SubjectCatalog
	service.LocationLookup
}

// CatalogHandler serves the lookup tables the wizard forms use.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Subjects godoc
// @Summary Subjects offered for a class
// @Tags Catalog
// @Produce json
// @Param classLevel query string true "Class level" Enums(9, 10, 11, 12)
// @Param examGoal query string false "Exam goal, tightens the minimum for Class 12"
// @Success 200 {object} response.Envelope
// @Router /catalog/subjects [get]
func (h *CatalogHandler) Subjects(c *gin.Context) {
	class := models.ClassLevel(c.Query("classLevel"))
	if !class.IsValid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classLevel must be one of 9, 10, 11, 12"))
		return
	}
	subjects, ok := h.catalog.SubjectsFor(class)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no subjects configured for class"))
		return
	}
	response.JSON(c, http.StatusOK, dto.SubjectCatalogResponse{
		ClassLevel:  class,
		Subjects:    subjects,
		MinSubjects: service.MinimumSubjects(class, models.ExamGoal(c.Query("examGoal"))),
	}, nil)
}

// Location godoc
// @Summary Resolve a PIN code
// @Tags Catalog
// @Produce json
// @Param pin path string true "6-digit PIN code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/pincodes/{pin} [get]
func (h *CatalogHandler) Location(c *gin.Context) {
	pin := c.Param("pin")
	loc, ok := h.catalog.Lookup(pin)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown pin code"))
		return
	}
	response.JSON(c, http.StatusOK, dto.LocationResponse{PinCode: pin, Location: loc}, nil)
}
