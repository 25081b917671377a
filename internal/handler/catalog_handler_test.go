package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-wizard-api/internal/dto"
	"github.com/noah-isme/enroll-wizard-api/internal/models"
	"github.com/noah-isme/enroll-wizard-api/internal/service"
)

func TestCatalogHandlerSubjects(t *testing.T) {
	h := NewCatalogHandler(service.NewCatalogService())

	c, w := newGinContext(http.MethodGet, "/catalog/subjects?classLevel=12&examGoal=Competitive%20Prep", nil, nil)
	h.Subjects(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SubjectCatalogResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, models.ClassLevel12, resp.ClassLevel)
	assert.Contains(t, resp.Subjects, "Physics")
	assert.Equal(t, 3, resp.MinSubjects)

	c, w = newGinContext(http.MethodGet, "/catalog/subjects?classLevel=9", nil, nil)
	h.Subjects(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, 2, resp.MinSubjects)
}

func TestCatalogHandlerSubjectsInvalidClass(t *testing.T) {
	h := NewCatalogHandler(service.NewCatalogService())
	c, w := newGinContext(http.MethodGet, "/catalog/subjects?classLevel=8", nil, nil)
	h.Subjects(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerLocation(t *testing.T) {
	h := NewCatalogHandler(service.NewCatalogService())

	c, w := newGinContext(http.MethodGet, "/catalog/pincodes/400001", nil, gin.Params{{Key: "pin", Value: "400001"}})
	h.Location(c)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LocationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, "400001", resp.PinCode)
	assert.Equal(t, "Maharashtra", resp.State)
	assert.Equal(t, "Mumbai", resp.City)

	c, w = newGinContext(http.MethodGet, "/catalog/pincodes/999999", nil, gin.Params{{Key: "pin", Value: "999999"}})
	h.Location(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
