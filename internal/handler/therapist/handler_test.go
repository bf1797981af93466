package therapist

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository/memory"
	therapistsvc "github.com/psiconecta/booking-api/internal/service/therapist"
	"github.com/psiconecta/booking-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newTestRouter(store *memory.TherapistStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(therapistsvc.NewService(store, testLogger()))

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Status string            `json:"status"`
	Data   []model.Therapist `json:"data"`
}

func TestListTherapistsSpecialtyFilter(t *testing.T) {
	store := memory.NewTherapistStore()
	wanted := uuid.New()
	store.Add(model.Therapist{ID: wanted, Name: "Ana Ruiz", Specialties: []string{"Ansiedad"}})
	store.Add(model.Therapist{ID: uuid.New(), Name: "Carmen Soler", Specialties: []string{"Trauma"}})

	router := newTestRouter(store)

	w := get(router, "/api/v1/therapists?specialty=Ansiedad")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, wanted, resp.Data[0].ID)

	w = get(router, "/api/v1/therapists")
	require.Equal(t, http.StatusOK, w.Code)
	resp = listResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

func TestGetTherapistByID(t *testing.T) {
	store := memory.NewTherapistStore()
	id := uuid.New()
	store.Add(model.Therapist{ID: id, Name: "Ana Ruiz"})

	router := newTestRouter(store)

	w := get(router, "/api/v1/therapists/"+id.String())
	require.Equal(t, http.StatusOK, w.Code)

	w = get(router, "/api/v1/therapists/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSpecialties(t *testing.T) {
	store := memory.NewTherapistStore()
	store.Add(model.Therapist{ID: uuid.New(), Name: "Ana Ruiz", Specialties: []string{"Duelo", "Ansiedad"}})

	router := newTestRouter(store)

	w := get(router, "/api/v1/specialties")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Ansiedad", "Duelo"}, resp.Data)
}
