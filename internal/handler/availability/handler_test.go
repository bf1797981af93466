package availability

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
	availabilitysvc "github.com/psiconecta/booking-api/internal/service/availability"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate metric names.
var testMetrics = metrics.NewMetrics("booking", "availabilityhandlertest")

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

type fixture struct {
	router     *gin.Engine
	slots      *memory.SlotStore
	therapists *memory.TherapistStore
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	slots := memory.NewSlotStore()
	therapists := memory.NewTherapistStore()
	svc := availabilitysvc.NewService(slots, therapists, testLogger(), testMetrics)
	h := NewHandler(svc)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return &fixture{router: r, slots: slots, therapists: therapists}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	f.router.ServeHTTP(w, req)
	return w
}

type listingResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Therapist model.Therapist `json:"therapist"`
		Slots     []model.Slot    `json:"slots"`
	} `json:"data"`
}

func TestListAvailabilityReturnsListing(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.therapists.Add(model.Therapist{ID: id, Name: "Ana Ruiz"})
	f.slots.Add(model.Slot{
		TherapistID: id,
		Datetime:    time.Now().UTC().Add(24 * time.Hour),
		Modality:    model.ModalityOnline,
	})

	w := f.get("/api/v1/availability")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, id, resp.Data[0].Therapist.ID)
	assert.Len(t, resp.Data[0].Slots, 1)
}

func TestListAvailabilityEmptyStoreReturnsEmptyList(t *testing.T) {
	f := newFixture()

	w := f.get("/api/v1/availability")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestListAvailabilityTherapistFilter(t *testing.T) {
	f := newFixture()
	wanted := uuid.New()
	other := uuid.New()
	f.therapists.Add(model.Therapist{ID: wanted, Name: "Ana Ruiz"})
	f.therapists.Add(model.Therapist{ID: other, Name: "Carmen Soler"})

	future := time.Now().UTC().Add(24 * time.Hour)
	f.slots.Add(model.Slot{TherapistID: wanted, Datetime: future, Modality: model.ModalityOnline})
	f.slots.Add(model.Slot{TherapistID: other, Datetime: future, Modality: model.ModalityOnline})

	w := f.get("/api/v1/availability?therapist_id=" + wanted.String())
	require.Equal(t, http.StatusOK, w.Code)

	var resp listingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, wanted, resp.Data[0].Therapist.ID)
}

func TestListAvailabilityRejectsUnknownModality(t *testing.T) {
	f := newFixture()

	w := f.get("/api/v1/availability?modality=phone")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTherapistAvailabilityNotFound(t *testing.T) {
	f := newFixture()

	w := f.get("/api/v1/therapists/" + uuid.NewString() + "/availability")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTherapistAvailabilityRejectsMalformedID(t *testing.T) {
	f := newFixture()

	w := f.get("/api/v1/therapists/abc/availability")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTherapistAvailabilityFlat(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.therapists.Add(model.Therapist{ID: id, Name: "Ana Ruiz"})
	f.slots.Add(model.Slot{
		TherapistID: id,
		Datetime:    time.Now().UTC().Add(48 * time.Hour),
		Modality:    model.ModalityPresencial,
	})

	w := f.get("/api/v1/therapists/" + id.String() + "/availability")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                      `json:"status"`
		Data   model.TherapistAvailability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Therapist)
	assert.Equal(t, id, resp.Data.Therapist.ID)
	assert.Len(t, resp.Data.Slots, 1)
}

func TestGetTherapistAvailabilityWeekView(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.therapists.Add(model.Therapist{ID: id, Name: "Ana Ruiz"})

	now := time.Now().UTC()
	f.slots.Add(model.Slot{TherapistID: id, Datetime: now.Add(time.Hour), Modality: model.ModalityOnline})
	f.slots.Add(model.Slot{TherapistID: id, Datetime: now.Add(10 * 24 * time.Hour), Modality: model.ModalityOnline})

	w := f.get("/api/v1/therapists/" + id.String() + "/availability?view=week")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Therapist model.Therapist   `json:"therapist"`
			Week      model.WeeklySlots `json:"week"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.Data.Therapist.ID)

	var total int
	for _, day := range resp.Data.Week {
		total += len(day)
	}
	// The slot ten days out falls outside the week window.
	assert.Equal(t, 1, total)
}
