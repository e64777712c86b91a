package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowerssaints/storefront/app/logging"
	"github.com/flowerssaints/storefront/models"
)

const productID = "0f8fad5b-d9cb-469f-a165-70867728950e"

// --- Mocks ---

type MockRecorder struct {
	mu     sync.Mutex
	Clicks []models.ClickTracking
	Err    error
}

func (m *MockRecorder) CreateClick(click *models.ClickTracking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Clicks = append(m.Clicks, *click)
	return nil
}

func (m *MockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clicks)
}

type MockProducts struct {
	Products map[string]models.Product
	Err      error
}

func (m *MockProducts) GetByID(id string) (*models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

type MockQueue struct {
	Events []ClickEvent
}

func (m *MockQueue) Enqueue(evt ClickEvent) bool {
	m.Events = append(m.Events, evt)
	return true
}

func newTestHandler(recorder *MockRecorder, products *MockProducts, queue *MockQueue) *Handler {
	h := NewHandler(recorder, products, queue, logging.Discard())
	h.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

// --- Tests: POST /api/track-click ---

func TestHandleTrackClick(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		recorderErr        error
		expectedStatusCode int
		expectedError      string
		expectedClicks     int
	}{
		{
			name:               "Valid product id is recorded",
			body:               `{"productId":"` + productID + `"}`,
			expectedStatusCode: http.StatusOK,
			expectedClicks:     1,
		},
		{
			name:               "Non-UUID product id",
			body:               `{"productId":"PROD001"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid product ID",
		},
		{
			name:               "Missing product id",
			body:               `{}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid product ID",
		},
		{
			name:               "Malformed JSON",
			body:               `{"productId":`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid product ID",
		},
		{
			name:               "Persistence failure",
			body:               `{"productId":"` + productID + `"}`,
			recorderErr:        errors.New("db down"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "Failed to track click",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			recorder := &MockRecorder{Err: tc.recorderErr}
			handler := newTestHandler(recorder, &MockProducts{}, &MockQueue{})
			req := httptest.NewRequest("POST", "/api/track-click", strings.NewReader(tc.body))
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			req.Header.Set("User-Agent", "test-agent")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleTrackClick(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectedClicks, recorder.count())

			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, resp["error"])
				return
			}
			assert.Equal(t, true, resp["success"])
			click := recorder.Clicks[0]
			assert.Equal(t, productID, click.ProductID)
			assert.Equal(t, "203.0.113.7", click.IPAddress)
			assert.Equal(t, "test-agent", click.UserAgent)
			assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), click.ClickedAt)
		})
	}
}

// --- Tests: GET /go/{id} ---

func TestHandleRedirect(t *testing.T) {
	products := &MockProducts{Products: map[string]models.Product{
		productID: {
			ID:          productID,
			AmazonLink:  "https://www.amazon.com/dp/B0TEST?psc=1",
			AffiliateID: "store-20",
		},
	}}

	testCases := []struct {
		name               string
		id                 string
		products           *MockProducts
		expectedStatusCode int
		expectedLocation   string
		expectedEvents     int
	}{
		{
			name:               "Known product redirects with tag",
			id:                 productID,
			products:           products,
			expectedStatusCode: http.StatusFound,
			expectedLocation:   "https://www.amazon.com/dp/B0TEST?psc=1&tag=store-20",
			expectedEvents:     1,
		},
		{
			name:               "Non-UUID id",
			id:                 "not-a-uuid",
			products:           products,
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Unknown product",
			id:                 "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			products:           products,
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Repository error",
			id:                 productID,
			products:           &MockProducts{Err: errors.New("db down")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			queue := &MockQueue{}
			handler := newTestHandler(&MockRecorder{}, tc.products, queue)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tc.id)
			req := httptest.NewRequest("GET", "/go/"+tc.id, nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			// Act
			handler.HandleRedirect(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectedLocation, rec.Header().Get("Location"))
			assert.Len(t, queue.Events, tc.expectedEvents)
		})
	}
}

func TestHandleRedirect_RecorderFailureStillRedirects(t *testing.T) {
	// Arrange
	recorder := &MockRecorder{Err: errors.New("db down")}
	workers := StartWorkers(1, 4, recorder, logging.Discard())
	products := &MockProducts{Products: map[string]models.Product{
		productID: {ID: productID, AmazonLink: "https://www.amazon.com/dp/B0TEST", AffiliateID: "store-20"},
	}}
	handler := NewHandler(recorder, products, workers, logging.Discard())
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", productID)
	req := httptest.NewRequest("GET", "/go/"+productID, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	// Act
	handler.HandleRedirect(rec, req)
	workers.Close()

	// Assert
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://www.amazon.com/dp/B0TEST?tag=store-20", rec.Header().Get("Location"))
	assert.Equal(t, 0, recorder.count())
}
