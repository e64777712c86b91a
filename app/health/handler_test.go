package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowerssaints/storefront/app/logging"
)

type fakeChecker struct {
	pingErr error
	now     time.Time
	nowErr  error
}

func (f fakeChecker) Ping(context.Context) error { return f.pingErr }

func (f fakeChecker) Now(context.Context) (time.Time, error) { return f.now, f.nowErr }

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedHealth string
		expectedDB     string
	}{
		{name: "database reachable", expectedStatus: http.StatusOK, expectedHealth: StatusHealthy, expectedDB: StatusHealthy},
		{name: "database down", pingErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedHealth: StatusUnhealthy, expectedDB: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := NewHandler(fakeChecker{pingErr: tt.pingErr}, "test", logging.Discard())
			rec := httptest.NewRecorder()

			// Act
			h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			// Assert
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
			assert.Regexp(t, `^\d+ms$`, rec.Header().Get("X-Response-Time"))

			var body Status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedHealth, body.Status)
			assert.Equal(t, tt.expectedDB, body.Services.Database)
			assert.Equal(t, StatusHealthy, body.Services.API)
			assert.Equal(t, "test", body.Environment)
			assert.Equal(t, rec.Header().Get("X-Response-Time"), body.ResponseTime)
			if tt.pingErr != nil {
				assert.NotEmpty(t, body.Error)
				assert.NotContains(t, body.Error, "connection refused")
			} else {
				assert.Empty(t, body.Error)
			}
		})
	}
}

func TestHandleTestDB(t *testing.T) {
	t.Run("reports server time", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		h := NewHandler(fakeChecker{now: now}, "test", logging.Discard())
		rec := httptest.NewRecorder()

		h.HandleTestDB(rec, httptest.NewRequest(http.MethodGet, "/api/test-db", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Database connection successful","data":{"current_time":"2024-03-01T12:00:00Z"}}`, rec.Body.String())
	})

	t.Run("query failure", func(t *testing.T) {
		h := NewHandler(fakeChecker{nowErr: errors.New("boom")}, "test", logging.Discard())
		rec := httptest.NewRecorder()

		h.HandleTestDB(rec, httptest.NewRequest(http.MethodGet, "/api/test-db", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Database connection failed"}`, rec.Body.String())
	})
}

func TestSQLChecker(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	checker := SQLChecker{DB: db}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT 1 AS health_check").
		WillReturnRows(sqlmock.NewRows([]string{"health_check"}).AddRow(1))
	mock.ExpectQuery("SELECT NOW\\(\\) AS current_time").
		WillReturnRows(sqlmock.NewRows([]string{"current_time"}).AddRow(now))
	mock.ExpectQuery("SELECT 1 AS health_check").
		WillReturnError(errors.New("gone"))

	require.NoError(t, checker.Ping(context.Background()))
	got, err := checker.Now(context.Background())
	require.NoError(t, err)
	assert.True(t, now.Equal(got))
	assert.Error(t, checker.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
