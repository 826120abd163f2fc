package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rossfinn/minimart/internal/domain"
	"github.com/rossfinn/minimart/internal/handler"
)

func metricsTestServer(t *testing.T) (*echo.Echo, *Metrics) {
	t.Helper()

	m := NewMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(zerolog.Nop())
	// Same ordering as the server: logger outside, metrics inside.
	e.Use(RequestLogger(zerolog.Nop()))
	e.Use(m.Middleware())
	return e, m
}

func (m *Metrics) countFor(method, route, status string) float64 {
	return testutil.ToFloat64(m.requests.WithLabelValues(method, route, status))
}

func TestMetrics_CountsSuccessStatus(t *testing.T) {
	e, m := metricsTestServer(t)
	e.GET("/cart", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), m.countFor(http.MethodGet, "/cart", "200"))
}

func TestMetrics_CountsErrorUnderRealStatus(t *testing.T) {
	e, m := metricsTestServer(t)
	e.GET("/cart", func(c echo.Context) error {
		return domain.ErrCartNotFound
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, float64(1), m.countFor(http.MethodGet, "/cart", "404"))
	require.Zero(t, m.countFor(http.MethodGet, "/cart", "200"))
}

func TestMetrics_ErrorBodyWrittenOnce(t *testing.T) {
	e, m := metricsTestServer(t)
	e.GET("/boom", func(c echo.Context) error {
		return domain.Internal(nil, "test.boom", "failed")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, float64(1), m.countFor(http.MethodGet, "/boom", "500"))
	// Metrics commits the error, then the logger sees it again; the error
	// handler must not write a second body.
	require.Equal(t, 1, countOccurrences(rec.Body.String(), `"ok":false`))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
