package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/photos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsCounter.WithLabelValues(http.MethodGet, "/api/photos/{id}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/photos/42", nil))
	after := testutil.ToFloat64(httpRequestsCounter.WithLabelValues(http.MethodGet, "/api/photos/{id}", "418"))

	assert.Equal(t, before+1, after)
}

func TestRecorder(t *testing.T) {
	var rec Recorder

	before := testutil.ToFloat64(rsvpCounter.WithLabelValues("attending"))
	rowsBefore := testutil.ToFloat64(rsvpRowsCounter)
	plusBefore := testutil.ToFloat64(plusOneCounter)

	rec.RSVPSubmitted(models.ResponseAttending, 2, true)

	assert.Equal(t, before+1, testutil.ToFloat64(rsvpCounter.WithLabelValues("attending")))
	assert.Equal(t, rowsBefore+2, testutil.ToFloat64(rsvpRowsCounter))
	assert.Equal(t, plusBefore+1, testutil.ToFloat64(plusOneCounter))
}
