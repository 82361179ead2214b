package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProfileCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(profileLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(profileLookups.WithLabelValues("miss"))

	ProfileCacheLookup(true)
	ProfileCacheLookup(false)
	ProfileCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(profileLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(profileLookups.WithLabelValues("miss")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404"))
	ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		MustRegister()
		MustRegister()
	})
}
