package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/v1/students", "200"))

	ObserveRequest("GET", "/v1/students", 200, 15*time.Millisecond)
	ObserveRequest("GET", "/v1/students", 200, 30*time.Millisecond)

	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/v1/students", "200"))
	assert.Equal(t, before+2, after)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(RequestDuration), 1)
}
