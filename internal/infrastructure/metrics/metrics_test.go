package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCodeClass(t *testing.T) {
	assert.Equal(t, "2xx", CodeClass(200))
	assert.Equal(t, "2xx", CodeClass(204))
	assert.Equal(t, "4xx", CodeClass(401))
	assert.Equal(t, "5xx", CodeClass(503))
	assert.Equal(t, "error", CodeClass(0))
	assert.Equal(t, "error", CodeClass(700))
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(GatewayReauthTotal.WithLabelValues("retried"))
	GatewayReauthTotal.WithLabelValues("retried").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GatewayReauthTotal.WithLabelValues("retried")))
}
