package metrics

import (
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordSend(t *testing.T) {
	started := testutil.ToFloat64(sendsStarted)
	inFlight := testutil.ToFloat64(tasksInFlight)
	failures := testutil.ToFloat64(sendsCompleted.WithLabelValues(ResultFailure))

	RecordSendStarted()
	require.Equal(t, started+1, testutil.ToFloat64(sendsStarted))
	require.Equal(t, inFlight+1, testutil.ToFloat64(tasksInFlight))

	RecordSendCompleted(ResultFailure)
	require.Equal(t, inFlight, testutil.ToFloat64(tasksInFlight))
	require.Equal(t, failures+1, testutil.ToFloat64(sendsCompleted.WithLabelValues(ResultFailure)))
}

func TestRecordComments(t *testing.T) {
	expired := testutil.ToFloat64(commentsExpired)

	RecordCommentsExpired(3)
	require.Equal(t, expired+3, testutil.ToFloat64(commentsExpired))

	RecordCacheRefresh(42, time.Millisecond)
	require.Equal(t, float64(42), testutil.ToFloat64(commentsCached))
}

func TestHandler(t *testing.T) {
	RecordMissingCapability()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "icingacore_notification_missing_capability_total"))
}
