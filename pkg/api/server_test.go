package api

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/notification"
	"github.com/icinga/icingacore/pkg/objects"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/icinga/icingacore/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type testServer struct {
	handler http.Handler
	engine  *notification.Engine
	sent    *atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logging.NewLogger(zaptest.NewLogger(t).Sugar(), time.Second)
	r := objects.NewRegistry(objects.NewApplication(nil), nil)

	h := objects.NewHost("web01")
	require.NoError(t, r.RegisterHost(h))
	require.NoError(t, r.RegisterService(objects.NewService(h, "ping")))
	require.NoError(t, r.RegisterUser(objects.NewUser("jdoe")))

	for _, nc := range []struct{ name, service, user string }{
		{"mail", "ping", "jdoe"},
		{"broken", "", "nobody"},
	} {
		n := objects.NewNotification(nc.name, "web01", nc.service)
		n.Users = []string{nc.user}
		n.Methods[task.NotifyMethod] = "test::Count"
		require.NoError(t, r.RegisterNotification(n))
	}

	sent := &atomic.Int32{}
	tasks := task.NewRegistry()
	require.NoError(t, tasks.Register("test::Count", func(context.Context, task.Arguments) (any, error) {
		sent.Add(1)
		return nil, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cache := comments.NewCache(ctx, r, logger, comments.Options{ExpireInterval: time.Hour})
	cache.Refresh()
	t.Cleanup(func() {
		_ = cache.Close()
		cancel()
	})

	engine := notification.NewEngine(r, tasks, logger)
	server := NewServer(r, cache, engine, logger, Config{Listen: "localhost:0", RequestTimeout: time.Second})

	return &testServer{handler: server.Handler(), engine: engine, sent: sent}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	return rec
}

func TestServer_CommentRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/v1/comments", AddCommentRequest{
		Host:    "web01",
		Service: "ping",
		Type:    types.CommentAcknowledgement,
		Author:  "icingaadmin",
		Text:    "working on it",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var added AddCommentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&added))
	require.NotEmpty(t, added.ID)
	require.Equal(t, 1, added.LegacyID)

	for _, path := range []string{"/v1/comments/" + added.ID, "/v1/comments/legacy/" + strconv.Itoa(added.LegacyID)} {
		rec = ts.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Equal(t, added.ID, got["id"])
		require.Equal(t, "icingaadmin", got["author"])
		require.Equal(t, "working on it", got["text"])
		require.Equal(t, float64(types.CommentAcknowledgement), got["entry_type"])
		require.Equal(t, "web01", got["host"])
		require.Equal(t, "ping", got["service"])
		require.Nil(t, got["expire_time"])
	}

	rec = ts.do(t, http.MethodDelete, "/v1/comments/legacy/"+strconv.Itoa(added.LegacyID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/comments/"+added.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/v1/comments/legacy/"+strconv.Itoa(added.LegacyID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AddCommentErrors(t *testing.T) {
	ts := newTestServer(t)

	subtests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed", "{", http.StatusBadRequest},
		{"missing_author", AddCommentRequest{Host: "web01", Type: types.CommentUser, Text: "x"}, http.StatusBadRequest},
		{"bad_type", `{"host":"web01","type":7,"author":"a","text":"x"}`, http.StatusBadRequest},
		{"missing_type", `{"host":"web01","author":"a","text":"x"}`, http.StatusBadRequest},
		{"unknown_host", AddCommentRequest{Host: "web02", Type: types.CommentUser, Author: "a", Text: "x"}, http.StatusNotFound},
		{"unknown_service", AddCommentRequest{Host: "web01", Service: "http", Type: types.CommentUser, Author: "a", Text: "x"}, http.StatusNotFound},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/v1/comments", st.body)
			require.Equal(t, st.status, rec.Code, rec.Body.String())
			require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServer_RemoveComments(t *testing.T) {
	ts := newTestServer(t)

	var ids []string
	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/v1/comments", AddCommentRequest{
			Host: "web01", Type: types.CommentUser, Author: "a", Text: "x",
			ExpireTime: types.UnixMilli(time.Now().Add(time.Hour)),
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var added AddCommentResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&added))
		ids = append(ids, added.ID)
	}

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/v1/comments/does-not-exist", nil).Code)
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/v1/comments/"+ids[0], nil).Code)
	require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/v1/comments/"+ids[0], nil).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/v1/comments/"+ids[1], nil).Code)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/v1/hosts/web01/comments", nil).Code)
	require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/v1/comments/"+ids[1], nil).Code)

	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/v1/hosts/web01/services/ping/comments", nil).Code)
	require.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/v1/hosts/web02/comments", nil).Code)
	require.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/v1/comments/legacy/one", nil).Code)
}

func TestServer_SendNotification(t *testing.T) {
	ts := newTestServer(t)

	subtests := []struct {
		name   string
		path   string
		body   string
		status int
		sent   int32
	}{
		{"send", "/v1/notifications/mail/send", `{"type":"PROBLEM"}`, http.StatusAccepted, 1},
		{"unknown_notification", "/v1/notifications/sms/send", `{"type":"PROBLEM"}`, http.StatusNotFound, 0},
		{"unknown_user", "/v1/notifications/broken/send", `{"type":"PROBLEM"}`, http.StatusNotFound, 0},
		{"bad_type", "/v1/notifications/mail/send", `{"type":"OOPS"}`, http.StatusBadRequest, 0},
		{"missing_type", "/v1/notifications/mail/send", `{}`, http.StatusBadRequest, 0},
		{"notify_service", "/v1/hosts/web01/services/ping/notify", `{"type":"RECOVERY"}`, http.StatusAccepted, 1},
		{"notify_host", "/v1/hosts/web01/notify", `{"type":"RECOVERY"}`, http.StatusNotFound, 0},
		{"notify_unknown_service", "/v1/hosts/web01/services/http/notify", `{"type":"RECOVERY"}`, http.StatusNotFound, 0},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			before := ts.sent.Load()

			rec := ts.do(t, http.MethodPost, st.path, st.body)
			require.Equal(t, st.status, rec.Code, rec.Body.String())

			ts.engine.Wait()
			require.Equal(t, st.sent, ts.sent.Load()-before)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "icingacore_comments_cached"))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, (&Config{Listen: ":5680", RequestTimeout: time.Second}).Validate())
	require.Error(t, (&Config{RequestTimeout: time.Second}).Validate())
	require.Error(t, (&Config{Listen: ":5680"}).Validate())
}
