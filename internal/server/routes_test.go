package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/core"
	"resumechat/internal/storage"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// fakeUpstream emulates the assistant and completion endpoints and counts calls
type fakeUpstream struct {
	calls      atomic.Int32
	cancels    atomic.Int32
	runStatus  string // terminal status returned by run polls
	reply      string
	failStatus int // when non-zero every call fails with this status
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	w.Header().Set(core.HeaderContentType, core.ContentTypeJSON)

	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		_, _ = io.WriteString(w, `{"error":{"message":"boom"}}`)
		return
	}

	switch {
	case r.URL.Path == "/threads":
		_, _ = io.WriteString(w, `{"id":"thread_1"}`)
	case r.URL.Path == "/threads/thread_1/runs":
		_, _ = io.WriteString(w, `{"id":"run_1","status":"queued"}`)
	case r.URL.Path == "/threads/thread_1/runs/run_1":
		_, _ = io.WriteString(w, `{"id":"run_1","status":"`+f.runStatus+`"}`)
	case r.URL.Path == "/threads/thread_1/runs/run_1/cancel":
		f.cancels.Add(1)
		_, _ = io.WriteString(w, `{"id":"run_1","status":"cancelling"}`)
	case r.URL.Path == "/threads/thread_1/messages":
		_, _ = io.WriteString(w, `{"data":[{"content":[{"type":"text","text":{"value":"`+f.reply+`"}}]}]}`)
	case r.URL.Path == "/chat/completions":
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"`+f.reply+`"}}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeTestSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html": "<h1>Jake</h1>",
		"about.html": "<h1>About</h1>",
		"styles.css": "body { color: #333; }\n",
		".env":       "RESUME_AI_KEY=secret",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), core.FilePermissionReadWrite); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, chat config.ChatSettings) *Server {
	t.Helper()

	st := storage.NewFileStorage(filepath.Join(t.TempDir(), "stats.json"))
	cfg := config.ServerConfig{
		Port:    "0",
		GinMode: "test",
		Chat:    chat,
		Static: config.StaticSettings{
			Root:      writeTestSite(t),
			CleanURLs: true,
		},
		CORSAllowOrigins: []string{"*"},
		MaxChatBodySize:  core.MaxChatBodySize,
		HTTPClientSettings: config.HTTPClientSettings{
			MaxIdleConns:        1,
			MaxIdleConnsPerHost: 1,
			MaxConnsPerHost:     1,
			IdleConnTimeout:     time.Second,
			TLSHandshakeTimeout: time.Second,
			RequestTimeout:      5 * time.Second,
		},
		Storage: st,
		Logger:  &core.NopLogger{},
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	t.Cleanup(func() {
		_ = server.Close()
		_ = st.Close()
	})

	return server
}

func assistantSettings(baseURL string) config.ChatSettings {
	return config.ChatSettings{
		APIKey:       "sk-test",
		Protocol:     core.ProtocolAssistant,
		AssistantID:  core.DefaultAssistantID,
		BaseURL:      baseURL,
		PollInterval: time.Millisecond,
		MaxPollWait:  2 * time.Second,
	}
}

func serve(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := sonic.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %q", w.Body.String())
	}
	return out
}

func TestChat_InvalidRequestsNeverReachUpstream(t *testing.T) {
	up := &fakeUpstream{runStatus: core.RunStatusCompleted, reply: "Hi"}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"message":`, core.MsgInvalidJSON},
		{"empty object", `{}`, core.MsgMessageRequired},
		{"empty body", ``, core.MsgMessageRequired},
		{"blank message", `{"message":"   "}`, core.MsgMessageRequired},
		{"non-string message", `{"message":42}`, core.MsgMessageRequired},
		{"array body", `["hello"]`, core.MsgMessageRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, http.MethodPost, core.RouteChat, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeBody(t, w)["error"]; got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}
		})
	}

	if n := up.calls.Load(); n != 0 {
		t.Errorf("upstream calls = %d, want 0", n)
	}
}

func TestChat_NoAPIKey(t *testing.T) {
	up := &fakeUpstream{}
	fake := httptest.NewServer(up)
	defer fake.Close()

	settings := assistantSettings(fake.URL)
	settings.APIKey = ""
	s := newTestServer(t, settings)

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgServiceUnavailable {
		t.Errorf("error = %q", got)
	}
	if n := up.calls.Load(); n != 0 {
		t.Errorf("upstream calls = %d, want 0", n)
	}
}

func TestChat_AssistantSuccess(t *testing.T) {
	up := &fakeUpstream{runStatus: core.RunStatusCompleted, reply: "Hi there"}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"message":"Hi there"}` {
		t.Errorf("body = %s", w.Body.String())
	}
	if ct := w.Header().Get(core.HeaderContentType); ct != core.ContentTypeJSONUTF8 {
		t.Errorf("content type = %q", ct)
	}
}

func TestChat_EmptyReplyUsesFallback(t *testing.T) {
	up := &fakeUpstream{runStatus: core.RunStatusCompleted, reply: ""}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeBody(t, w)["message"]; got != core.DefaultFallbackReply {
		t.Errorf("message = %q", got)
	}
}

func TestChat_UpstreamErrorForwarded(t *testing.T) {
	up := &fakeUpstream{failStatus: http.StatusUnauthorized}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "boom" {
		t.Errorf("error = %q, want boom", got)
	}
}

func TestChat_RunFailed(t *testing.T) {
	up := &fakeUpstream{runStatus: "failed"}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgRunFailed {
		t.Errorf("error = %q", got)
	}
}

func TestChat_PollTimeout(t *testing.T) {
	up := &fakeUpstream{runStatus: core.RunStatusInProgress}
	fake := httptest.NewServer(up)
	defer fake.Close()

	settings := assistantSettings(fake.URL)
	settings.MaxPollWait = 30 * time.Millisecond
	s := newTestServer(t, settings)

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgRunTimeout {
		t.Errorf("error = %q", got)
	}
	if up.cancels.Load() != 1 {
		t.Errorf("cancel calls = %d, want 1", up.cancels.Load())
	}
}

func TestChat_TransportFailure(t *testing.T) {
	fake := httptest.NewServer(&fakeUpstream{})
	url := fake.URL
	fake.Close()
	s := newTestServer(t, assistantSettings(url))

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgBadGateway {
		t.Errorf("error = %q", got)
	}
}

func TestChat_CompletionProtocol(t *testing.T) {
	up := &fakeUpstream{reply: "Go and TypeScript"}
	fake := httptest.NewServer(up)
	defer fake.Close()

	settings := assistantSettings(fake.URL)
	settings.Protocol = core.ProtocolCompletion
	settings.Model = core.DefaultModel
	s := newTestServer(t, settings)

	w := serve(s, http.MethodPost, core.RouteChat, `{"message":"Skills?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeBody(t, w)["message"]; got != "Go and TypeScript" {
		t.Errorf("message = %q", got)
	}
	if n := up.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestChat_BodyTooLarge(t *testing.T) {
	up := &fakeUpstream{}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	big := `{"message":"` + strings.Repeat("a", core.MaxChatBodySize) + `"}`
	w := serve(s, http.MethodPost, core.RouteChat, big)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if got := w.Header().Get(core.HeaderConnection); got != core.ConnectionClose {
		t.Errorf("Connection = %q, want close", got)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgBodyTooLarge {
		t.Errorf("error = %q", got)
	}
	if n := up.calls.Load(); n != 0 {
		t.Errorf("upstream calls = %d, want 0", n)
	}
}

func TestAssets(t *testing.T) {
	s := newTestServer(t, config.ChatSettings{})

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"root serves index", http.MethodGet, "/", http.StatusOK, "text/html; charset=utf-8", "<h1>Jake</h1>"},
		{"clean url", http.MethodGet, "/about", http.StatusOK, "text/html; charset=utf-8", "<h1>About</h1>"},
		{"stylesheet", http.MethodGet, "/styles.css", http.StatusOK, "text/css; charset=utf-8", "body { color: #333; }\n"},
		{"query string ignored", http.MethodGet, "/styles.css?v=2", http.StatusOK, "text/css; charset=utf-8", "body { color: #333; }\n"},
		{"missing file", http.MethodGet, "/missing.png", http.StatusNotFound, core.ContentTypeTextUTF8, core.MsgNotFound},
		{"escape", http.MethodGet, "/..%2fsecret", http.StatusForbidden, core.ContentTypeTextUTF8, core.MsgForbidden},
		{"dotfile", http.MethodGet, "/.env", http.StatusNotFound, core.ContentTypeTextUTF8, core.MsgNotFound},
		{"chat path with GET", http.MethodGet, core.RouteChat, http.StatusNotFound, core.ContentTypeTextUTF8, core.MsgNotFound},
		{"other methods fall through", http.MethodDelete, "/about", http.StatusOK, "text/html; charset=utf-8", "<h1>About</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, tt.method, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get(core.HeaderContentType); ct != tt.wantType {
				t.Errorf("content type = %q, want %q", ct, tt.wantType)
			}
			if !bytes.Equal(w.Body.Bytes(), []byte(tt.wantBody)) {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAssets_Head(t *testing.T) {
	s := newTestServer(t, config.ChatSettings{})

	w := serve(s, http.MethodHead, "/styles.css", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Length"); got != "22" {
		t.Errorf("Content-Length = %q, want 22", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD body should be empty, got %q", w.Body.String())
	}
}

func TestHealthAndStats(t *testing.T) {
	up := &fakeUpstream{runStatus: core.RunStatusCompleted, reply: "Hi"}
	fake := httptest.NewServer(up)
	defer fake.Close()
	s := newTestServer(t, assistantSettings(fake.URL))

	w := serve(s, http.MethodGet, core.RouteHealth, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	health := decodeBody(t, w)
	if health["status"] != "healthy" || health["chat"] != "enabled" || health["protocol"] != core.ProtocolAssistant {
		t.Errorf("health = %v", health)
	}

	serve(s, http.MethodPost, core.RouteChat, `{"message":"Hello"}`)
	serve(s, http.MethodPost, core.RouteChat, `{}`)

	w = serve(s, http.MethodGet, core.RouteStats, "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats struct {
		TotalRequests  int64            `json:"totalRequests"`
		FailedRequests int64            `json:"failedRequests"`
		Stats24h       core.PeriodStats `json:"stats24h"`
	}
	if err := sonic.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("stats not JSON: %v", err)
	}
	if stats.TotalRequests != 2 || stats.FailedRequests != 1 || stats.Stats24h.Requests != 2 {
		t.Errorf("stats = %+v", stats)
	}

	w = serve(s, http.MethodGet, core.RouteMetrics, "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	for _, series := range []string{"resumechat_chat_requests_total", "resumechat_upstream_calls_total", "resumechat_run_polls"} {
		if !strings.Contains(w.Body.String(), series) {
			t.Errorf("metrics missing %s", series)
		}
	}
}

func TestHealth_Disabled(t *testing.T) {
	s := newTestServer(t, config.ChatSettings{})

	health := decodeBody(t, serve(s, http.MethodGet, core.RouteHealth, ""))
	if health["chat"] != "disabled" || health["protocol"] != "disabled" {
		t.Errorf("health = %v", health)
	}
}

func TestPanicRecovery(t *testing.T) {
	s := newTestServer(t, config.ChatSettings{})
	s.router.GET("/boom", func(*gin.Context) { panic("kaput") })

	w := serve(s, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != core.MsgInternalError {
		t.Errorf("error = %q", got)
	}
}
