package server

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/jmylchreest/toolshub/internal/mail"
	"github.com/jmylchreest/toolshub/internal/storage"
)

type recordingRelay struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (r *recordingRelay) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

type failingStorage struct{}

func (failingStorage) Health(context.Context) (storage.Status, error) {
	return storage.Status{}, errors.New("disk on fire")
}

func newTestServer(t *testing.T, opts Options, relay mail.Relay) *Server {
	t.Helper()
	if opts.StaticDir == "" {
		opts.StaticDir = t.TempDir()
	}
	if relay == nil {
		relay = &recordingRelay{}
	}
	return New(opts, storage.NewMemStorage(), relay, nil)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{}, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}

	bad := New(Options{StaticDir: t.TempDir()}, failingStorage{}, &recordingRelay{}, nil)
	if rec := do(t, bad.Handler(), http.MethodGet, "/api/health", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failing storage status = %d", rec.Code)
	}
}

func TestContact(t *testing.T) {
	valid := map[string]string{
		"name":    "<b>Ada</b>",
		"email":   "ada@example.com",
		"subject": "Pricing",
		"message": "<i>Hi</i> & bye",
	}

	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantError string
	}{
		{name: "valid", body: valid, wantCode: http.StatusOK},
		{
			name:      "missing field",
			body:      map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi"},
			wantCode:  http.StatusBadRequest,
			wantError: "All fields are required",
		},
		{
			name:      "whitespace only",
			body:      map[string]string{"name": "  ", "email": "ada@example.com", "subject": "Hi", "message": "x"},
			wantCode:  http.StatusBadRequest,
			wantError: "All fields are required",
		},
		{
			name:      "markup only",
			body:      map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "<script>x</script>"},
			wantCode:  http.StatusBadRequest,
			wantError: "All fields are required",
		},
		{
			name:      "bad email",
			body:      map[string]string{"name": "Ada", "email": "not-an-email", "subject": "Hi", "message": "x"},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid email address",
		},
		{
			name:      "malformed json",
			body:      "{not json",
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body",
		},
		{
			name:      "message too long",
			body:      map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": strings.Repeat("a", 11)},
			wantCode:  http.StatusBadRequest,
			wantError: "Message is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := &recordingRelay{}
			s := newTestServer(t, Options{MaxMessageLength: 10, ContactBurst: 10, ContactRatePerMinute: 60}, relay)

			rec := do(t, s.Handler(), http.MethodPost, "/api/contact", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			body := decode(t, rec)
			if tt.wantError != "" {
				if body["error"] != tt.wantError {
					t.Errorf("error = %v, want %q", body["error"], tt.wantError)
				}
				if len(relay.msgs) != 0 {
					t.Errorf("relay received %d messages, want 0", len(relay.msgs))
				}
				return
			}

			if body["success"] != true || body["message"] != successMessage {
				t.Errorf("unexpected body %v", body)
			}
			if len(relay.msgs) != 1 {
				t.Fatalf("relay received %d messages, want 1", len(relay.msgs))
			}
			got := relay.msgs[0]
			want := mail.Message{Name: "Ada", Email: "ada@example.com", Subject: "Pricing", Body: "Hi & bye"}
			if diff := cmp.Diff(want, got, ignoreStamp); diff != "" {
				t.Errorf("relayed message mismatch (-want +got):\n%s", diff)
			}
			if body["id"] != got.ID {
				t.Errorf("response id %v != message id %s", body["id"], got.ID)
			}
		})
	}
}

var ignoreStamp = cmp.FilterPath(func(p cmp.Path) bool {
	name := p.Last().String()
	return name == ".ID" || name == ".ReceivedAt"
}, cmp.Ignore())

func TestContactRateLimit(t *testing.T) {
	s := newTestServer(t, Options{ContactRatePerMinute: 1, ContactBurst: 2}, nil)
	body := map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "x"}

	for i := range 2 {
		if rec := do(t, s.Handler(), http.MethodPost, "/api/contact", body); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s.Handler(), http.MethodPost, "/api/contact", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"B","email":"b@example.com","subject":"s","message":"m"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:4000"
	other := httptest.NewRecorder()
	s.Handler().ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("other client status = %d", other.Code)
	}
}

func TestContactInvalidRequestsKeepAllowance(t *testing.T) {
	s := newTestServer(t, Options{ContactRatePerMinute: 1, ContactBurst: 1}, nil)

	for i := range 5 {
		if rec := do(t, s.Handler(), http.MethodPost, "/api/contact", "{not json"); rec.Code != http.StatusBadRequest {
			t.Fatalf("malformed request %d status = %d, want 400", i, rec.Code)
		}
	}

	body := map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "x"}
	if rec := do(t, s.Handler(), http.MethodPost, "/api/contact", body); rec.Code != http.StatusOK {
		t.Errorf("valid request status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestContactBodyTooLarge(t *testing.T) {
	relay := &recordingRelay{}
	s := newTestServer(t, Options{MaxMessageLength: 1 << 20}, relay)
	body := map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Hi",
		"message": strings.Repeat("a", maxContactBodyBytes+1),
	}

	rec := do(t, s.Handler(), http.MethodPost, "/api/contact", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["error"]; got != "Request body is too large" {
		t.Errorf("error = %v", got)
	}
	if len(relay.msgs) != 0 {
		t.Errorf("relay received %d messages, want 0", len(relay.msgs))
	}
}

func TestContactRelayFailure(t *testing.T) {
	s := newTestServer(t, Options{}, &recordingRelay{err: errors.New("smtp down")})
	body := map[string]string{"name": "Ada", "email": "ada@example.com", "subject": "Hi", "message": "x"}
	if rec := do(t, s.Handler(), http.MethodPost, "/api/contact", body); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestIPLimiterPrunesIdle(t *testing.T) {
	l := newIPLimiter(60, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := range limiterPruneThreshold {
		l.allow(net.IPv4(10, 0, byte(i>>8), byte(i)).String())
	}
	now = now.Add(time.Hour)
	l.allow("192.0.2.99")
	if len(l.entries) != 1 {
		t.Errorf("entries = %d, want 1 after prune", len(l.entries))
	}
}

func TestTemplateDownload(t *testing.T) {
	s := newTestServer(t, Options{}, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/api/templates/download/invoice-basic", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := map[string]any{
		"message":     "Template download endpoint",
		"templateId":  "invoice-basic",
		"downloadUrl": "/templates/invoice-basic.pdf",
	}
	if diff := cmp.Diff(want, decode(t, rec)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	if rec := do(t, s.Handler(), http.MethodGet, "/api/templates/download/Bad_ID", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", rec.Code)
	}
}

func TestSitemapAndRobots(t *testing.T) {
	s := newTestServer(t, Options{BaseURL: "https://tools.example.com/"}, nil)

	rec := do(t, s.Handler(), http.MethodGet, "/sitemap.xml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	var set urlSet
	if err := xml.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("sitemap not valid XML: %v", err)
	}
	if got, want := len(set.URLs), len(staticPages)+len(ToolSlugs); got != want {
		t.Errorf("sitemap has %d urls, want %d", got, want)
	}
	first := sitemapURL{Loc: "https://tools.example.com/", ChangeFreq: "daily", Priority: "1.0"}
	if diff := cmp.Diff(first, set.URLs[0]); diff != "" {
		t.Errorf("first url mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(rec.Body.String(), "<loc>https://tools.example.com/tool/zakat-calculator</loc>") {
		t.Error("sitemap missing zakat-calculator")
	}

	rec = do(t, s.Handler(), http.MethodGet, "/robots.txt", nil)
	for _, want := range []string{"User-agent: *", "Disallow: /api/", "Sitemap: https://tools.example.com/sitemap.xml"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("robots.txt missing %q", want)
		}
	}
}

func TestStaticAndFallback(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "index.html"), "<html>app</html>")
	mustWrite(t, filepath.Join(root, "assets", "app.js"), "console.log(1)")
	mustWrite(t, filepath.Join(filepath.Dir(root), "secret.txt"), "nope")

	s := newTestServer(t, Options{StaticDir: root}, nil)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/assets/app.js", http.StatusOK, "console.log(1)"},
		{"/tool/color-picker", http.StatusOK, "<html>app</html>"},
		{"/../secret.txt", http.StatusOK, "<html>app</html>"},
		{"/api/unknown", http.StatusNotFound, `{"error":"Not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}

	empty := newTestServer(t, Options{}, nil)
	if rec := do(t, empty.Handler(), http.MethodGet, "/anything", nil); rec.Code != http.StatusNotFound {
		t.Errorf("no index.html status = %d, want 404", rec.Code)
	}
}

func TestServeGracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestServer(t, Options{ShutdownTimeout: 2 * time.Second}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/health")
	if err != nil {
		cancel()
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
