package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seamline/pkg/cache"
	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/httputil"
	"github.com/matzehuels/seamline/pkg/observability"
	"github.com/matzehuels/seamline/pkg/pipeline"
	"github.com/matzehuels/seamline/pkg/store"
)

func skirtJSON(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "pattern", "testdata", "skirt", "specification.json"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(fc, nil, logger)
	ts := httptest.NewServer(New(st, runner, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestPatternLifecycle(t *testing.T) {
	ts := newTestServer(t)
	spec := string(skirtJSON(t))

	resp := do(t, http.MethodGet, ts.URL+"/patterns", "")
	if got := decode[[]store.Summary](t, resp); len(got) != 0 {
		t.Fatalf("empty store lists %v", got)
	}

	resp = do(t, http.MethodPut, ts.URL+"/patterns/skirt", spec)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}
	created := decode[store.Summary](t, resp)
	if created.Name != "skirt" || created.Panels != 2 || created.Parameters != 3 {
		t.Errorf("created = %+v", created)
	}
	if resp.Header.Get(HeaderRevision) != created.Revision {
		t.Errorf("revision header = %q, want %q", resp.Header.Get(HeaderRevision), created.Revision)
	}

	resp = do(t, http.MethodPut, ts.URL+"/patterns/skirt", spec)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("second PUT status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/patterns/skirt", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	doc := decode[struct {
		Name string `json:"name"`
		Spec struct {
			Properties map[string]any `json:"properties"`
		} `json:"spec"`
	}](t, resp)
	if doc.Name != "skirt" || doc.Spec.Properties["curvature_coords"] != "relative" {
		t.Errorf("document = %+v", doc)
	}

	resp = do(t, http.MethodGet, ts.URL+"/patterns", "")
	var names []string
	for _, s := range decode[[]store.Summary](t, resp) {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"skirt"}, names); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}

	resp = do(t, http.MethodDelete, ts.URL+"/patterns/skirt", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/patterns/skirt", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", resp.StatusCode)
	}
	if body := decode[httputil.ErrorBody](t, resp); body.Code != errors.ErrCodeNotFound {
		t.Errorf("error body = %+v", body)
	}
}

func TestRenderStoredPattern(t *testing.T) {
	ts := newTestServer(t)
	do(t, http.MethodPut, ts.URL+"/patterns/skirt", string(skirtJSON(t)))

	resp := do(t, http.MethodPost, ts.URL+"/patterns/skirt/render", `{"values": {"length": "1.2"}, "format": "svg"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(HeaderCache) != "miss" || resp.Header.Get(HeaderInstance) == "" {
		t.Errorf("headers = %v", resp.Header)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("<svg")) && !bytes.HasPrefix(body, []byte("<?xml")) {
		t.Errorf("body = %.60q", body)
	}

	again := do(t, http.MethodPost, ts.URL+"/patterns/skirt/render", `{"values": {"length": "1.2"}, "format": "svg"}`)
	if again.Header.Get(HeaderCache) != "hit" {
		t.Errorf("second render cache = %q, want hit", again.Header.Get(HeaderCache))
	}

	png := do(t, http.MethodPost, ts.URL+"/patterns/skirt/render", `{"formats": ["png"], "scale": 1}`)
	if png.StatusCode != http.StatusOK || png.Header.Get("Content-Type") != "image/png" {
		t.Errorf("png render = %d %q", png.StatusCode, png.Header.Get("Content-Type"))
	}

	def := do(t, http.MethodPost, ts.URL+"/patterns/skirt/render", "")
	if def.StatusCode != http.StatusOK || def.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("default render = %d %q", def.StatusCode, def.Header.Get("Content-Type"))
	}
}

func TestRenderInline(t *testing.T) {
	ts := newTestServer(t)
	body, err := json.Marshal(map[string]any{
		"spec":   json.RawMessage(skirtJSON(t)),
		"name":   "preview",
		"format": "json",
	})
	if err != nil {
		t.Fatal(err)
	}
	resp := do(t, http.MethodPost, ts.URL+"/render", string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decode[struct {
		Name   string `json:"name"`
		Panels []any  `json:"panels"`
	}](t, resp)
	if out.Name != "preview" || len(out.Panels) != 2 {
		t.Errorf("json artifact = %+v", out)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t)
	do(t, http.MethodPut, ts.URL+"/patterns/skirt", string(skirtJSON(t)))

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  errors.Code
	}{
		{"MissingPattern", http.MethodPost, "/patterns/shirt/render", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"UnknownParameter", http.MethodPost, "/patterns/skirt/render", `{"values": {"sleeve": "1"}}`, http.StatusBadRequest, errors.ErrCodeUnknownParameter},
		{"BadFormat", http.MethodPost, "/patterns/skirt/render", `{"format": "gif"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"TwoFormats", http.MethodPost, "/patterns/skirt/render", `{"formats": ["svg", "png"]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"UnknownField", http.MethodPost, "/patterns/skirt/render", `{"colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"InlineOnStored", http.MethodPost, "/patterns/skirt/render", `{"spec": {}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"InlineMissingSpec", http.MethodPost, "/render", `{"format": "svg"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"BadName", http.MethodPut, "/patterns/.hidden", string(skirtJSON(t)), http.StatusBadRequest, errors.ErrCodeInvalidName},
		{"BadSpec", http.MethodPut, "/patterns/broken", `{"pattern":`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if body := decode[httputil.ErrorBody](t, resp); body.Code != tt.wantErr {
				t.Errorf("code = %s, want %s (%s)", body.Code, tt.wantErr, body.Error)
			}
		})
	}
}

func TestServerHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	hooks := &recordingServerHooks{done: make(chan string, 1)}
	observability.SetServerHooks(hooks)

	ts := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/patterns/none", "")

	select {
	case route := <-hooks.done:
		if route != "GET /patterns/{name} 404" {
			t.Errorf("response event = %q", route)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no response event")
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(st, pipeline.NewRunner(nil, nil, log.New(io.Discard)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil after shutdown", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	done chan string
}

func (h *recordingServerHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.done <- method + " " + route + " " + strconv.Itoa(status)
}
