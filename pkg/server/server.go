// Package server implements the Seamline preview API.
//
// The server keeps pattern templates in a [store.Store] and renders instances
// of them through a [pipeline.Runner]:
//
//	GET    /healthz                   build information
//	GET    /patterns                  stored pattern summaries
//	GET    /patterns/{name}           a stored pattern document
//	PUT    /patterns/{name}           store a pattern spec (request body)
//	DELETE /patterns/{name}           remove a stored pattern
//	POST   /patterns/{name}/render    render an instance of a stored pattern
//	POST   /render                    render an instance of an inline spec
//
// Render requests carry pipeline options as JSON and return the artifact
// itself, with the content type of the requested format:
//
//	{"values": {"length": "1.2"}, "format": "png", "scale": 2}
//
// Every request works on its own copy of the template, so concurrent renders
// of the same pattern never share mutable geometry.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seamline/pkg/buildinfo"
	"github.com/matzehuels/seamline/pkg/errors"
	"github.com/matzehuels/seamline/pkg/httputil"
	"github.com/matzehuels/seamline/pkg/observability"
	"github.com/matzehuels/seamline/pkg/pattern"
	"github.com/matzehuels/seamline/pkg/pipeline"
	"github.com/matzehuels/seamline/pkg/store"
)

// Response headers set on rendered artifacts.
const (
	HeaderInstance = "X-Seamline-Instance"
	HeaderCache    = "X-Seamline-Cache"
	HeaderRevision = "X-Seamline-Revision"
)

// DefaultRenderTimeout bounds a single render request.
const DefaultRenderTimeout = 30 * time.Second

// Server serves the preview API.
type Server struct {
	store   store.Store
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithRenderTimeout overrides [DefaultRenderTimeout].
func WithRenderTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// New creates a server over st and runner. A nil logger discards logs.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{store: st, runner: runner, logger: logger, timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("preview server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down preview server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !goerrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRenderInline)
	r.Get("/patterns", s.handleList)
	r.Get("/patterns/{name}", s.handleGet)
	r.Put("/patterns/{name}", s.handlePut)
	r.Delete("/patterns/{name}", s.handleDelete)
	r.Post("/patterns/{name}/render", s.handleRender)
	return r
}

// observe logs each request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// documentBody is the JSON form of a stored pattern.
type documentBody struct {
	store.Summary
	Spec json.RawMessage `json:"spec"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := pattern.Write(doc.Spec, &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(HeaderRevision, doc.Revision)
	httputil.WriteJSON(w, http.StatusOK, documentBody{Summary: store.Summarize(doc), Spec: buf.Bytes()})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateStoreName(name); err != nil {
		s.fail(w, r, err)
		return
	}
	spec, err := pattern.Read(http.MaxBytesReader(w, r.Body, httputil.MaxBodySize))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	spec.Name = name

	status := http.StatusCreated
	if _, err := s.store.Get(r.Context(), name); err == nil {
		status = http.StatusOK
	}
	doc, err := s.store.Put(r.Context(), name, spec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("stored pattern", "name", name, "revision", doc.Revision)
	w.Header().Set(HeaderRevision, doc.Revision)
	httputil.WriteJSON(w, status, store.Summarize(doc))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderRequest is the body of a render call. Format selects a single output;
// Formats may be used instead as long as it names exactly one.
type renderRequest struct {
	pipeline.Options
	Format string `json:"format,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := s.decodeRender(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Spec) > 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "inline spec not allowed when rendering a stored pattern"))
		return
	}
	req.Template = doc.Spec
	w.Header().Set(HeaderRevision, doc.Revision)
	s.render(w, r, req)
}

func (s *Server) handleRenderInline(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRender(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Spec) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "spec is required"))
		return
	}
	s.render(w, r, req)
}

func (s *Server) decodeRender(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var req renderRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			return pipeline.Options{}, err
		}
	}
	opts := req.Options
	switch {
	case req.Format != "" && len(opts.Formats) > 0:
		return opts, errors.New(errors.ErrCodeInvalidInput, "use either format or formats")
	case req.Format != "":
		opts.Formats = []string{req.Format}
	case len(opts.Formats) > 1:
		return opts, errors.New(errors.ErrCodeInvalidInput, "a render request returns one format, got %d", len(opts.Formats))
	}
	opts.Logger = s.logger
	return opts, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := pipeline.FormatSVG
	if len(opts.Formats) == 1 {
		f = strings.ToLower(strings.TrimSpace(opts.Formats[0]))
	}

	cacheState := "miss"
	if res.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[f])
	w.Header().Set(HeaderInstance, res.InstanceHash)
	w.Header().Set(HeaderCache, cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[f])
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	httputil.WriteError(w, err)
}
