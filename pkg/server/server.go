// Package server exposes package listings over HTTP as JSON, for admin
// interfaces that render update reports.
//
// # Routes
//
//	GET /healthz                                 build and project information
//	GET /packages?type=library&type=module       listing, filtered by type
//	GET /packages/{vendor}/{name}                one package and its constraint
//	GET /packages/{vendor}/{name}/dependents     who constrains a package
//
// Without a type parameter, /packages uses the server's configured allowed
// types. Errors are returned as {"code": ..., "message": ...} with a status
// derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/bootstrap"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/buildinfo"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/checker"
	"github.com/creative-commoners/silverstripe-composer-update-checker/pkg/composer"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server context is canceled.
const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// AllowedTypes is the default type filter for /packages. Nil lists
	// every type.
	AllowedTypes []string
	Logger       *log.Logger
}

// Server serves listings from a loaded project. The loader must already be
// built; the server only reads from it.
type Server struct {
	loader  *bootstrap.Loader
	allowed []string
	logger  *log.Logger
	router  chi.Router
}

// New creates a Server for l.
func New(l *bootstrap.Loader, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{loader: l, allowed: opts.AllowedTypes, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID(s.logger))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})

	r.Get("/healthz", s.health)
	r.Route("/packages", func(r chi.Router) {
		r.Get("/", s.listPackages)
		r.Get("/{vendor}/{name}", s.getPackage)
		r.Get("/{vendor}/{name}/dependents", s.getDependents)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}

// projectInfo describes where the served listing was loaded from.
type projectInfo struct {
	Manifest  string `json:"manifest"`
	Source    string `json:"source"`
	Installed bool   `json:"installed"`
	LockHash  string `json:"lock_hash,omitempty"`
}

// health handles GET /healthz
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	var project *projectInfo
	if c := s.loader.Composer(); c != nil {
		project = &projectInfo{
			Manifest:  c.ManifestPath(),
			Source:    c.LocalPath(),
			Installed: c.FromInstalled(),
			LockHash:  c.LockHash(),
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
		Project *projectInfo `json:"project,omitempty"`
	}{"ok", buildinfo.Get(), project})
}

// listPackages handles GET /packages
func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	allowed := s.allowed
	if types, ok := r.URL.Query()["type"]; ok {
		allowed = types
	}

	listing, err := s.loader.GetPackages(allowed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// getPackage handles GET /packages/{vendor}/{name}
func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	p, err := s.loader.Package(packageName(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	repo, err := s.loader.Repository()
	if err != nil {
		writeError(w, r, err)
		return
	}

	constraint, ok := checker.StrictestConstraint(repo, p.Name)
	writeJSON(w, http.StatusOK, checker.Entry{Package: p, Constraint: constraint, Constrained: ok})
}

type dependentJSON struct {
	Name       string            `json:"name"`
	Version    string            `json:"version,omitempty"`
	Constraint string            `json:"constraint"`
	Kind       composer.LinkKind `json:"kind"`
}

// getDependents handles GET /packages/{vendor}/{name}/dependents
func (s *Server) getDependents(w http.ResponseWriter, r *http.Request) {
	name := packageName(r)
	deps, err := s.loader.Dependents(name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]dependentJSON, 0, len(deps))
	for _, d := range deps {
		out = append(out, dependentJSON{
			Name:       d.Package.PrettyName,
			Version:    d.Package.PrettyVersion,
			Constraint: d.Link.Constraint,
			Kind:       d.Link.Kind,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"package":    name,
		"dependents": out,
		"count":      len(out),
	})
}

func packageName(r *http.Request) string {
	return chi.URLParam(r, "vendor") + "/" + chi.URLParam(r, "name")
}
