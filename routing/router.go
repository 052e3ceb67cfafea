package routing

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router is a chi.Router restricted to what the inspection server needs.
type Router struct {
	mux chi.Router
}

// New creates a Router recovering from handler panics. mw runs before every
// route, outermost first.
func New(mw ...func(http.Handler) http.Handler) *Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, middleware.RealIP)
	r.Use(mw...)
	return &Router{mux: r}
}

func (r *Router) Get(pattern string, h http.HandlerFunc)  { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc) { r.mux.Post(pattern, h) }

// Use appends middleware. It must be called before the first route or mount.
func (r *Router) Use(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// Mount serves h under prefix, with the prefix stripped from the routed path.
// An empty prefix or "/" mounts h at the root.
//
//	root.Mount("/debug/inspect", routing.Inspect(src))
func (r *Router) Mount(prefix string, h http.Handler) {
	prefix = "/" + strings.Trim(prefix, "/")
	r.mux.Mount(prefix, h)
}

// Param returns the route parameter key of the request.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying chi mux.
func (r *Router) Handler() http.Handler {
	return r.mux
}
