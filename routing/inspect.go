package routing

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/luci/go-render/render"
	"github.com/rcrowley/go-metrics"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/providers"
	gohttp "github.com/km-arc/go-inject/http"
)

// Source is what the inspection endpoints read. Factories, Resources and
// Tags may be nil.
type Source struct {
	Container *container.Container
	Factories *providers.FactoryProvider
	Resources *providers.ResourceProvider
	Tags      *providers.TagProvider
}

// Inspect returns a read-only router describing src:
//
//	GET /providers             providers in consultation order, factory keys, namespaces
//	GET /singletons            cached keys and the type of their value
//	GET /tags                  tag names
//	GET /tags/{name}           keys tagged name, without resolving them
//	GET /metrics.json          go-metrics registry (?pretty=true)
//	GET /resolve/{key}         resolves a string key (?arg=a&kwarg=name=b builds it)
//	POST /resolve              resolves {"key": ..., "args": [...], "kwargs": {...}}
//
// Resolving caches singletons like any other Get.
func Inspect(src Source) *Router {
	h := &inspector{src: src}
	r := New()
	r.Get("/providers", h.providers)
	r.Get("/singletons", h.singletons)
	r.Get("/tags", h.tagNames)
	r.Get("/tags/{name}", h.tagMembers)
	r.Get("/metrics.json", h.metrics)
	r.Get("/resolve/{key}", h.resolveQuery)
	r.Post("/resolve", h.resolveBody)
	return r
}

type inspector struct {
	src Source
}

func (h *inspector) providers(w http.ResponseWriter, _ *http.Request) {
	out := map[string]any{}

	var names []string
	for _, p := range h.src.Container.Providers() {
		names = append(names, fmt.Sprintf("%T", p))
	}
	out["providers"] = names

	if h.src.Factories != nil {
		var keys []string
		for _, k := range h.src.Factories.Keys() {
			keys = append(keys, container.Describe(k))
		}
		out["factories"] = keys
	}
	if h.src.Resources != nil {
		out["namespaces"] = h.src.Resources.Namespaces()
	}
	gohttp.NewResponse(w).Success(out)
}

func (h *inspector) singletons(w http.ResponseWriter, _ *http.Request) {
	out := map[string]string{}
	for k, v := range h.src.Container.Singletons() {
		out[container.Describe(k)] = fmt.Sprintf("%T", v)
	}
	gohttp.NewResponse(w).Success(out)
}

func (h *inspector) tagNames(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	if h.src.Tags != nil {
		names = append(names, h.src.Tags.TagNames()...)
	}
	gohttp.NewResponse(w).Success(names)
}

type taggedKey struct {
	Key string `json:"key"`
	Tag string `json:"tag"`
}

func (h *inspector) tagMembers(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	if h.src.Tags == nil {
		res.NotFound()
		return
	}
	name := gohttp.NewRequest(r).RouteParam("name")
	keys, tags := h.src.Tags.Members(name)
	if len(keys) == 0 {
		res.NotFound(fmt.Sprintf("no dependency tagged %q", name))
		return
	}
	out := make([]taggedKey, len(keys))
	for i := range keys {
		out[i] = taggedKey{Key: container.Describe(keys[i]), Tag: tags[i].String()}
	}
	res.Success(out)
}

func (h *inspector) metrics(w http.ResponseWriter, r *http.Request) {
	reg := h.src.Container.Metrics().Registry()
	res := gohttp.NewResponse(w)
	if gohttp.NewRequest(r).QueryBool("pretty") {
		res.Indent("  ").JSON(http.StatusOK, reg)
		return
	}
	_ = res.Stream("application/json; charset=utf-8", func(out io.Writer) error {
		metrics.WriteJSONOnce(reg, out)
		return nil
	})
}

func (h *inspector) resolveQuery(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	kwargs, err := req.QueryPairs("kwarg")
	if err != nil {
		gohttp.NewResponse(w).Error(http.StatusBadRequest, err.Error())
		return
	}
	args := req.QueryAll("arg")

	var key container.Key = req.RouteParam("key")
	if len(args) > 0 || len(kwargs) > 0 {
		positional := make([]any, len(args))
		for i, a := range args {
			positional[i] = a
		}
		b := container.NewBuild(key, positional...)
		for name, v := range kwargs {
			b = b.With(name, v)
		}
		key = b
	}
	h.resolve(w, key)
}

type resolveRequest struct {
	Key    string         `json:"key"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

func (h *inspector) resolveBody(w http.ResponseWriter, r *http.Request) {
	var body resolveRequest
	if err := gohttp.NewRequest(r).Bind(&body); err != nil {
		gohttp.NewResponse(w).Error(http.StatusBadRequest, err.Error())
		return
	}
	if body.Key == "" {
		gohttp.NewResponse(w).Error(http.StatusBadRequest, "missing key")
		return
	}
	h.resolve(w, container.Build{ID: body.Key, Args: body.Args, Kwargs: body.Kwargs})
}

func (h *inspector) resolve(w http.ResponseWriter, key container.Key) {
	res := gohttp.NewResponse(w)
	v, err := h.src.Container.Get(key)
	if err != nil {
		var (
			failed   *container.InstantiationError
			cycle    *container.CycleError
			notFound *container.NotFoundError
		)
		// a provider failing on a missing dependency is a server error, only
		// the requested key itself being unknown is a 404.
		switch {
		case errors.As(err, &failed):
			res.ServerError(err.Error())
		case errors.As(err, &cycle):
			res.Error(http.StatusConflict, err.Error())
		case errors.As(err, &notFound):
			res.NotFound(err.Error())
		default:
			res.ServerError(err.Error())
		}
		return
	}
	res.Success(map[string]string{
		"key":   container.Describe(key),
		"type":  fmt.Sprintf("%T", v),
		"value": render.Render(v),
	})
}
