package http

import (
	"encoding/json"
	"io"
	"net/http"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response writes the JSON documents served by the inspection endpoints.
type Response struct {
	w      http.ResponseWriter
	indent string
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Indent makes the following JSON bodies human readable.
//
//	res.Indent("  ").Success(reg)
func (res *Response) Indent(indent string) *Response {
	res.indent = indent
	return res
}

// JSON sends data encoded as JSON.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	enc := json.NewEncoder(res.w)
	enc.SetIndent("", res.indent)
	_ = enc.Encode(data)
}

// Stream sends a 200 whose body is written by fn. Errors of fn are returned
// as is: the status line is already gone.
//
//	res.Stream("application/json", func(w io.Writer) error { metrics.WriteJSONOnce(reg, w); return nil })
func (res *Response) Stream(contentType string, fn func(io.Writer) error) error {
	res.w.Header().Set("Content-Type", contentType)
	res.w.WriteHeader(http.StatusOK)
	return fn(res.w)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Error sends {"message": message} with status.
//
//	res.Error(http.StatusConflict, "cycle")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// Unauthorized sends 401 with a Bearer challenge.
func (res *Response) Unauthorized(message ...string) {
	res.w.Header().Set("WWW-Authenticate", `Bearer realm="inspect"`)
	res.Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
