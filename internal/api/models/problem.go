package models

import (
	"encoding/json"
	"net/http"
)

// Problem is the RFC 7807 body every API error is expressed as.
// Constructors fill in what kind of failure happened; the transport
// layer stamps TraceID and Instance before the body goes out.
type Problem struct {
	// Type is a URI reference identifying the problem type.
	Type string `json:"type"`

	// Title is a short summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`

	// Detail explains this specific occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path that produced the problem.
	Instance string `json:"instance,omitempty"`

	// TraceID correlates the problem with the request logs.
	TraceID string `json:"traceId,omitempty"`

	// Errors pins validation failures to the inputs that caused them.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError describes a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// problemTypeBase is the documentation root all problem type URIs hang off.
const problemTypeBase = "https://api.airwise.in/problems/"

// problemCatalog registers the type URI slug and title for each status
// the API fails with. Statuses outside the catalog fall back to the
// generic about:blank type, per RFC 7807 section 4.2.
var problemCatalog = map[int]struct{ slug, title string }{
	http.StatusBadRequest:           {"validation-error", "Validation error"},
	http.StatusNotFound:             {"not-found", "Not found"},
	http.StatusConflict:             {"conflict", "Conflict"},
	http.StatusUnsupportedMediaType: {"unsupported-media-type", "Unsupported media type"},
	http.StatusTooManyRequests:      {"too-many-requests", "Too many requests"},
	http.StatusInternalServerError:  {"internal-error", "Internal server error"},
	http.StatusServiceUnavailable:   {"service-unavailable", "Service unavailable"},
}

// NewProblem builds a Problem for one of the catalogued statuses.
func NewProblem(status int, detail string) *Problem {
	p := &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if entry, ok := problemCatalog[status]; ok {
		p.Type = problemTypeBase + entry.slug
		p.Title = entry.title
	}
	return p
}

// CustomProblem builds a Problem whose type is not in the catalog.
// The slug is resolved against the shared documentation root.
func CustomProblem(slug, title string, status int, detail string) *Problem {
	return &Problem{
		Type:   problemTypeBase + slug,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// WithField appends one validation error.
func (p *Problem) WithField(field, message, code string) *Problem {
	p.Errors = append(p.Errors, FieldError{Field: field, Message: message, Code: code})
	return p
}

// WithFields attaches a whole validation result.
func (p *Problem) WithFields(errs []FieldError) *Problem {
	p.Errors = append(p.Errors, errs...)
	return p
}

// Send writes the problem with the application/problem+json content
// type. A non-empty TraceID doubles as the X-Request-Id header so
// clients can quote it back.
func (p *Problem) Send(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
