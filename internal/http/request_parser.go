package http

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"harcama/internal/core"
)

// ListParams holds the list filters read from a query string.
type ListParams struct {
	Category string
	Filter   core.SubscriptionFilter
}

// ParseListParams reads ?category= and ?filter=. Unknown categories mean
// no category filter; unknown filters fall back to all.
func ParseListParams(query url.Values) ListParams {
	category := sanitizeInput(query.Get("category"))
	if !slices.Contains(core.Categories, category) {
		category = ""
	}
	return ListParams{
		Category: category,
		Filter:   core.ParseSubscriptionFilter(sanitizeInput(query.Get("filter"))),
	}
}

// listURL returns path with key=value appended when value is set.
func listURL(path, key, value string) string {
	if value == "" {
		return path
	}
	return path + "?" + url.Values{key: {value}}.Encode()
}

// sanitizedForm returns a copy of values with control characters removed
// from every value.
func sanitizedForm(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		clean := make([]string, len(vs))
		for i, v := range vs {
			clean[i] = sanitizeInput(v)
		}
		out[k] = clean
	}
	return out
}

// sanitizeInput removes control characters except tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Geçersiz istek biçimi")
	}
	return nil
}
