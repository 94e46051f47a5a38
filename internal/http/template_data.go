package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/debate-club/portal/internal/http/ui/viewmodel"
)

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
	r    *http.Request
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func (h *UIHandlers) NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: h.basePageData(r, meta), r: r}
}

// WithPagination adds pagination data, with Prev/Next URLs built from basePath and the
// request's query.
func (b *TemplateDataBuilder) WithPagination(p viewmodel.Pagination, basePath string) *TemplateDataBuilder {
	b.data["Pagination"] = withPageURLs(p, basePath, b.r.URL.Query())
	return b
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	if _, ok := b.data["Errors"]; !ok {
		b.data["Errors"] = map[string]string{}
	}
	return b.data
}

// buildPageURL returns basePath with page set, preserving the other non-empty query
// params and dropping htmx bookkeeping params.
func buildPageURL(basePath string, q url.Values, page int) string {
	qq := make(url.Values, len(q))
	for k, vs := range q {
		if strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") || k == "flash" {
			continue
		}
		for _, v := range vs {
			if strings.TrimSpace(v) != "" {
				qq.Add(k, v)
			}
		}
	}
	qq.Set("page", strconv.Itoa(page))
	return basePath + "?" + qq.Encode()
}

// pageParam parses the 1-based page query param.
func pageParam(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		return n
	}
	return 1
}
