// Package assets exposes static asset helpers to templates.
package assets

import (
	"html/template"

	httpassets "github.com/debate-club/portal/internal/http/assets"
)

// Options configures asset-related template helpers.
type Options struct {
	Resolver *httpassets.AssetResolver
	DevMode  bool
}

// Funcs returns the "asset" helper, which maps a logical name to its versioned URL.
func Funcs(opts Options) template.FuncMap {
	return template.FuncMap{
		"asset": func(logicalName string) string {
			return httpassets.ResolveAsset(opts.Resolver, logicalName, opts.DevMode)
		},
	}
}
