// Package assets fingerprints static files so they can be cached indefinitely.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

const fingerprintLen = 8

// AssetResolver maps logical asset names ("css/app.css") to versioned URLs
// ("/static/css/app.css?v=1a2b3c4d"). Versions are content hashes computed once from the
// static filesystem. A nil resolver, or one in dev mode, returns unversioned URLs.
type AssetResolver struct {
	mu       sync.RWMutex
	versions map[string]string
}

// NewAssetResolver hashes every regular file in fsys.
func NewAssetResolver(fsys fs.FS) (*AssetResolver, error) {
	versions := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		sum := sha256.Sum256(b)
		versions[p] = hex.EncodeToString(sum[:])[:fingerprintLen]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fingerprint static assets: %w", err)
	}
	return &AssetResolver{versions: versions}, nil
}

// Resolve returns the URL for a logical asset name.
func (ar *AssetResolver) Resolve(logicalName string) string {
	name := strings.TrimPrefix(path.Clean("/"+logicalName), "/")
	u := "/static/" + name
	if ar == nil {
		return u
	}
	ar.mu.RLock()
	v, ok := ar.versions[name]
	ar.mu.RUnlock()
	if !ok {
		return u
	}
	return u + "?v=" + v
}

// Version returns the fingerprint for name and whether it is known.
func (ar *AssetResolver) Version(name string) (string, bool) {
	if ar == nil {
		return "", false
	}
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	v, ok := ar.versions[strings.TrimPrefix(name, "/")]
	return v, ok
}

// ResolveAsset resolves name, skipping fingerprints in dev mode so edits show up on reload.
func ResolveAsset(ar *AssetResolver, name string, devMode bool) string {
	if devMode {
		return (*AssetResolver)(nil).Resolve(name)
	}
	return ar.Resolve(name)
}
