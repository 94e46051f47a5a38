package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompression(t *testing.T) {
	testContent := strings.Repeat("Resolved: this house would debate. ", 500)

	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		contentType    string
		status         int
		expectGzip     bool
	}{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", contentType: "text/html; charset=utf-8", expectGzip: true},
		{name: "client does not accept gzip", acceptEncoding: "deflate", contentType: "text/html", expectGzip: false},
		{name: "no accept-encoding header", contentType: "text/html", expectGzip: false},
		{name: "gzip refused with q=0", acceptEncoding: "gzip;q=0, br", contentType: "text/html", expectGzip: false},
		{name: "json compresses", acceptEncoding: "gzip", contentType: "application/json", expectGzip: true},
		{name: "images pass through", acceptEncoding: "gzip", contentType: "image/png", expectGzip: false},
		{name: "head passes through", method: http.MethodHead, acceptEncoding: "gzip", contentType: "text/html", expectGzip: false},
		{name: "not modified passes through", acceptEncoding: "gzip", contentType: "text/html", status: http.StatusNotModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Compression(CompressionConfig{Level: gzip.BestSpeed})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", tt.contentType)
					status := tt.status
					if status == 0 {
						status = http.StatusOK
					}
					w.WriteHeader(status)
					if status == http.StatusOK {
						_, _ = w.Write([]byte(testContent))
					}
				}))

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			resp := w.Result()
			defer resp.Body.Close()

			gotGzip := resp.Header.Get("Content-Encoding") == "gzip"
			if gotGzip != tt.expectGzip {
				t.Fatalf("expected gzip=%v, got Content-Encoding %q", tt.expectGzip, resp.Header.Get("Content-Encoding"))
			}
			if !tt.expectGzip {
				return
			}
			if !strings.Contains(resp.Header.Get("Vary"), "Accept-Encoding") {
				t.Error("expected Vary: Accept-Encoding")
			}
			zr, err := gzip.NewReader(resp.Body)
			if err != nil {
				t.Fatalf("gzip reader: %v", err)
			}
			defer zr.Close()
			body, err := io.ReadAll(zr)
			if err != nil {
				t.Fatalf("read gzip body: %v", err)
			}
			if string(body) != testContent {
				t.Error("decompressed body does not match")
			}
		})
	}
}

func TestCompression_SniffsMissingContentType(t *testing.T) {
	handler := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>" + strings.Repeat("x", 2048) + "</body></html>"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("expected sniffed html to be gzipped, got %q", w.Header().Get("Content-Type"))
	}
}

func TestAcceptsGzip(t *testing.T) {
	cases := map[string]bool{
		"":                   false,
		"gzip":               true,
		"GZIP":               true,
		"br, gzip;q=0.5":     true,
		"gzip;q=0":           false,
		"identity, deflate":  false,
		" gzip ; q=1.0 , br": true,
	}
	for header, want := range cases {
		if got := acceptsGzip(header); got != want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", header, got, want)
		}
	}
}
