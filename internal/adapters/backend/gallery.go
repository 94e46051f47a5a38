package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/debate-club/portal/internal/domain/model"
)

// ListImages returns the public gallery.
func (c *Client) ListImages(ctx context.Context) ([]model.GalleryImage, error) {
	out := []model.GalleryImage{}
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/gallery", Out: &out})
	return out, err
}

// AddImage registers a hosted image.
func (c *Client) AddImage(ctx context.Context, token string, req model.AddImageRequest) (model.GalleryImage, error) {
	var img model.GalleryImage
	err := c.do(ctx, call{Method: http.MethodPost, Path: "/gallery", Token: token, Body: req, Out: &img})
	return img, err
}

// DeleteImage removes an image.
func (c *Client) DeleteImage(ctx context.Context, token, id string) error {
	return c.do(ctx, call{Method: http.MethodDelete, Path: "/gallery/" + url.PathEscape(id), Token: token})
}
