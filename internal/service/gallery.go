package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

// GalleryServiceOptions groups dependencies for GalleryService.
type GalleryServiceOptions struct {
	Store  ports.GalleryStore
	Logger *slog.Logger
}

// GalleryService lists and curates gallery images.
type GalleryService struct {
	store  ports.GalleryStore
	logger *slog.Logger
}

// NewGalleryService constructs a GalleryService.
func NewGalleryService(opts GalleryServiceOptions) *GalleryService {
	if opts.Store == nil {
		panic("GalleryStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryService{store: opts.Store, logger: logger}
}

// List returns every image in gallery order.
func (s *GalleryService) List(ctx context.Context) ([]model.GalleryImage, error) {
	imgs, err := s.store.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return imgs, nil
}

// LightboxView is one image opened in the viewer with its neighbours.
type LightboxView struct {
	Image    model.GalleryImage
	Position model.Lightbox
	PrevID   string
	NextID   string
}

// Lightbox opens the viewer at index. Navigation wraps at both ends.
func (s *GalleryService) Lightbox(ctx context.Context, index int) (LightboxView, error) {
	imgs, err := s.List(ctx)
	if err != nil {
		return LightboxView{}, err
	}
	pos, ok := model.NewLightbox(index, len(imgs))
	if !ok {
		return LightboxView{}, apperrors.NotFound("Image not found.")
	}
	return LightboxView{
		Image:    imgs[pos.Index],
		Position: pos,
		PrevID:   imgs[pos.Prev()].ID,
		NextID:   imgs[pos.Next()].ID,
	}, nil
}

// Add registers a hosted image.
func (s *GalleryService) Add(ctx context.Context, sess Session, req model.AddImageRequest) (model.GalleryImage, error) {
	img, err := withToken(ctx, sess, func(token string) (model.GalleryImage, error) {
		return s.store.AddImage(ctx, token, req)
	})
	if err != nil {
		return model.GalleryImage{}, fmt.Errorf("add image: %w", err)
	}
	s.logger.InfoContext(ctx, "gallery image added", "image_id", img.ID)
	return img, nil
}

// Delete removes an image.
func (s *GalleryService) Delete(ctx context.Context, sess Session, id string) error {
	if err := withTokenErr(ctx, sess, func(token string) error {
		return s.store.DeleteImage(ctx, token, id)
	}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	s.logger.InfoContext(ctx, "gallery image deleted", "image_id", id)
	return nil
}
