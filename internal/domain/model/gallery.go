//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// GalleryImage is a photo served by URL.
type GalleryImage struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Caption    string    `json:"caption,omitempty"`
	URL        string    `json:"url"`
	EventID    string    `json:"event_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitzero"`
}

// AddImageRequest registers an already-hosted image in the gallery.
type AddImageRequest struct {
	Title   string `json:"title"              validate:"required,max=200"`
	Caption string `json:"caption,omitempty"  validate:"max=1000"`
	URL     string `json:"url"                validate:"required,url"`
	EventID string `json:"event_id,omitempty"`
}

// Lightbox is the viewer position within a gallery of Count images.
// Navigation wraps around at both ends.
type Lightbox struct {
	Index int
	Count int
}

// NewLightbox reports whether index is within [0, count). An empty gallery is never valid.
func NewLightbox(index, count int) (Lightbox, bool) {
	if count <= 0 || index < 0 || index >= count {
		return Lightbox{}, false
	}
	return Lightbox{Index: index, Count: count}, true
}

// Next returns the index after the current one, wrapping to 0.
func (l Lightbox) Next() int {
	if l.Count == 0 {
		return 0
	}
	return (l.Index + 1) % l.Count
}

// Prev returns the index before the current one, wrapping to Count-1.
func (l Lightbox) Prev() int {
	if l.Count == 0 {
		return 0
	}
	return (l.Index - 1 + l.Count) % l.Count
}

// Position is the 1-based position for display.
func (l Lightbox) Position() int { return l.Index + 1 }
