package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalog-console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrImageNotFound = errors.New("image not found")

// PreviewStore makes a locally attached file viewable before it is uploaded.
type PreviewStore interface {
	Stage(ctx context.Context, tempID string, file models.ImageFile) (string, error)
	Release(ctx context.Context, tempID string) error
}

// ImageLedger holds the console's view of every product's images.
type ImageLedger struct {
	mu       sync.RWMutex
	images   map[int64][]models.ProductImage
	previews PreviewStore
	events   *Events
}

func NewImageLedger(previews PreviewStore, events *Events) *ImageLedger {
	return &ImageLedger{
		images:   make(map[int64][]models.ProductImage),
		previews: previews,
		events:   events,
	}
}

// List returns the product's images in order. The result is a copy.
func (l *ImageLedger) List(productID int64) []models.ProductImage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyImages(l.images[productID])
}

// Load replaces the product's images with the server's list.
func (l *ImageLedger) Load(productID int64, server []models.ServerImage) {
	records := make([]models.ProductImage, 0, len(server))
	for _, img := range server {
		records = append(records, models.ProductImage{
			ID:         img.ID,
			ProductID:  productID,
			URL:        img.URL,
			FileName:   img.FileName,
			IsMain:     img.IsMain,
			IsSelected: img.IsSelected,
			Action:     models.ImageActionOriginal,
		})
	}

	l.mu.Lock()
	stale := stagedKeys(l.images[productID])
	l.images[productID] = records
	l.mu.Unlock()

	l.release(context.Background(), stale)
	l.events.publish(TopicImagesChanged, productID)
}

// Add attaches a local file as a new, selected image at the end of the list.
func (l *ImageLedger) Add(ctx context.Context, productID int64, file models.ImageFile) (models.ProductImage, error) {
	tempID := uuid.New().String()

	var url string
	if l.previews != nil {
		staged, err := l.previews.Stage(ctx, tempID, file)
		if err != nil {
			zap.L().Error("failed to stage image preview",
				zap.Int64("product_id", productID),
				zap.String("file_name", file.Name),
				zap.Error(err),
			)
			return models.ProductImage{}, fmt.Errorf("failed to stage preview: %w", err)
		}
		url = staged
	}

	f := file
	img := models.ProductImage{
		TempID:     tempID,
		ProductID:  productID,
		File:       &f,
		URL:        url,
		FileName:   file.Name,
		IsMain:     false,
		IsSelected: true,
		Action:     models.ImageActionNew,
	}

	l.mu.Lock()
	l.images[productID] = append(l.images[productID], img)
	l.mu.Unlock()

	l.events.publish(TopicImagesChanged, productID)
	return img, nil
}

// SetMain makes key the only main image of the product. The target and every
// image that loses the flag have their action upgraded.
func (l *ImageLedger) SetMain(productID int64, key string) error {
	l.mu.Lock()
	list := l.images[productID]
	target := indexOf(list, key)
	if target < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	for i := range list {
		switch {
		case i == target:
			list[i].IsMain = true
			list[i].Action = list[i].Action.Upgrade()
		case list[i].IsMain:
			list[i].IsMain = false
			list[i].Action = list[i].Action.Upgrade()
		}
	}
	l.mu.Unlock()

	l.events.publish(TopicImagesChanged, productID)
	return nil
}

func (l *ImageLedger) ToggleSelected(productID int64, key string) error {
	l.mu.Lock()
	list := l.images[productID]
	i := indexOf(list, key)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	list[i].IsSelected = !list[i].IsSelected
	list[i].Action = list[i].Action.Upgrade()
	l.mu.Unlock()

	l.events.publish(TopicImagesChanged, productID)
	return nil
}

// MarkDeleted flags the image for deletion on the next submission. The record
// stays in the list until reconciliation prunes it.
func (l *ImageLedger) MarkDeleted(productID int64, key string) error {
	l.mu.Lock()
	list := l.images[productID]
	i := indexOf(list, key)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	list[i].Action = models.ImageActionDelete
	l.mu.Unlock()

	l.events.publish(TopicImagesChanged, productID)
	return nil
}

// Rebind moves every image of oldID to newID.
func (l *ImageLedger) Rebind(oldID, newID int64) {
	if oldID == newID {
		return
	}

	l.mu.Lock()
	moved := l.images[oldID]
	for i := range moved {
		moved[i].ProductID = newID
	}
	l.images[newID] = append(l.images[newID], moved...)
	delete(l.images, oldID)
	l.mu.Unlock()

	l.events.publish(TopicImagesChanged, oldID, newID)
}

// BuildSubmission returns the image diff of the product: one entry per image
// whose action is not original, plus the files of new images keyed by tempId.
func (l *ImageLedger) BuildSubmission(productID int64) ([]models.ImageSubmission, map[string]models.ImageFile) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	subs := []models.ImageSubmission{}
	files := map[string]models.ImageFile{}
	for _, img := range l.images[productID] {
		if img.Action == models.ImageActionOriginal {
			continue
		}
		subs = append(subs, models.ImageSubmission{
			ID:         img.ID,
			TempID:     img.TempID,
			Action:     img.Action,
			IsMain:     img.IsMain,
			IsSelected: img.IsSelected,
		})
		if img.Action == models.ImageActionNew && img.File != nil && img.TempID != "" {
			files[img.TempID] = *img.File
		}
	}
	return subs, files
}

// Reconcile merges the server's image list after a successful save. Records
// are matched by tempId, then id, and updated in place; unmatched server
// images are appended. Server entries carrying neither key are skipped.
// Records still marked delete are then dropped.
func (l *ImageLedger) Reconcile(ctx context.Context, productID int64, server []models.ServerImage) {
	var released []string

	l.mu.Lock()
	list := l.images[productID]
	for _, s := range server {
		if s.TempID == "" && s.ID == 0 {
			continue
		}
		i := -1
		if s.TempID != "" {
			i = indexOfTemp(list, s.TempID)
		}
		if i < 0 && s.ID != 0 {
			i = indexOfID(list, s.ID)
		}

		if i < 0 {
			list = append(list, models.ProductImage{
				ID:         s.ID,
				ProductID:  productID,
				URL:        s.URL,
				FileName:   s.FileName,
				IsMain:     s.IsMain,
				IsSelected: s.IsSelected,
				Action:     models.ImageActionOriginal,
			})
			continue
		}

		if list[i].TempID != "" {
			released = append(released, list[i].TempID)
		}
		list[i].ID = s.ID
		list[i].ProductID = productID
		list[i].FileName = s.FileName
		list[i].URL = s.URL
		list[i].IsMain = s.IsMain
		list[i].IsSelected = s.IsSelected
		list[i].Action = models.ImageActionOriginal
		list[i].TempID = ""
		list[i].File = nil
	}

	kept := list[:0]
	for _, img := range list {
		if img.Action == models.ImageActionDelete {
			if img.TempID != "" {
				released = append(released, img.TempID)
			}
			continue
		}
		kept = append(kept, img)
	}
	l.images[productID] = kept
	l.mu.Unlock()

	l.release(ctx, released)
	l.events.publish(TopicImagesChanged, productID)
}

// PreviewURL returns the main non-deleted image's URL, else the first
// non-deleted image's URL. ok is false when there is neither.
func (l *ImageLedger) PreviewURL(productID int64) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.images[productID]
	for _, img := range list {
		if img.IsMain && img.Action != models.ImageActionDelete {
			return img.URL, true
		}
	}
	for _, img := range list {
		if img.Action != models.ImageActionDelete {
			return img.URL, true
		}
	}
	return "", false
}

// Clear drops every image of the product and releases staged previews.
func (l *ImageLedger) Clear(ctx context.Context, productID int64) {
	l.mu.Lock()
	stale := stagedKeys(l.images[productID])
	delete(l.images, productID)
	l.mu.Unlock()

	l.release(ctx, stale)
	l.events.publish(TopicImagesChanged, productID)
}

func (l *ImageLedger) release(ctx context.Context, tempIDs []string) {
	if l.previews == nil {
		return
	}
	for _, id := range tempIDs {
		if err := l.previews.Release(ctx, id); err != nil {
			zap.L().Warn("failed to release image preview", zap.String("temp_id", id), zap.Error(err))
		}
	}
}

func stagedKeys(list []models.ProductImage) []string {
	var keys []string
	for _, img := range list {
		if img.TempID != "" {
			keys = append(keys, img.TempID)
		}
	}
	return keys
}

func indexOf(list []models.ProductImage, key string) int {
	for i := range list {
		if list[i].Matches(key) {
			return i
		}
	}
	return -1
}

func indexOfTemp(list []models.ProductImage, tempID string) int {
	for i := range list {
		if list[i].TempID == tempID {
			return i
		}
	}
	return -1
}

func indexOfID(list []models.ProductImage, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func copyImages(list []models.ProductImage) []models.ProductImage {
	out := make([]models.ProductImage, len(list))
	copy(out, list)
	return out
}
