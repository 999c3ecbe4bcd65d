package models

import "strconv"

// ImageAction is what must happen to an image on the next submission.
type ImageAction string

const (
	ImageActionNew      ImageAction = "new"
	ImageActionOriginal ImageAction = "original"
	ImageActionUpdate   ImageAction = "update"
	ImageActionDelete   ImageAction = "delete"
)

// Upgrade applies the mutation rule: an original image becomes an update,
// every other action is kept.
func (a ImageAction) Upgrade() ImageAction {
	if a == ImageActionOriginal {
		return ImageActionUpdate
	}
	return a
}

// ImageFile is a local file attached by the operator and not uploaded yet.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProductImage is one image of a product at some lifecycle stage. ID is set
// for images known to the backend, TempID for images created in the console.
type ProductImage struct {
	ID         int64       `json:"id,omitempty"`
	TempID     string      `json:"tempId,omitempty"`
	ProductID  int64       `json:"productId"`
	File       *ImageFile  `json:"-"`
	URL        string      `json:"url"`
	FileName   string      `json:"fileName"`
	IsMain     bool        `json:"isMain"`
	IsSelected bool        `json:"isSelected"`
	Action     ImageAction `json:"action"`
}

// Key is the identifier used to address the image in console routes.
func (img ProductImage) Key() string {
	if img.TempID != "" {
		return img.TempID
	}
	return strconv.FormatInt(img.ID, 10)
}

// Matches reports whether key addresses this image by tempId or by id.
func (img ProductImage) Matches(key string) bool {
	if key == "" {
		return false
	}
	if img.TempID != "" && img.TempID == key {
		return true
	}
	return img.ID != 0 && strconv.FormatInt(img.ID, 10) == key
}

// ImageSubmission is the per-image entry of an image-save request.
type ImageSubmission struct {
	ID         int64       `json:"id,omitempty"`
	TempID     string      `json:"tempId,omitempty"`
	Action     ImageAction `json:"action"`
	IsMain     bool        `json:"isMain"`
	IsSelected bool        `json:"isSelected"`
}

// ServerImage is an image as the backend reports it.
type ServerImage struct {
	ID         int64  `json:"id"`
	TempID     string `json:"tempId,omitempty"`
	FileName   string `json:"fileName"`
	URL        string `json:"url"`
	IsMain     bool   `json:"isMain"`
	IsSelected bool   `json:"isSelected"`
}

// ProcessImagesResponse is the backend's answer to an image-save request.
type ProcessImagesResponse struct {
	Images  []ServerImage          `json:"images"`
	Message map[string]interface{} `json:"message"`
	Error   map[string]interface{} `json:"error"`
}
