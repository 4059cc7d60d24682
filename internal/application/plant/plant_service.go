// Package plant identifies crops and weeds from uploaded photos.
package plant

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/plantid"
	"github.com/agromart/backend/internal/infrastructure/storage"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoImage is returned when a request carries no image
var ErrNoImage = shared.NewDomainError("NO_IMAGE", "At least one image is required")

// Image is an uploaded photo
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Suggestion is a candidate species
type Suggestion struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// IdentifyResult is the identification outcome
type IdentifyResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	ImageKeys   []string     `json:"image_keys,omitempty"`
}

// PlantService uploads photos and asks the identification provider about them
type PlantService struct {
	identifier plantid.Identifier
	objects    storage.ObjectStorage
	logger     *zap.Logger
}

// NewPlantService creates a plant service. objects may be nil, in which
// case photos are not archived.
func NewPlantService(identifier plantid.Identifier, objects storage.ObjectStorage, logger *zap.Logger) *PlantService {
	return &PlantService{identifier: identifier, objects: objects, logger: logger}
}

// Identify archives the images (when storage is configured) and returns the
// provider's suggestions
func (s *PlantService) Identify(ctx context.Context, userID string, images []Image) (*IdentifyResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "plant", "identify", "images", len(images))
	defer span.End()

	payload := make([][]byte, 0, len(images))
	for _, img := range images {
		if len(img.Data) > 0 {
			payload = append(payload, img.Data)
		}
	}
	if len(payload) == 0 {
		return nil, ErrNoImage
	}

	result := &IdentifyResult{}
	if s.objects != nil {
		for _, img := range images {
			if len(img.Data) == 0 {
				continue
			}
			key := objectKey(userID, img)
			if err := s.objects.Upload(ctx, key, img.Data, contentType(img)); err != nil {
				// Archiving is best effort; identification still runs
				s.logger.Warn("Failed to archive plant image", zap.String("key", key), zap.Error(err))
				continue
			}
			result.ImageKeys = append(result.ImageKeys, key)
		}
	}

	suggestions, err := s.identifier.Identify(ctx, payload)
	if err != nil {
		telemetry.RecordError(span, err)
		switch {
		case errors.Is(err, plantid.ErrNotConfigured):
			return nil, err
		case errors.Is(err, plantid.ErrNoImages):
			return nil, ErrNoImage
		}
		s.logger.Error("Plant identification failed", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Plant identification failed", err)
	}

	result.Suggestions = make([]Suggestion, len(suggestions))
	for i, sg := range suggestions {
		result.Suggestions[i] = Suggestion{Name: sg.Name, Probability: sg.Probability}
	}
	s.logger.Info("Plant identified",
		zap.String("user_id", userID),
		zap.Int("suggestions", len(result.Suggestions)))
	return result, nil
}

func contentType(img Image) string {
	if img.ContentType != "" {
		return img.ContentType
	}
	return http.DetectContentType(img.Data)
}

// objectKey is identifications/<user>/<uuid><ext>
func objectKey(userID string, img Image) string {
	ext := strings.ToLower(path.Ext(img.Filename))
	if ext == "" {
		switch contentType(img) {
		case "image/png":
			ext = ".png"
		case "image/webp":
			ext = ".webp"
		case "image/gif":
			ext = ".gif"
		default:
			ext = ".jpg"
		}
	}
	if userID == "" {
		userID = "anonymous"
	}
	return "identifications/" + userID + "/" + uuid.NewString() + ext
}
