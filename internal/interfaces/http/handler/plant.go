package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/agromart/backend/internal/application/plant"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// maxPlantImages bounds the photos accepted per identification
const maxPlantImages = 5

var errInvalidImage = errors.New("images must be base64 encoded")

// PlantHandler identifies plants from photos
type PlantHandler struct {
	BaseHandler
	plantService *plant.PlantService
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(plantService *plant.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

// Identify handles POST /plants/identify. Photos arrive either as
// multipart "image" parts or as a JSON body of base64 strings.
func (h *PlantHandler) Identify(c *gin.Context) {
	var (
		images []plant.Image
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		images, err = multipartImages(c)
	} else {
		var req dto.IdentifyPlantRequest
		if !h.bindJSON(c, &req) {
			return
		}
		images, err = base64Images(req.Images)
	}
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeValidation), dto.ErrCodeValidation, err.Error())
		return
	}
	if len(images) > maxPlantImages {
		images = images[:maxPlantImages]
	}

	result, err := h.plantService.Identify(c.Request.Context(), middleware.GetSession(c).OwnerKey(), images)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func multipartImages(c *gin.Context) ([]plant.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	var images []plant.Image
	for _, fh := range form.File["image"] {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, plant.Image{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return images, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// base64Images decodes plain base64 or data URIs
func base64Images(encoded []string) ([]plant.Image, error) {
	images := make([]plant.Image, 0, len(encoded))
	for _, s := range encoded {
		contentType := ""
		if rest, ok := strings.CutPrefix(s, "data:"); ok {
			meta, payload, found := strings.Cut(rest, ",")
			if !found {
				return nil, errInvalidImage
			}
			contentType, _, _ = strings.Cut(meta, ";")
			s = payload
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, errInvalidImage
		}
		images = append(images, plant.Image{Data: data, ContentType: contentType})
	}
	return images, nil
}
