package imaging

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jdeng/goheif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"matchbox.io/infrastructure/logger"
)

const DefaultJPEGQuality = 95

// Normalized is the image handed to the moderation services and storage.
type Normalized struct {
	Data      []byte
	MIME      string
	Converted bool
}

// Normalizer re-encodes anything that is not already JPEG (HEIC from iOS
// devices, WebP, PNG...) so the vision vendors can read it.
type Normalizer struct {
	Quality int
}

func NewNormalizer(quality int) *Normalizer {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Normalizer{Quality: quality}
}

// Normalize never fails: when the input cannot be converted the original
// bytes are returned and the checks run against them.
func (n *Normalizer) Normalize(data []byte) *Normalized {
	original := &Normalized{Data: data, MIME: "application/octet-stream"}
	if len(data) == 0 {
		return original
	}

	detected := mimetype.Detect(data)
	original.MIME = detected.String()
	if detected.Is("image/jpeg") {
		return original
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		logger.Warning("upload is not an image, passing through", logger.LoggerOptions{
			Key:  "mime",
			Data: detected.String(),
		})
		return original
	}

	img, err := n.decode(data, detected)
	if err != nil {
		logger.Warning("could not decode image, passing through original bytes", logger.LoggerOptions{
			Key:  "mime",
			Data: detected.String(),
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return original
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		logger.Warning("could not encode image as jpeg, passing through original bytes", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return original
	}
	logger.Info("image converted to jpeg", logger.LoggerOptions{
		Key:  "from",
		Data: detected.String(),
	})
	return &Normalized{Data: buf.Bytes(), MIME: "image/jpeg", Converted: true}
}

func (n *Normalizer) decode(data []byte, detected *mimetype.MIME) (image.Image, error) {
	if isHEIF(detected) {
		return goheif.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

func isHEIF(detected *mimetype.MIME) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		switch mime.String() {
		case "image/heic", "image/heif", "image/heic-sequence", "image/heif-sequence":
			return true
		}
	}
	return false
}
