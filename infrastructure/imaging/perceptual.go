package imaging

import (
	"image"

	"github.com/corona10/goimagehash"
	"github.com/gabriel-vasile/mimetype"
)

func decodeAny(data []byte) (image.Image, error) {
	return (&Normalizer{}).decode(data, mimetype.Detect(data))
}

// PerceptualDistance is the hamming distance between the difference hashes
// of two images. 0 means visually identical; small values mean recompression.
func PerceptualDistance(a []byte, b []byte) (int, error) {
	imgA, err := decodeAny(a)
	if err != nil {
		return 0, err
	}
	imgB, err := decodeAny(b)
	if err != nil {
		return 0, err
	}
	hashA, err := goimagehash.DifferenceHash(imgA)
	if err != nil {
		return 0, err
	}
	hashB, err := goimagehash.DifferenceHash(imgB)
	if err != nil {
		return 0, err
	}
	return hashA.Distance(hashB)
}
