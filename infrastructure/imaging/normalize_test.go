package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for x := 0; x < 16; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 20), 128, 255})
		}
	}
	return img
}

func TestNormalizeKeepsJPEGBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sampleImage(), nil); err != nil {
		t.Fatal(err)
	}
	input := buf.Bytes()

	result := NewNormalizer(0).Normalize(input)
	if result.Converted {
		t.Errorf("jpeg should not be converted")
	}
	if !bytes.Equal(result.Data, input) {
		t.Errorf("jpeg bytes should pass through unchanged")
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
}

func TestNormalizeConvertsPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		t.Fatal(err)
	}

	result := NewNormalizer(90).Normalize(buf.Bytes())
	if !result.Converted || result.MIME != "image/jpeg" {
		t.Fatalf("expected png converted to jpeg, got %+v", result.MIME)
	}
	decoded, format, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("converted output is not decodable: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 12 {
		t.Errorf("dimensions changed: %v", decoded.Bounds())
	}
}

func TestNormalizePassesThroughUndecodable(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "text", input: []byte("definitely not an image")},
		{name: "truncated png", input: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewNormalizer(95).Normalize(tt.input)
			if result.Converted {
				t.Errorf("expected pass through")
			}
			if !bytes.Equal(result.Data, tt.input) {
				t.Errorf("expected original bytes back")
			}
		})
	}
}

func TestNewNormalizerClampsQuality(t *testing.T) {
	if q := NewNormalizer(150).Quality; q != DefaultJPEGQuality {
		t.Errorf("expected default quality, got %d", q)
	}
	if q := NewNormalizer(80).Quality; q != 80 {
		t.Errorf("expected 80, got %d", q)
	}
}

func TestPerceptualDistance(t *testing.T) {
	var jpg, pngBuf bytes.Buffer
	if err := jpeg.Encode(&jpg, sampleImage(), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(&pngBuf, sampleImage()); err != nil {
		t.Fatal(err)
	}

	same, err := PerceptualDistance(pngBuf.Bytes(), pngBuf.Bytes())
	if err != nil || same != 0 {
		t.Errorf("identical images: distance %d, err %v", same, err)
	}
	recompressed, err := PerceptualDistance(pngBuf.Bytes(), jpg.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if recompressed > 10 {
		t.Errorf("recompressed copy should stay close, distance %d", recompressed)
	}
	if _, err := PerceptualDistance([]byte("nope"), jpg.Bytes()); err == nil {
		t.Errorf("expected decode error for garbage input")
	}
}
