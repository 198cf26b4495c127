package whiteboard

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// DataURIPrefix is the prefix of every serialized image.
const DataURIPrefix = "data:image/png;base64,"

// pngEncoder uses a fixed compression level so output is byte-identical for
// identical pixels.
var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG writes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("whiteboard: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeDataURI serializes img as a PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}

// DecodeDataURIBytes returns the PNG bytes carried by a data URI.
func DecodeDataURIBytes(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURI, DataURIPrefix)
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return b, nil
}

// DecodeDataURI parses a PNG data URI produced by EncodeDataURI.
func DecodeDataURI(uri string) (image.Image, error) {
	b, err := DecodeDataURIBytes(uri)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return img, nil
}
