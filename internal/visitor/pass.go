package visitor

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// passQRSize is the edge length in pixels of generated pass images.
const passQRSize = 256

// NewPassID generates an opaque, unique visitor pass identifier.
func NewPassID() string {
	return uuid.NewString()
}

// PassPNG renders a pass identifier as a QR code PNG.
func PassPNG(passID string) ([]byte, error) {
	if passID == "" {
		return nil, fmt.Errorf("empty pass id")
	}
	png, err := qrcode.Encode(passID, qrcode.Medium, passQRSize)
	if err != nil {
		return nil, fmt.Errorf("encoding pass QR code: %w", err)
	}
	return png, nil
}

// PassDataURL renders a pass identifier as a data URL suitable for an
// <img> tag on a printed badge.
func PassDataURL(passID string) (string, error) {
	png, err := PassPNG(passID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
