// Package qr encodes passenger identity payloads into QR code images and
// reads them back from scanned text or photographs.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // DecodeImage accepts phone camera photos
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	goqr "github.com/skip2/go-qrcode"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// Size is the edge length in pixels of generated QR images.
const Size = 256

// Payload is the JSON document carried by a passenger's QR code.
type Payload struct {
	Cedula     string `json:"cedula"`
	Name       string `json:"name"`
	Department string `json:"gerencia"`
	Timestamp  string `json:"timestamp"`
}

// NewPayload builds the payload printed on a passenger's card.
func NewPayload(p domain.Passenger, now time.Time) Payload {
	return Payload{
		Cedula:     p.Cedula,
		Name:       p.Name,
		Department: p.Department,
		Timestamp:  now.UTC().Format(time.RFC3339Nano),
	}
}

// Valid reports whether the payload identifies someone: both the national id
// and the name must be present.
func (p Payload) Valid() bool {
	return p.Cedula != "" && p.Name != ""
}

// Encode renders p as a PNG QR code of Size pixels at medium error correction.
func Encode(p Payload) ([]byte, error) {
	text, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("qr.Encode: %w", err)
	}
	png, err := goqr.Encode(string(text), goqr.Medium, Size)
	if err != nil {
		return nil, fmt.Errorf("qr.Encode: %w", err)
	}
	return png, nil
}

// DataURL renders p like Encode and returns it as a data:image/png URL,
// the form stored on passenger records.
func DataURL(p Payload) (string, error) {
	png, err := Encode(p)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// PNGFromDataURL extracts the image bytes from a stored data URL.
func PNGFromDataURL(url string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		return nil, fmt.Errorf("qr.PNGFromDataURL: not a PNG data URL: %w", domain.ErrValidation)
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		return nil, fmt.Errorf("qr.PNGFromDataURL: %w", err)
	}
	return png, nil
}

// Parse reads the text of a scanned code.
//
// A code that is not a JSON payload, or whose payload lacks the national id
// or the name, is taken to be a bare national id typed or printed on its own.
// Parse never fails; callers check Valid or the Cedula field.
func Parse(text string) Payload {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err == nil && p.Valid() {
		return p
	}
	return Payload{
		Cedula:    strings.TrimSpace(text),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// DecodeImage finds a QR code in a PNG or JPEG image and returns its text.
func DecodeImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("qr.DecodeImage: %v: %w", err, domain.ErrValidation)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("qr.DecodeImage: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER:    true,
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("qr.DecodeImage: no QR code found: %w", domain.ErrValidation)
	}
	return res.GetText(), nil
}
