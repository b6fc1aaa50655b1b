package qr_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/qr"
)

func payloadFixture() qr.Payload {
	return qr.NewPayload(domain.Passenger{
		Name:       "María José Peña",
		Cedula:     "18456789",
		Department: "Mantenimiento",
	}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestEncode_ImageSize(t *testing.T) {
	data, err := qr.Encode(payloadFixture())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, qr.Size, img.Bounds().Dx())
	assert.Equal(t, qr.Size, img.Bounds().Dy())
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := payloadFixture()
	data, err := qr.Encode(want)
	require.NoError(t, err)

	text, err := qr.DecodeImage(bytes.NewReader(data))
	require.NoError(t, err)

	got := qr.Parse(text)
	assert.Equal(t, want.Cedula, got.Cedula)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Department, got.Department)
	assert.Equal(t, want.Timestamp, got.Timestamp)
}

func TestDataURL(t *testing.T) {
	url, err := qr.DataURL(payloadFixture())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	data, err := qr.PNGFromDataURL(url)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestPNGFromDataURL_Rejects(t *testing.T) {
	_, err := qr.PNGFromDataURL("data:image/jpeg;base64,AAAA")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantCedula string
		wantName   string
	}{
		{"full payload", `{"cedula":"123","name":"Ana","gerencia":"RRHH","timestamp":"t"}`, "123", "Ana"},
		{"bare national id", "  24567890 \n", "24567890", ""},
		{"payload without name", `{"cedula":"123"}`, `{"cedula":"123"}`, ""},
		{"payload without cedula", `{"name":"Ana"}`, `{"name":"Ana"}`, ""},
		{"broken json", `{"cedula":`, `{"cedula":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qr.Parse(tt.text)
			assert.Equal(t, tt.wantCedula, got.Cedula)
			assert.Equal(t, tt.wantName, got.Name)
			assert.NotEmpty(t, got.Timestamp)
		})
	}
}

func TestPayload_Valid(t *testing.T) {
	assert.True(t, qr.Payload{Cedula: "1", Name: "A"}.Valid())
	assert.False(t, qr.Payload{Cedula: "1"}.Valid())
	assert.False(t, qr.Payload{Name: "A"}.Valid())
}

func TestDecodeImage_NotAnImage(t *testing.T) {
	_, err := qr.DecodeImage(strings.NewReader("plain text"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
