package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/shuttle-control/internal/domain"
	"github.com/pkordes/shuttle-control/internal/handler"
)

func TestCreatePassenger_dropsClientQRCode(t *testing.T) {
	var got domain.Passenger
	passengers := &mockPassengerServicer{}
	passengers.create = func(_ context.Context, p domain.Passenger) (domain.Passenger, error) {
		got = p
		p.ID, p.QRCode = "p1", "data:image/png;base64,AAAA"
		return p, nil
	}
	h := newHTTPHandler(handler.Deps{Passengers: passengers})

	rec := do(t, h, http.MethodPost, "/passengers", adminToken, map[string]string{
		"name": "María López", "cedula": "22222222", "gerencia": "Finanzas", "qrCode": "forged",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, got.QRCode)
	assert.Equal(t, "Finanzas", got.Department)
	created := decodeJSON[domain.Passenger](t, rec)
	assert.Equal(t, "p1", created.ID)
	assert.Equal(t, "data:image/png;base64,AAAA", created.QRCode)
}

func TestRegenerateQR(t *testing.T) {
	passengers := &mockPassengerServicer{
		regenerateQR: func(_ context.Context, id string) (domain.Passenger, error) {
			return domain.Passenger{ID: id, QRCode: "data:image/png;base64,BBBB"}, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Passengers: passengers})

	rec := do(t, h, http.MethodPost, "/passengers/p1/qr", rootToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data:image/png;base64,BBBB", decodeJSON[domain.Passenger](t, rec).QRCode)
}

func TestGetQRImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	passengers := &mockPassengerServicer{
		qrImage: func(_ context.Context, id string) ([]byte, string, error) {
			require.Equal(t, "p1", id)
			return png, "QR_Maria_Lopez_22222222.png", nil
		},
	}
	h := newHTTPHandler(handler.Deps{Passengers: passengers})

	rec := do(t, h, http.MethodGet, "/passengers/p1/qr.png", adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=QR_Maria_Lopez_22222222.png`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestGetQRImage_notFound(t *testing.T) {
	passengers := &mockPassengerServicer{
		qrImage: func(context.Context, string) ([]byte, string, error) {
			return nil, "", fmt.Errorf("service.PassengerService.QRImage: passengers.GetByID: %w", domain.ErrNotFound)
		},
	}
	h := newHTTPHandler(handler.Deps{Passengers: passengers})

	rec := do(t, h, http.MethodGet, "/passengers/nope/qr.png", adminToken, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "passenger not found", decodeError(t, rec).Message)
}
