package handler

import (
	"mime"
	"net/http"
	"strconv"
)

// RegenerateQR handles POST /passengers/{id}/qr.
func (s *Server) RegenerateQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.Passengers.RegenerateQR(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "passenger")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetQRImage handles GET /passengers/{id}/qr.png.
func (s *Server) GetQRImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	png, name, err := s.Passengers.QRImage(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "passenger")
		return
	}
	writeFile(w, "image/png", name, png)
}

// writeFile sends data as a download named name.
func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
