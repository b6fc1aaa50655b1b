package domain

import "time"

// SignatureType says on whose behalf a signature verifies a report.
type SignatureType string

const (
	SignatureContractor  SignatureType = "contratista"
	SignatureCorporation SignatureType = "corporacion"
)

// Valid reports whether t is a known signature type.
func (t SignatureType) Valid() bool {
	return t == SignatureContractor || t == SignatureCorporation
}

// Signature is a verifier identity stamped onto generated reports.
type Signature struct {
	ID        string        `json:"id"`
	Type      SignatureType `json:"type"`
	Name      string        `json:"name"`
	CI        string        `json:"ci"`
	Title     string        `json:"cargo"`
	CreatedAt time.Time     `json:"createdAt"`
}
