package dto

import "time"

// PrintLinkResponse carries a signed link to the printable report.
type PrintLinkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportFile is a rendered session export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
