package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRService generates the personal credential QR presented at meeting check-in.
type QRService struct {
	baseURL string // e.g. "https://meetingup.cl"
}

func NewQRService(baseURL string) *QRService {
	return &QRService{baseURL: baseURL}
}

// CredentialContent is what the scanner reads back: the member's public
// credential URL carrying their id.
func (s *QRService) CredentialContent(userID uint) string {
	return fmt.Sprintf("%s/u/%d", s.baseURL, userID)
}

// GenerateCredential renders the member credential as a PNG byte slice.
func (s *QRService) GenerateCredential(userID uint, size int) ([]byte, error) {
	png, err := qrcode.Encode(s.CredentialContent(userID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
