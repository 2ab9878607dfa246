package qrcode

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the text encoded in a restaurant's printed QR: the rotating code
// followed by the app store link, so a phone camera that is not inside the app
// still lands somewhere useful.
func Payload(code, appLink string) string {
	if appLink == "" {
		return code
	}
	return code + "|" + appLink
}

// ParsePayload returns the code part of a scanned payload. A bare code is
// returned unchanged.
func ParsePayload(scanned string) string {
	code, _, _ := strings.Cut(strings.TrimSpace(scanned), "|")
	return code
}

func PNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
