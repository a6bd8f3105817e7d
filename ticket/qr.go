// Package ticket renders a booking as something a door can scan: the QR image,
// a terminal QR and a printable e-ticket.
package ticket

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cinema-cli/domain"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrNotPNG = errors.New("qr payload is not a png image")

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const imageSize = 256

// DecodePayload turns the backend's QR payload into PNG bytes. Both data URLs
// and bare base64 are accepted. An empty payload yields nil, false.
func DecodePayload(payload string) ([]byte, bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, false, nil
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, false, fmt.Errorf("malformed data url")
		}
		if !strings.Contains(payload[:comma], ";base64") {
			return nil, false, fmt.Errorf("data url is not base64")
		}
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, false, fmt.Errorf("decode qr payload: %w", err)
		}
	}
	if !bytes.HasPrefix(raw, pngMagic) {
		return nil, false, ErrNotPNG
	}
	return raw, true, nil
}

// Image returns the booking's QR as PNG. The backend image is used when it
// decodes; otherwise one encoding the booking code is generated.
func Image(b domain.Booking) ([]byte, error) {
	if raw, ok, err := DecodePayload(b.QRCode); err == nil && ok {
		return raw, nil
	}
	if b.ID == "" {
		return nil, errors.New("booking has no code")
	}
	return qrcode.Encode(b.ID, qrcode.Medium, imageSize)
}

// Terminal draws a QR of the booking code with half-block characters.
func Terminal(b domain.Booking) (string, error) {
	if b.ID == "" {
		return "", errors.New("booking has no code")
	}
	code, err := qrcode.New(b.ID, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return code.ToSmallString(false), nil
}
