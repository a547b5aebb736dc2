// Package visitlink builds the shareable links and QR codes that lead to a
// waypoint's visit page.
package visitlink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

var ErrQRCode = errors.New("could not generate QR code")

type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Link returns the absolute visit URL for a token.
func (b *Builder) Link(token string) string {
	return b.baseURL + "/visit/" + token
}

// QRCode encodes link as a PNG.
func QRCode(link string) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQRCode, err)
	}
	return png, nil
}

// DataURI encodes link as an embeddable PNG data URI.
func DataURI(link string) (string, error) {
	png, err := QRCode(link)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// FileName is the download name of a waypoint's QR code.
func FileName(routeName, waypointName string) string {
	name := slug.Make(routeName + " " + waypointName)
	if name == "" {
		name = "waypoint"
	}
	return name + "-qr.png"
}
