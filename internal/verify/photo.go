package verify

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrNotAnImage reports a photo payload that does not decode as a supported
// image format (jpeg, png, webp).
var ErrNotAnImage = errors.New("photo is not a recognised image")

// Photo is an optional attachment for a verification.
type Photo struct {
	Name string
	Data []byte
}

// LoadPhoto reads and checks an image file for attachment.
func LoadPhoto(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	p := &Photo{Name: filepath.Base(path), Data: data}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// check decodes the image header so obviously bogus payloads are rejected
// client-side instead of burning a server round trip.
func (p *Photo) check() error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(p.Data)); err != nil {
		return ErrNotAnImage
	}
	return nil
}
