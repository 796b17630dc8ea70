// Package render produces the derived forms of an uploaded image. It is a pure
// transformation layer: bytes in, bytes out, no I/O.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Register webp so uploads already in webp form still decode.
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the input bytes are not a decodable image.
var ErrDecode = errors.New("not a decodable image")

// Profile names one fixed rendition.
type Profile struct {
	// Name identifies the profile (origin, webp, thumb).
	Name string
	// Filename is the object name under the upload's folder.
	Filename string
	// ContentType of the produced bytes.
	ContentType string
	// Quality is the webp encoder quality; ignored for pass-through.
	Quality float32
	// Width resizes to this width preserving aspect ratio; 0 keeps the
	// original dimensions.
	Width int
	// PassThrough stores the input bytes untouched, without decoding.
	PassThrough bool
}

// The fixed rendition set. Origin keeps the raw upload; the original client
// contract assumes JPEG input, so origin is labelled image/jpeg regardless.
var (
	Origin = Profile{Name: "origin", Filename: "origin.jpg", ContentType: "image/jpeg", PassThrough: true}
	WebP   = Profile{Name: "webp", Filename: "image.webp", ContentType: "image/webp", Quality: 85}
	Thumb  = Profile{Name: "thumb", Filename: "thumb.webp", ContentType: "image/webp", Quality: 70, Width: 350}
)

// Profiles lists every rendition produced for an upload.
var Profiles = []Profile{Origin, WebP, Thumb}

// Transform produces the bytes for one profile. Undecodable input yields
// ErrDecode; pass-through profiles never decode.
func Transform(data []byte, p Profile) ([]byte, error) {
	if p.PassThrough {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if p.Width > 0 && img.Bounds().Dx() > 0 {
		img = imaging.Resize(img, p.Width, 0, imaging.Lanczos)
	}

	return encodeWebP(img, p.Quality)
}

func encodeWebP(img image.Image, quality float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
