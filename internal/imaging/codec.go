package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Format names a raster encoding.
type Format string

// Supported formats. GIF is decoded but never produced; outputs for GIF
// inputs fall back to PNG.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
)

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/png"
	}
}

// Source is a decoded input image together with the format it arrived in.
type Source struct {
	Image  image.Image
	Format Format
}

// Decode decodes raw image bytes, detecting the format from the content.
//
// PNG, JPEG, GIF, BMP and WebP are recognised. WebP files the registered
// decoder rejects are retried with the libwebp-backed decoder.
func Decode(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: no data")
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return &Source{Image: img, Format: Format(name)}, nil
	}

	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return &Source{Image: wimg, Format: FormatWebP}, nil
	}

	return nil, fmt.Errorf("failed to decode image: %w", err)
}

// OutputFormat returns the format an image derived from an input of format f
// is written in.
func OutputFormat(f Format) Format {
	switch f {
	case FormatJPEG, FormatBMP, FormatWebP:
		return f
	default:
		return FormatPNG
	}
}

// Encode writes img to w in OutputFormat(f) and returns the format used.
// quality applies to JPEG only.
func Encode(w io.Writer, img image.Image, f Format, quality int) (Format, error) {
	out := OutputFormat(f)

	var err error
	switch out {
	case FormatJPEG:
		err = imgio.JPEGEncoder(quality)(w, img)
	case FormatBMP:
		err = imgio.BMPEncoder()(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		err = imgio.PNGEncoder()(w, img)
	}
	if err != nil {
		return out, fmt.Errorf("failed to encode %s image: %w", out, err)
	}
	return out, nil
}

// EncodeBytes is Encode into a fresh byte slice.
func EncodeBytes(img image.Image, f Format, quality int) ([]byte, Format, error) {
	var buf bytes.Buffer
	out, err := Encode(&buf, img, f, quality)
	if err != nil {
		return nil, out, err
	}
	return buf.Bytes(), out, nil
}
