package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// DefaultMaxSize is the default bounding box for previews, in pixels
const DefaultMaxSize = 512

// Renderer turns an invoice document into a PNG thumbnail
type Renderer interface {
	Render(data []byte, contentType string) ([]byte, error)
}

// Thumbnailer renders the first page of PDFs and any supported image into a
// PNG that fits within MaxSize x MaxSize
type Thumbnailer struct {
	MaxSize int
}

// NewThumbnailer creates a Thumbnailer, falling back to DefaultMaxSize for non-positive sizes
func NewThumbnailer(maxSize int) *Thumbnailer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Thumbnailer{MaxSize: maxSize}
}

// Render decodes the document and returns a PNG thumbnail
func (t *Thumbnailer) Render(data []byte, contentType string) ([]byte, error) {
	img, err := decode(data, normalizeContentType(contentType))
	if err != nil {
		return nil, err
	}

	// Fit never upscales; small scans are kept at their own size
	b := img.Bounds()
	if b.Dx() > t.MaxSize || b.Dy() > t.MaxSize {
		img = imaging.Fit(img, t.MaxSize, t.MaxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeContentType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// decode picks a decoder from the content type and magic bytes
func decode(data []byte, mimeType string) (image.Image, error) {
	switch {
	case mimeType == "application/pdf" || isPDF(data):
		return decodePDF(data)
	case isHEICFormat(data) || isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, fmt.Errorf("unsupported document format %q. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF: %w", mimeType, err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return img, nil
	}
}

// decodePDF renders the first page of a PDF
func decodePDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEICFormat checks for an ftyp box with a HEIC/HEIF brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
