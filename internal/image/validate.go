package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage marks a malformed or disallowed upload. It is detected
// before any backend is touched and maps to a 400 at the HTTP boundary.
var ErrInvalidImage = errors.New("invalid image")

// allowedExtensions is the set of accepted filename suffixes, without dots.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// validateUpload checks the filename extension and that the payload parses
// as an image header of a supported format. It returns the lowercased
// extension (without the dot) on success.
//
// The declared MIME type is deliberately not checked against the decoded
// format: it is stored verbatim, matching the looser historical behavior.
func validateUpload(payload []byte, filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: disallowed file type %q", ErrInvalidImage, filepath.Ext(filename))
	}

	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("%w: undecodable payload: %v", ErrInvalidImage, err)
	}

	return ext, nil
}
