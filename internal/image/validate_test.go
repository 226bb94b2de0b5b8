package image

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func gifPayload(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestValidateUploadAcceptsSupportedFormats(t *testing.T) {
	cases := []struct {
		filename string
		payload  []byte
		wantExt  string
	}{
		{"photo.png", pngPayload(t), "png"},
		{"photo.jpg", jpegPayload(t), "jpg"},
		{"photo.jpeg", jpegPayload(t), "jpeg"},
		{"photo.gif", gifPayload(t), "gif"},
		{"SHOUTY.PNG", pngPayload(t), "png"},
	}
	for _, tc := range cases {
		ext, err := validateUpload(tc.payload, tc.filename)
		require.NoError(t, err, "filename %q", tc.filename)
		assert.Equal(t, tc.wantExt, ext)
	}
}

func TestValidateUploadRejectsDisallowedExtension(t *testing.T) {
	for _, filename := range []string{"notes.txt", "archive.tar.gz", "noextension", "photo.tiff"} {
		_, err := validateUpload(pngPayload(t), filename)
		assert.ErrorIs(t, err, ErrInvalidImage, "filename %q", filename)
	}
}

func TestValidateUploadRejectsNonImagePayload(t *testing.T) {
	_, err := validateUpload([]byte("definitely not pixels"), "fake.png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestValidateUploadRejectsEmptyPayload(t *testing.T) {
	_, err := validateUpload(nil, "empty.png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestValidateUploadIgnoresExtensionPayloadMismatch(t *testing.T) {
	// A decodable image under the wrong allowed extension passes: the
	// declared type is stored verbatim and only decodability is checked.
	ext, err := validateUpload(jpegPayload(t), "actually-jpeg.png")
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
}
