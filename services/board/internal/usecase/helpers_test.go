package usecase

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"testing"

	"kuchikomi/pkg/config"
	"kuchikomi/pkg/logger"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AdvertiserUserID: 1,
		CouponSecret:     "dev-secret",
		Catalog:          config.DefaultCatalog(),
	}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, io.Discard)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileHeader round-trips content through a multipart form so the header
// can be opened like an uploaded file.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}
