package mindjourney

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedWidth(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestResizeImageScalesDown(t *testing.T) {
	out, err := resizeImage(bytes.NewReader(testPNG(t, 200, 100)), 50)
	require.NoError(t, err)
	w, h := decodedWidth(t, out)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)
}

func TestResizeImageNeverUpscales(t *testing.T) {
	out, err := resizeImage(bytes.NewReader(testPNG(t, 40, 20)), 400)
	require.NoError(t, err)
	w, _ := decodedWidth(t, out)
	assert.Equal(t, 40, w)
}

func TestResizeImageRejectsGarbage(t *testing.T) {
	_, err := resizeImage(bytes.NewReader([]byte("not an image")), 10)
	assert.Error(t, err)
}

func TestMediaPath(t *testing.T) {
	_, ok := mediaPath("media", "../secret.png")
	assert.False(t, ok)
	_, ok = mediaPath("media", ".hidden")
	assert.False(t, ok)
	p, ok := mediaPath("media", "napas.png")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("media", "napas.png"), p)
}

func TestMediaRoute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "napas.png"), testPNG(t, 120, 60), 0o644))

	ta := newTestApp(t, func(c *SiteConfig) {
		c.StoreDriver = DriverSQLite
		c.MediaDir = dir
	})

	rec := ta.get("/media/napas.png?w=60")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	w, _ := decodedWidth(t, rec.Body.Bytes())
	assert.Equal(t, 60, w)

	rec = ta.get("/media/missing.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMediaRouteOnlyForLocalStore(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.StoreDriver = DriverSanity })

	rec := ta.get("/media/napas.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
