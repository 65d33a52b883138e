package mindjourney

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxMediaWidth = 2000
	jpegQuality   = 80
)

// resizeImage decodes an image from src, scales it down to width (never up,
// capped at maxMediaWidth) and encodes it as JPEG. width <= 0 keeps the
// original size.
func resizeImage(src io.Reader, width int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if width > maxMediaWidth {
		width = maxMediaWidth
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if width > 0 && w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// mediaPath resolves name inside dir, rejecting anything that is not a
// plain file name.
func mediaPath(dir, name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(dir, name), true
}

func (a *App) handleMedia(c echo.Context) error {
	path, ok := mediaPath(a.Config.MediaDir, c.Param("name"))
	if !ok {
		return echo.ErrNotFound
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	defer f.Close()

	width, _ := strconv.Atoi(c.QueryParam("w"))
	data, err := resizeImage(f, width)
	if err != nil {
		a.log.Warn().Err(err).Str("file", path).Msg("media not decodable, serving original")
		return c.File(path)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
