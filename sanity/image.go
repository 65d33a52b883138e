package sanity

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/mindjourney/content"
)

const cdnBase = "https://cdn.sanity.io/images"

// ImageURL turns an asset reference of the form image-<id>-<w>x<h>-<format>
// into a CDN URL sized to width. Unrecognised references yield "".
func ImageURL(projectID, dataset, ref string, width int) string {
	if !strings.HasPrefix(ref, "image-") {
		return ""
	}
	rest := strings.TrimPrefix(ref, "image-")
	i := strings.LastIndexByte(rest, '-')
	if i <= 0 || i == len(rest)-1 {
		return ""
	}
	id, format := rest[:i], rest[i+1:]
	if j := strings.LastIndexByte(id, '-'); j <= 0 || !isDimensions(id[j+1:]) {
		return ""
	}

	u := cdnBase + "/" + url.PathEscape(projectID) + "/" + url.PathEscape(dataset) + "/" + id + "." + format
	if width > 0 {
		return u + "?w=" + strconv.Itoa(width) + "&auto=format"
	}
	return u + "?auto=format"
}

func isDimensions(s string) bool {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return false
	}
	_, errW := strconv.Atoi(w)
	_, errH := strconv.Atoi(h)
	return errW == nil && errH == nil
}

// ImageURLFunc returns a content.ImageURLFunc bound to the client's project.
func (c *Client) ImageURLFunc() content.ImageURLFunc {
	return func(img content.Image, width int) string {
		return ImageURL(c.cfg.ProjectID, c.cfg.Dataset, img.AssetRef, width)
	}
}

// AssetURLFunc is ImageURLFunc for bare asset references.
func (c *Client) AssetURLFunc() func(ref string, width int) string {
	return func(ref string, width int) string {
		return ImageURL(c.cfg.ProjectID, c.cfg.Dataset, ref, width)
	}
}
