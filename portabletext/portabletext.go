// Package portabletext renders Portable Text documents (the block format the
// content store uses for post bodies) to HTML as a templ component.
package portabletext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// Block is a single top-level Portable Text node. Text blocks carry Children
// and MarkDefs; image blocks carry Asset.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
	Asset    *AssetRef `json:"asset,omitempty"`
	Alt      string    `json:"alt,omitempty"`
}

// Span is an inline run of text with decorator marks ("strong", "em") or
// annotation keys that point into the parent block's MarkDefs.
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef defines an annotation such as a link.
type MarkDef struct {
	Key   string `json:"_key"`
	Type  string `json:"_type"`
	Href  string `json:"href,omitempty"`
	Blank bool   `json:"blank,omitempty"`
}

// AssetRef references a media asset by id.
type AssetRef struct {
	Ref string `json:"_ref"`
}

// ImageFunc resolves an asset reference to a URL at the given width.
type ImageFunc func(ref string, width int) string

// bodyImageWidth is the width requested for images embedded in a body.
const bodyImageWidth = 1200

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

var blockStyles = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

// PortableText returns a templ.Component that renders blocks as HTML.
func PortableText(blocks []Block, img ImageFunc) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, blocks, img)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of blocks to buf.
func Render(buf *bytes.Buffer, blocks []Block, img ImageFunc) {
	imageCount := 0
	openList := ""

	flushList := func() {
		if openList != "" {
			buf.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, b := range blocks {
		switch b.Type {
		case "block":
			if b.ListItem != "" {
				tag := "ul"
				if b.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					flushList()
					buf.WriteString("<" + tag + ">")
					openList = tag
				}
				buf.WriteString("<li>")
				buf.WriteString(FormatSpans(b.Children, b.MarkDefs))
				buf.WriteString("</li>")
				continue
			}
			flushList()
			tag, ok := blockStyles[b.Style]
			if !ok {
				tag = "p"
			}
			buf.WriteString("<" + tag + ">")
			buf.WriteString(FormatSpans(b.Children, b.MarkDefs))
			buf.WriteString("</" + tag + ">")
		case "image":
			flushList()
			if b.Asset == nil || img == nil {
				continue
			}
			src := SafeURL(img(b.Asset.Ref, bodyImageWidth))
			if src == "" {
				continue
			}
			imageCount++
			loadAttr := `loading="lazy"`
			if imageCount == 1 {
				loadAttr = `fetchpriority="high"`
			}
			buf.WriteString(`<figure><img ` + loadAttr + ` src="` + src + `" alt="` + html.EscapeString(b.Alt) + `" decoding="async"/></figure>`)
		default:
			flushList()
		}
	}
	flushList()
}

// FormatSpans renders the inline children of a block, applying decorators and
// link annotations. Marks listed first wrap outermost.
func FormatSpans(children []Span, defs []MarkDef) string {
	byKey := make(map[string]MarkDef, len(defs))
	for _, d := range defs {
		byKey[d.Key] = d
	}
	var sb strings.Builder
	for _, span := range children {
		text := html.EscapeString(span.Text)
		text = strings.ReplaceAll(text, "\n", "<br/>")
		for i := len(span.Marks) - 1; i >= 0; i-- {
			mark := span.Marks[i]
			if tag, ok := decorators[mark]; ok {
				text = "<" + tag + ">" + text + "</" + tag + ">"
				continue
			}
			def, ok := byKey[mark]
			if !ok || def.Type != "link" {
				continue
			}
			href := SafeURL(def.Href)
			if href == "" {
				continue
			}
			attrs := `class="underline decoration-2 underline-offset-4"`
			if def.Blank {
				attrs += ` target="_blank" rel="noopener noreferrer"`
			}
			text = `<a href="` + href + `" ` + attrs + `>` + text + `</a>`
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// PlainText concatenates the text of all text blocks, separated by blank lines.
// Used for feed descriptions and read-time estimates.
func PlainText(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if b.Type != "block" {
			continue
		}
		var sb strings.Builder
		for _, span := range b.Children {
			sb.WriteString(span.Text)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ReadTime estimates minutes of reading at 200 words per minute, minimum 1.
func ReadTime(blocks []Block) int {
	words := len(strings.Fields(PlainText(blocks)))
	minutes := (words + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
