// Package render turns a resized image into the string handed back to the template: an <img>
// fragment, optionally wrapped in a link, or a bare data URI.
package render

import (
	"html"
	"strings"

	"github.com/UnendingLoop/ResizedImage/internal/imageproc"
	"github.com/UnendingLoop/ResizedImage/internal/model"
)

// Encoder is the part of imageproc.Codec the renderer needs.
type Encoder interface {
	EncodeDataURI(img *imageproc.Image) (string, error)
}

type Renderer struct {
	encoder Encoder
}

func NewRenderer(enc Encoder) *Renderer {
	return &Renderer{encoder: enc}
}

// Render produces the output for a return mode. Unknown modes yield model.UnknownOutput.
func (r *Renderer) Render(mode model.ReturnMode, img *imageproc.Image, attrs model.Attributes) (string, error) {
	switch mode {
	case model.ReturnImage:
		return r.imageTag(img, attrs)
	case model.ReturnURL:
		return r.encoder.EncodeDataURI(img)
	default:
		return model.UnknownOutput, nil
	}
}

func (r *Renderer) imageTag(img *imageproc.Image, attrs model.Attributes) (string, error) {
	src, err := r.encoder.EncodeDataURI(img)
	if err != nil {
		return "", err
	}

	imgAttrs := attrs.Without(model.ArgLink, model.ArgHref, model.ArgBaseDir)
	// caller attributes win over the defaults
	if !imgAttrs.Has(model.ArgAlt) {
		imgAttrs.Set(model.ArgAlt, "")
	}
	imgAttrs.Set(model.ArgSrc, src)

	var sb strings.Builder
	href, linked := attrs.Get(model.ArgHref)
	if linked {
		sb.WriteString(buildTag("a", model.NewAttributes(model.Attr{Name: model.ArgHref, Value: href}), false))
	}
	sb.WriteString(buildTag("img", imgAttrs, true))
	if linked {
		sb.WriteString("</a>")
	}

	return sb.String(), nil
}

func buildTag(name string, attrs model.Attributes, selfClosing bool) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(name)

	for _, a := range attrs.Items() {
		// имя пишется как есть, поэтому невалидные не выводим вовсе
		if !model.IsValidAttributeName(a.Name) {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteString(`"`)
	}

	if selfClosing {
		sb.WriteString("/>")
	} else {
		sb.WriteString(">")
	}
	return sb.String()
}
