package params

import (
	"net/url"
	"os"
	"strings"

	"github.com/UnendingLoop/ResizedImage/internal/model"
)

// Normalizer turns validated raw arguments into a model.Request.
type Normalizer struct {
	docRoot string
	exists  func(path string) bool
}

// NewNormalizer resolves relative files against docRoot unless a request carries basedir.
func NewNormalizer(docRoot string) *Normalizer {
	return &Normalizer{docRoot: docRoot, exists: fileExists}
}

func (n *Normalizer) Normalize(raw, other model.RawArgs) model.Request {
	req := model.Request{
		Fit:        model.FitOutside,
		Return:     ReturnMode(raw),
		Attributes: normalizeAttributes(other),
	}

	req.Width = dimension(raw, model.ArgWidth)
	req.Height = dimension(raw, model.ArgHeight)

	if v, ok := raw.Lookup(model.ArgFit); ok {
		if fit, ok := lowerString(v); ok {
			req.Fit = model.Fit(fit)
		}
	}

	file, _ := raw.Lookup(model.ArgFile)
	req.File, _ = file.(string)
	req.File = n.resolveFile(req.File, req.Attributes)

	return req
}

func (n *Normalizer) resolveFile(file string, attrs model.Attributes) string {
	if strings.HasPrefix(file, model.DataURIPrefix) || isAbsoluteURL(file) || n.exists(file) {
		return file
	}

	base := n.docRoot
	if b, ok := attrs.Get(model.ArgBaseDir); ok {
		base = b
	}

	return base + string(os.PathSeparator) + file
}

func dimension(raw model.RawArgs, key string) *int {
	v, ok := raw.Lookup(key)
	if !ok {
		return nil
	}
	n, ok := ToInt(v)
	if !ok {
		return nil
	}
	return &n
}

// normalizeAttributes coerces pass-through values to strings and folds link into href.
// href given explicitly is never overwritten by link.
func normalizeAttributes(other model.RawArgs) model.Attributes {
	var attrs model.Attributes
	for _, a := range other {
		s, ok := ToString(a.Value)
		if !ok {
			continue
		}
		attrs.Set(a.Key, s)
	}

	if link, ok := attrs.Get(model.ArgLink); ok {
		if !attrs.Has(model.ArgHref) {
			attrs.Set(model.ArgHref, link)
		}
		attrs.Delete(model.ArgLink)
	}

	return attrs
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return false
	}
	// single-letter schemes are drive letters, not URLs
	if len(u.Scheme) < 2 {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return u.Host != "" || u.Opaque != ""
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
