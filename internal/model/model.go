// Package model provides data-structs shared by the resize pipeline, its cache backends and transports
package model

import (
	"strings"
	"unicode"
)

// FunctionName is the name the render operation is registered under in the host.
const FunctionName = "resized_image"

type (
	Fit        string
	ReturnMode string
)

const (
	FitFill    Fit = "fill"
	FitInside  Fit = "inside"
	FitOutside Fit = "outside"
)

// FitValues keeps the order used in error messages.
var FitValues = []Fit{FitInside, FitOutside, FitFill}

var FitMap = map[Fit]bool{
	FitFill:    true,
	FitInside:  true,
	FitOutside: true,
}

const (
	ReturnImage ReturnMode = "image"
	ReturnURL   ReturnMode = "url"
)

// UnknownOutput is rendered for a return mode that is neither "image" nor "url".
const UnknownOutput = "???"

// Named parameters; everything else is a pass-through attribute.
const (
	ArgFile    = "file"
	ArgWidth   = "width"
	ArgHeight  = "height"
	ArgFit     = "fit"
	ArgReturn  = "return"
	ArgSrc     = "src"
	ArgBaseDir = "basedir"
	ArgLink    = "link"
	ArgHref    = "href"
	ArgAlt     = "alt"
)

// NamedArgs never end up among pass-through attributes.
var NamedArgs = map[string]bool{
	ArgFit:    true,
	ArgWidth:  true,
	ArgHeight: true,
	ArgReturn: true,
	ArgFile:   true,
	ArgSrc:    true,
}

const DataURIPrefix = "data:"

//---------------------

// Limits caps the work a single request may cause. Zero disables a cap.
type Limits struct {
	MaxDimension int
	MaxPixels    int
}

// DefaultLimits apply when no limits are configured.
var DefaultLimits = Limits{MaxDimension: 8192, MaxPixels: 40_000_000}

// IsValidAttributeName reports whether name can be written into a tag without escaping.
func IsValidAttributeName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
		switch r {
		case '"', '\'', '<', '>', '/', '=', '`':
			return false
		}
	}
	return true
}

//---------------------

// Request is a validated and normalized resize request.
type Request struct {
	File       string
	Width      *int
	Height     *int
	Fit        Fit
	Return     ReturnMode
	Attributes Attributes
}

//---------------------

// Attr is a single pass-through HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// Attributes is an insertion-ordered set of HTML attributes. The zero value is ready to use.
type Attributes struct {
	items []Attr
}

func NewAttributes(items ...Attr) Attributes {
	var a Attributes
	for _, it := range items {
		a.Set(it.Name, it.Value)
	}
	return a
}

// Set replaces the value in place when the name exists, appends otherwise.
func (a *Attributes) Set(name, value string) {
	for i := range a.items {
		if a.items[i].Name == name {
			a.items[i].Value = value
			return
		}
	}
	a.items = append(a.items, Attr{Name: name, Value: value})
}

func (a Attributes) Get(name string) (string, bool) {
	for _, it := range a.items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}

func (a Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

func (a *Attributes) Delete(name string) {
	for i := range a.items {
		if a.items[i].Name == name {
			a.items = append(a.items[:i], a.items[i+1:]...)
			return
		}
	}
}

func (a Attributes) Len() int { return len(a.items) }

// Items returns a copy of the attributes in insertion order.
func (a Attributes) Items() []Attr {
	out := make([]Attr, len(a.items))
	copy(out, a.items)
	return out
}

func (a Attributes) Clone() Attributes {
	return Attributes{items: a.Items()}
}

// Without returns a copy with the given names removed.
func (a Attributes) Without(names ...string) Attributes {
	out := a.Clone()
	for _, n := range names {
		out.Delete(n)
	}
	return out
}

// NormalizeKey lower-cases and trims an argument name the way pass-through attributes are keyed.
func NormalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
