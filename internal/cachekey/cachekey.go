// Package cachekey derives the content-addressed cache key of a normalized request
package cachekey

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	jsoniter "github.com/json-iterator/go"
)

// Prefix namespaces keys inside shared cache backends.
const Prefix = "resized-image-"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// canonical is the serialized form of a request. Attributes stay a list so their order counts.
type canonical struct {
	File       string      `json:"file"`
	Width      *int        `json:"width"`
	Height     *int        `json:"height"`
	Fit        model.Fit   `json:"fit"`
	Return     string      `json:"return"`
	Attributes [][2]string `json:"attributes"`
}

// Derive returns Prefix + md5(serialized) + "-" + len(serialized).
func Derive(req model.Request) (string, error) {
	c := canonical{
		File:       req.File,
		Width:      req.Width,
		Height:     req.Height,
		Fit:        req.Fit,
		Return:     string(req.Return),
		Attributes: make([][2]string, 0, req.Attributes.Len()),
	}
	for _, a := range req.Attributes.Items() {
		c.Attributes = append(c.Attributes, [2]string{a.Name, a.Value})
	}

	encoded, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(encoded)
	return Prefix + hex.EncodeToString(sum[:]) + "-" + strconv.Itoa(len(encoded)), nil
}
