package imageproc

import (
	"image"
	"math"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/disintegration/imaging"
)

// Resize applies a fit mode. Non-positive or nil dimensions count as absent; when both are
// absent, or the fit is unknown, the image comes back untouched. A target box above maxPixels
// fails with model.ImageTooLargeError before imaging allocates anything; maxPixels <= 0 disables
// the check.
func Resize(img *Image, fit model.Fit, width, height *int, maxPixels int) (*Image, error) {
	w, h := positive(width), positive(height)
	if w == 0 && h == 0 {
		return img, nil
	}

	srcW, srcH := img.Width(), img.Height()

	switch fit {
	case model.FitFill, model.FitOutside:
		// a missing side keeps the source size
		if w == 0 {
			w = srcW
		}
		if h == 0 {
			h = srcH
		}
	case model.FitInside:
		// with both sides given, the source orientation picks the constraining one
		if w > 0 && h > 0 {
			if srcW > srcH {
				w = 0
			} else {
				h = 0
			}
		}
	default:
		return img, nil
	}

	if err := checkBudget(srcW, srcH, w, h, maxPixels); err != nil {
		return nil, err
	}

	switch fit {
	case model.FitFill:
		// exact box, aspect ratio ignored
		return img.with(imaging.Resize(img.Pixels, w, h, imaging.Lanczos)), nil
	case model.FitInside:
		// imaging derives the zero side from the aspect ratio
		return img.with(imaging.Resize(img.Pixels, w, h, imaging.Lanczos)), nil
	default:
		return img.with(imaging.Fill(img.Pixels, w, h, imaging.Center, imaging.Lanczos)), nil
	}
}

// checkBudget derives a zero side the same way imaging does and compares the box to maxPixels.
func checkBudget(srcW, srcH, w, h, maxPixels int) error {
	if maxPixels <= 0 || srcW <= 0 || srcH <= 0 {
		return nil
	}

	bw, bh := float64(w), float64(h)
	switch {
	case w == 0:
		bw = math.Max(1, math.Floor(bh*float64(srcW)/float64(srcH)+0.5))
	case h == 0:
		bh = math.Max(1, math.Floor(bw*float64(srcH)/float64(srcW)+0.5))
	}

	if bw*bh > float64(maxPixels) {
		return model.ImageTooLargeError{Width: int(math.Min(bw, math.MaxInt32)), Height: int(math.Min(bh, math.MaxInt32)), Max: maxPixels}
	}
	return nil
}

func (i *Image) with(pixels image.Image) *Image {
	return &Image{Pixels: pixels, Format: i.Format}
}

func positive(v *int) int {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}
