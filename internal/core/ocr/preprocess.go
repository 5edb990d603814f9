package ocr

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	denoiseSigma   = 0.8
	thresholdSigma = 8.0
	// pixels darker than the local mean minus this offset become ink
	thresholdOffset = 10
)

// Preprocess writes a binarized copy of src into dir and returns its path:
// grayscale, a light blur to remove speckle, then an adaptive threshold
// against a Gaussian local mean.
func Preprocess(src, dir string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(src), err)
	}

	gray := imaging.Grayscale(img)
	denoised := imaging.Blur(gray, denoiseSigma)
	local := imaging.Blur(denoised, thresholdSigma)

	b := denoised.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := int(denoised.Pix[y*denoised.Stride+x*4])
			m := int(local.Pix[y*local.Stride+x*4])
			if v > m-thresholdOffset {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dir, base+"_processed.png")
	if err := imaging.Save(out, dst); err != nil {
		return "", fmt.Errorf("save %s: %w", filepath.Base(dst), err)
	}
	return dst, nil
}
