// Package palette picks the colour a menu card is tinted with.
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// maxSamples bounds the work for large photos.
const maxSamples = 40000

var ErrEmptyImage = errors.New("image has no visible pixels")

type bucket struct {
	r, g, b uint64
	n       uint64
}

// Representative returns the dominant colour of an encoded image as #rrggbb.
// Colours are bucketed at 4 bits per channel; the fullest bucket wins and its
// mean is returned. Transparent pixels never count, near-white and near-black
// pixels only when nothing else is left.
func Representative(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return "", ErrEmptyImage
	}

	step := 1
	for (w/step)*(h/step) > maxSamples {
		step++
	}

	var vivid, dull [4096]bucket
	var anyVivid bool
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 < 0x8000 {
				continue
			}
			r, g, b := r16>>8, g16>>8, b16>>8
			idx := (r>>4)<<8 | (g>>4)<<4 | b>>4

			target := &vivid
			if extreme(r, g, b) {
				target = &dull
			} else {
				anyVivid = true
			}
			bk := &target[idx]
			bk.r += uint64(r)
			bk.g += uint64(g)
			bk.b += uint64(b)
			bk.n++
		}
	}

	buckets := &vivid
	if !anyVivid {
		buckets = &dull
	}

	best := -1
	for i := range buckets {
		if buckets[i].n == 0 {
			continue
		}
		if best < 0 || buckets[i].n > buckets[best].n {
			best = i
		}
	}
	if best < 0 {
		return "", ErrEmptyImage
	}

	bk := buckets[best]
	return fmt.Sprintf("#%02x%02x%02x", bk.r/bk.n, bk.g/bk.n, bk.b/bk.n), nil
}

func extreme(r, g, b uint32) bool {
	const lo, hi = 24, 232
	return (r < lo && g < lo && b < lo) || (r > hi && g > hi && b > hi)
}
