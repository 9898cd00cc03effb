package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

const iconSize = 32

var levelColors = map[string]color.NRGBA{
	levelOK:    {R: 30, G: 200, B: 90, A: 255},
	levelWork:  {R: 240, G: 190, B: 30, A: 255},
	levelError: {R: 220, G: 55, B: 55, A: 255},
	levelIdle:  {R: 160, G: 160, B: 160, A: 255},
}

// GetIcon returns the tray icon for the given level in the platform's
// preferred container.
func GetIcon(level string) []byte {
	return encodeIcon(IconPNG(level, iconSize))
}

// IconPNG renders the icon for level as a size x size PNG. Unknown levels
// render as idle.
func IconPNG(level string, size int) []byte {
	c, ok := levelColors[level]
	if !ok {
		c = levelColors[levelIdle]
	}
	return renderDot(c, size)
}

// renderDot draws an anti-aliased filled circle on a transparent canvas.
func renderDot(c color.NRGBA, size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	center := float64(size-1) / 2
	radius := float64(size)/2 - float64(size)/16

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-center, float64(y)-center)
			cov := radius + 0.5 - d
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			px := c
			px.A = uint8(float64(c.A) * cov)
			img.SetNRGBA(x, y, px)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
