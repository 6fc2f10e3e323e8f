/*
Copyright © 2026 the Verkenning authors.
This file is part of Verkenning.

Verkenning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Verkenning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Verkenning.  If not, see <http://www.gnu.org/licenses/>.
*/

package terrain

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // Register the PNG decoder.
	"math"

	"github.com/chai2010/webp"
)

// decodeTile decodes a terrain-RGB tile, which is usually WebP or PNG.
func decodeTile(data []byte) (image.Image, error) {
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("terrain: decoding tile: %v", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("terrain: unsupported tile format %q", format)
	}
	return img, nil
}

// RGBElevation decodes a terrain-RGB pixel to meters.
func RGBElevation(r, g, b uint8) float64 {
	return -10000 + float64(int(r)*65536+int(g)*256+int(b))*0.1
}

// ElevationRGB encodes an elevation in meters as a terrain-RGB pixel.
func ElevationRGB(z float64) color.RGBA {
	v := int(math.Round((z + 10000) * 10))
	if v < 0 {
		v = 0
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func pixelElevation(img image.Image, x, y int) float64 {
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return math.NaN()
	}
	return RGBElevation(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
