package device

import (
	"image"
	"image/color"
)

// ESC a n: justification. GS v 0: print raster bit image, normal density.
var (
	escAlignLeft   = []byte{0x1B, 'a', 0x00}
	escAlignCenter = []byte{0x1B, 'a', 0x01}
	gsRasterImage  = []byte{0x1D, 'v', '0', 0x00}
)

// lumaThreshold splits pixels into printed (dark) and blank (light).
const lumaThreshold = 0x80

// rasterize encodes an image as a GS v 0 raster block: a 4-byte width/height
// header in bytes and dots, then rows packed 8 pixels per byte, MSB first.
func rasterize(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	rowBytes := (width + 7) / 8

	out := make([]byte, 0, len(gsRasterImage)+4+rowBytes*height)
	out = append(out, gsRasterImage...)
	out = append(out, byte(rowBytes), byte(rowBytes>>8), byte(height), byte(height>>8))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := make([]byte, rowBytes)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !darkPixel(img.At(x, y)) {
				continue
			}
			col := x - bounds.Min.X
			row[col/8] |= 0x80 >> (col % 8)
		}
		out = append(out, row...)
	}
	return out
}

func darkPixel(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < lumaThreshold
}
