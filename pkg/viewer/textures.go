package viewer

import "math"

// ringPixels builds an RGBA ring mask: white, with alpha peaking on a thin
// band near the edge. wide selects the thinner band used at 4K.
func ringPixels(size int, wide bool) []byte {
	pixels := make([]byte, size*size*4)
	center, maxDist := float64(size)/2.0, float64(size)/2.0
	outer, inner := 0.9, 0.8
	if wide {
		outer, inner = 0.94, 0.88
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= maxDist {
				continue
			}
			val := 0.0
			if dist > maxDist*outer {
				val = math.Cos(((dist - maxDist*(outer+((1-outer)/2))) / (maxDist * ((1 - outer) / 2))) * (math.Pi / 2))
			} else if dist > maxDist*inner {
				val = math.Sin(((dist - maxDist*inner) / (maxDist * (outer - inner))) * (math.Pi / 2))
			}
			setWhite(pixels, (y*size+x)*4, val)
		}
	}
	return pixels
}

// glowPixels builds a soft filled disc that fades to the edge.
func glowPixels(size int) []byte {
	pixels := make([]byte, size*size*4)
	center, maxDist := float64(size)/2.0, float64(size)/2.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			dist := math.Sqrt(dx*dx+dy*dy) / maxDist
			if dist >= 1 {
				continue
			}
			setWhite(pixels, (y*size+x)*4, math.Pow(1-dist, 2))
		}
	}
	return pixels
}

func setWhite(pixels []byte, off int, alpha float64) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	pixels[off], pixels[off+1], pixels[off+2] = 255, 255, 255
	pixels[off+3] = uint8(alpha * 255)
}
