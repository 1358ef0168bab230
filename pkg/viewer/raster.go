package viewer

import (
	"image"
	"image/color"
	"math"
)

// raster is an RGBA image with a depth buffer. Smaller depth is closer.
type raster struct {
	img    *image.RGBA
	depth  []float64
	width  int
	height int
}

func newRaster(width, height int, background color.RGBA) *raster {
	r := &raster{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		depth:  make([]float64, width*height),
		width:  width,
		height: height,
	}
	for i := range r.depth {
		r.depth[i] = math.Inf(1)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.img.SetRGBA(x, y, background)
		}
	}
	return r
}

// plot writes one pixel if it is inside the image and passes the depth test
func (r *raster) plot(x, y int, z float64, col color.RGBA) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return
	}
	idx := y*r.width + x
	if z < r.depth[idx] {
		r.depth[idx] = z
		r.img.SetRGBA(x, y, col)
	}
}

// point draws a size×size square centered on (x, y)
func (r *raster) point(x, y, z float64, size int, col color.RGBA) {
	half := size / 2
	cx, cy := int(math.Round(x)), int(math.Round(y))
	for dy := -half; dy < size-half; dy++ {
		for dx := -half; dx < size-half; dx++ {
			r.plot(cx+dx, cy+dy, z, col)
		}
	}
}

// triangle fills a triangle with the scanline algorithm, interpolating depth
func (r *raster) triangle(v [3][3]float64, col color.RGBA) {
	// Sort vertices by Y coordinate (top to bottom)
	if v[0][1] > v[1][1] {
		v[0], v[1] = v[1], v[0]
	}
	if v[1][1] > v[2][1] {
		v[1], v[2] = v[2], v[1]
	}
	if v[0][1] > v[1][1] {
		v[0], v[1] = v[1], v[0]
	}

	x1, y1, z1 := v[0][0], v[0][1], v[0][2]
	x2, y2, z2 := v[1][0], v[1][1], v[1][2]
	x3, y3, z3 := v[2][0], v[2][1], v[2][2]

	yStart := int(math.Max(0, math.Ceil(y1)))
	yEnd := int(math.Min(float64(r.height-1), math.Floor(y3)))

	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)

		// The long edge 1-3 always spans the scanline
		t := 0.0
		if y3 != y1 {
			t = (fy - y1) / (y3 - y1)
		}
		xa, za := x1+t*(x3-x1), z1+t*(z3-z1)

		var xb, zb float64
		switch {
		case fy < y2 && y2 != y1:
			t = (fy - y1) / (y2 - y1)
			xb, zb = x1+t*(x2-x1), z1+t*(z2-z1)
		case y3 != y2:
			t = (fy - y2) / (y3 - y2)
			xb, zb = x2+t*(x3-x2), z2+t*(z3-z2)
		default:
			xb, zb = x2, z2
		}

		if xa > xb {
			xa, xb = xb, xa
			za, zb = zb, za
		}

		xStart := int(math.Max(0, math.Ceil(xa)))
		xEnd := int(math.Min(float64(r.width-1), math.Floor(xb)))
		for x := xStart; x <= xEnd; x++ {
			s := 0.0
			if xb != xa {
				s = (float64(x) - xa) / (xb - xa)
			}
			r.plot(x, y, za+s*(zb-za), col)
		}
	}
}

// line draws a line with Bresenham's algorithm on top of everything
func (r *raster) line(x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	for {
		if x1 >= 0 && x1 < r.width && y1 >= 0 && y1 < r.height {
			r.img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
