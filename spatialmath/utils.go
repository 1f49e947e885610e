package spatialmath

import "math"

const (
	radToDeg = 180 / math.Pi
	degToRad = math.Pi / 180
)
