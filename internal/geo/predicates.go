package geo

import (
	"math"

	"github.com/golang/geo/r2"
)

const epsilon = 1.1102230246251565e-16 // 2^-53

var (
	orientErrBound   = (3.0 + 16.0*epsilon) * epsilon
	incircleErrBound = (10.0 + 96.0*epsilon) * epsilon
)

// Orient2D returns a positive value when a, b, c turn counter-clockwise, a negative
// value when they turn clockwise and zero when they are collinear. Results whose
// magnitude falls inside the floating-point error bound are reported as zero.
func Orient2D(a, b, c r2.Point) float64 {
	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight
	detSum := math.Abs(detLeft) + math.Abs(detRight)
	if math.Abs(det) <= orientErrBound*detSum {
		return 0
	}
	return det
}

// InCircle returns a positive value when d lies strictly inside the circle through
// the counter-clockwise triangle a, b, c, a negative value when it lies outside and
// zero when the four points are (numerically) cocircular.
func InCircle(a, b, c, d r2.Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	aLift := adx*adx + ady*ady

	cdxady, adxcdy := cdx*ady, adx*cdy
	bLift := bdx*bdx + bdy*bdy

	adxbdy, bdxady := adx*bdy, bdx*ady
	cLift := cdx*cdx + cdy*cdy

	det := aLift*(bdxcdy-cdxbdy) + bLift*(cdxady-adxcdy) + cLift*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*aLift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*bLift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*cLift
	if math.Abs(det) <= incircleErrBound*permanent {
		return 0
	}
	return det
}
