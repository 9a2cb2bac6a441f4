package kinematics

// GenerateSpring returns a zig-zag polyline with n coils running from (0, 0)
// to (0, -1). The coils alternate at x = ±1/(2n), starting on the left.
// The result has n+2 points.
func GenerateSpring(n int) []Point {
	if n < 1 {
		return []Point{{0, 0}, {0, -1}}
	}
	pts := make([]Point, 0, n+2)
	pts = append(pts, Point{0, 0})
	half := 1 / (2 * float64(n))
	for i := 1; i <= n; i++ {
		x := half
		if i%2 == 1 {
			x = -half
		}
		pts = append(pts, Point{X: x, Y: -float64(2*i-1) * half})
	}
	return append(pts, Point{0, -1})
}
