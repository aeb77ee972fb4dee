package model

// Vec3 is a position or extent in meters.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is a rotation quaternion.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1} //nolint:gochecknoglobals // value constant

// Pose is a position plus orientation.
type Pose struct {
	Position    Vec3 `json:"position"`
	Orientation Quat `json:"orientation"`
}

// NewPose returns a pose at (x, y, z) with identity orientation.
func NewPose(x, y, z float64) Pose {
	return Pose{Position: Vec3{X: x, Y: y, Z: z}, Orientation: Identity}
}
