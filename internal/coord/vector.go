// Package coord implements the coordinate arithmetic shared by every layer
// of the cache: the X-Y-Z vector type, the cuboid decomposition of a cutout
// window, and the single helper that translates user-facing X-Y-Z
// coordinates into Z-Y-X storage strides.
package coord

import "fmt"

// Vector3 is an immutable (X, Y, Z) triple of non-negative coordinates.
// It is used both as a position in global voxel space and as a cuboid
// index. Semantic axis order is always X-Y-Z; on-disk block layout is
// Z-major, the opposite order, and callers must not confuse the two.
type Vector3 struct {
	X, Y, Z uint64
}

// String renders the vector as the "x<X>_y<Y>_z<Z>" form used in block
// filenames and log keys.
func (v Vector3) String() string {
	return fmt.Sprintf("x%d_y%d_z%d", v.X, v.Y, v.Z)
}

// Add returns the componentwise sum.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the componentwise difference. Callers must ensure v >= o
// on every axis; this is a coordinate helper, not a saturating one.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul returns the componentwise product.
func (v Vector3) Mul(o Vector3) Vector3 {
	return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Less reports whether v is less than o on at least one axis (not on
// every axis), so stop.Less(start) is true when a cutout's stop is below
// its start on any axis.
func (v Vector3) Less(o Vector3) bool {
	return v.X < o.X || v.Y < o.Y || v.Z < o.Z
}

// Volume returns Sx*Sy*Sz as a byte/voxel count.
func (v Vector3) Volume() uint64 {
	return v.X * v.Y * v.Z
}
