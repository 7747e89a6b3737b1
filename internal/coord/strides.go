package coord

// Strides returns the Y- and Z-strides (in voxels) for a Z-major buffer
// shaped (shape.X, shape.Y, shape.Z) in user X-Y-Z order. The flat offset
// of voxel (x, y, z) is x + y*yStride + z*zStride — X is fastest-varying,
// Z slowest, which is the inverse of the X-Y-Z naming convention used
// everywhere else in this package. This is the one place that inversion
// is written down; every caller that needs to address into a raw block
// buffer goes through Index or CopyRegion instead of recomputing it.
func Strides(shape Vector3) (yStride, zStride uint64) {
	return shape.X, shape.X * shape.Y
}

// Index returns the flat byte offset of local voxel `at` within a
// Z-major buffer of the given shape.
func Index(shape Vector3, at Vector3) uint64 {
	yStride, zStride := Strides(shape)
	return at.X + at.Y*yStride + at.Z*zStride
}

// CopyRegion copies a sub-rectangle of `extent` voxels from `src` (shaped
// srcShape, origin srcOrigin) into `dst` (shaped dstShape, origin
// dstOrigin). Both buffers are single-byte-per-voxel, Z-major. It is used
// both to slice a cuboid's local bytes into a request's output buffer and
// to overwrite a cuboid's local bytes from an input buffer on write-back,
// so the X-fastest/Z-slowest arithmetic is written exactly once.
func CopyRegion(dst []byte, dstShape, dstOrigin Vector3, src []byte, srcShape, srcOrigin Vector3, extent Vector3) {
	if extent.X == 0 || extent.Y == 0 || extent.Z == 0 {
		return
	}
	for z := uint64(0); z < extent.Z; z++ {
		for y := uint64(0); y < extent.Y; y++ {
			srcOff := Index(srcShape, Vector3{X: srcOrigin.X, Y: srcOrigin.Y + y, Z: srcOrigin.Z + z})
			dstOff := Index(dstShape, Vector3{X: dstOrigin.X, Y: dstOrigin.Y + y, Z: dstOrigin.Z + z})
			copy(dst[dstOff:dstOff+extent.X], src[srcOff:srcOff+extent.X])
		}
	}
}
