package coord

import (
	"testing"
)

// A window covering exactly one cuboid ends on a block boundary on every
// axis, so Decompose also enumerates the boundary blocks (stopBlock = 1 per
// axis, 2x2x2 = 8 entries); only cuboid (0,0,0) has a non-empty range.
func TestDecomposeSingleBlock(t *testing.T) {
	size := Vector3{X: 4, Y: 4, Z: 4}
	got := Decompose(Vector3{}, Vector3{X: 4, Y: 4, Z: 4}, size)
	if len(got) != 8 {
		t.Fatalf("expected 8 cuboids (1 full + 7 zero-width boundary), got %d", len(got))
	}
	r, ok := got[Vector3{0, 0, 0}]
	if !ok {
		t.Fatalf("expected cuboid (0,0,0)")
	}
	if r.Start != (Vector3{}) || r.Stop != size {
		t.Fatalf("expected full-cuboid range, got %+v", r)
	}
}

// E2 from the spec: write shape (5,1,1) at origin (0,0,0) with S=(4,4,4),
// then read [3,0,0)-[5,1,1). Two cuboids touched: Ix=0 with local range
// 3..4, and Ix=1 with local range 0..1.
func TestDecomposeCrossBlockCutout(t *testing.T) {
	size := Vector3{X: 4, Y: 4, Z: 4}
	got := Decompose(Vector3{X: 3, Y: 0, Z: 0}, Vector3{X: 5, Y: 1, Z: 1}, size)
	if len(got) != 2 {
		t.Fatalf("expected 2 cuboids, got %d: %+v", len(got), got)
	}
	r0 := got[Vector3{0, 0, 0}]
	if r0.Start.X != 3 || r0.Stop.X != 4 {
		t.Fatalf("block 0: expected local x range 3..4, got %+v", r0)
	}
	r1 := got[Vector3{1, 0, 0}]
	if r1.Start.X != 0 || r1.Stop.X != 1 {
		t.Fatalf("block 1: expected local x range 0..1, got %+v", r1)
	}
}

// E5: a zero-extent read still produces exactly one entry with a
// zero-width local range, at whatever cuboid contains the point.
func TestDecomposeZeroExtent(t *testing.T) {
	size := Vector3{X: 4, Y: 4, Z: 4}
	got := Decompose(Vector3{X: 2, Y: 2, Z: 2}, Vector3{X: 2, Y: 2, Z: 2}, size)
	if len(got) != 1 {
		t.Fatalf("expected 1 cuboid, got %d", len(got))
	}
	for _, r := range got {
		if r.Start != r.Stop {
			t.Fatalf("expected zero-width range, got %+v", r)
		}
	}
}

// Property test: for every (start, stop, size) with stop >= start
// componentwise, the union of decomposed local sub-windows mapped back to
// global coordinates covers exactly [start, stop) with no overlap, and
// each cuboid's miss-expansion bounds — I*size .. I*size+size — line up
// with the per-axis cuboid size, guarding against the original
// implementation's bug of reusing cuboid_size.x on every axis.
func TestDecomposeCoverageProperty(t *testing.T) {
	size := Vector3{X: 3, Y: 5, Z: 2}
	cases := []struct{ start, stop Vector3 }{
		{Vector3{0, 0, 0}, Vector3{7, 11, 5}},
		{Vector3{2, 4, 1}, Vector3{8, 9, 3}},
		{Vector3{1, 1, 1}, Vector3{1, 1, 1}},
		{Vector3{0, 0, 0}, Vector3{6, 10, 4}}, // exact boundary on every axis
	}

	for _, c := range cases {
		got := Decompose(c.start, c.stop, size)

		covered := make(map[Vector3]bool)
		var total uint64

		for idx, r := range got {
			origin := idx.GlobalOrigin(size)

			// Miss-expansion bounds: must use the per-axis size
			// component, not size.X reused on every axis.
			expandedStop := origin.Add(size)
			if expandedStop.X != (idx.X+1)*size.X ||
				expandedStop.Y != (idx.Y+1)*size.Y ||
				expandedStop.Z != (idx.Z+1)*size.Z {
				t.Fatalf("miss-expansion bounds mismatch for %+v: %+v", idx, expandedStop)
			}

			for z := r.Start.Z; z < r.Stop.Z; z++ {
				for y := r.Start.Y; y < r.Stop.Y; y++ {
					for x := r.Start.X; x < r.Stop.X; x++ {
						g := Vector3{X: origin.X + x, Y: origin.Y + y, Z: origin.Z + z}
						if covered[g] {
							t.Fatalf("global coordinate %+v covered twice", g)
						}
						covered[g] = true
						total++
					}
				}
			}
		}

		want := (c.stop.X - c.start.X) * (c.stop.Y - c.start.Y) * (c.stop.Z - c.start.Z)
		if total != want {
			t.Fatalf("case %+v: covered %d voxels, want %d", c, total, want)
		}
		for g := range covered {
			if g.X < c.start.X || g.X >= c.stop.X ||
				g.Y < c.start.Y || g.Y >= c.stop.Y ||
				g.Z < c.start.Z || g.Z >= c.stop.Z {
				t.Fatalf("covered coordinate %+v outside [%+v, %+v)", g, c.start, c.stop)
			}
		}
	}
}
