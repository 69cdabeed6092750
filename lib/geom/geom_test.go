package geom

import (
	"math/rand"
	"testing"
)

func TestClosestEdgePointsBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randRect := func() Rect {
		return Rect{
			X:      rng.Float64()*2000 - 500,
			Y:      rng.Float64()*2000 - 500,
			Width:  rng.Float64() * 400,
			Height: rng.Float64() * 400,
		}
	}
	for i := 0; i < 2000; i++ {
		a, b := randRect(), randRect()
		pa, pb := ClosestEdgePoints(a, b)
		got := distSq(pa, pb)
		for _, p := range a.EdgePoints() {
			for _, q := range b.EdgePoints() {
				if d := distSq(p, q); d < got {
					t.Fatalf("iteration %d: pair %v-%v at %f beaten by %v-%v at %f", i, pa, pb, got, p, q, d)
				}
			}
		}
	}
}

func TestClosestEdgePointsSideBySide(t *testing.T) {
	left := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	right := Rect{X: 300, Y: 0, Width: 100, Height: 100}
	pa, pb := ClosestEdgePoints(left, right)
	// corners and midpoints on the facing edges all tie at 200px; the first
	// pair in iteration order is the top-right corner against the top-left one
	if pa != (Point{100, 0}) || pb != (Point{300, 0}) {
		t.Errorf("got %v %v", pa, pb)
	}
}

func TestClosestEdgePointsBelow(t *testing.T) {
	target := Rect{X: 100, Y: 100, Width: 50, Height: 20}
	panel := Rect{X: 0, Y: 300, Width: 250, Height: 100}
	pa, pb := ClosestEdgePoints(target, panel)
	if pa != (Point{125, 120}) || pb != (Point{125, 300}) {
		t.Errorf("got %v %v", pa, pb)
	}
}

func TestClosestEdgePointsIdempotent(t *testing.T) {
	a := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	b := Rect{X: 500, Y: 600, Width: 70, Height: 80}
	a1, b1 := ClosestEdgePoints(a, b)
	a2, b2 := ClosestEdgePoints(a, b)
	if a1 != a2 || b1 != b2 {
		t.Errorf("results differ: %v %v vs %v %v", a1, b1, a2, b2)
	}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, true},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, false},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 5, 5}, true},
		{"apart", Rect{0, 0, 10, 10}, Rect{50, 50, 10, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("reverse Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}
