// geom provides viewport rectangle math for overlay placement and connector lines
package geom

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a viewport-fixed rectangle, as returned by getBoundingClientRect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Intersects reports whether the two rectangles overlap with a nonzero area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left() < o.Right() &&
		r.Right() > o.Left() &&
		r.Top() < o.Bottom() &&
		r.Bottom() > o.Top()
}

// EdgePoints returns the four corners followed by the four edge midpoints.
func (r Rect) EdgePoints() [8]Point {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	return [8]Point{
		{r.Left(), r.Top()},
		{r.Right(), r.Top()},
		{r.Right(), r.Bottom()},
		{r.Left(), r.Bottom()},
		{cx, r.Top()},
		{r.Right(), cy},
		{cx, r.Bottom()},
		{r.Left(), cy},
	}
}

func distSq(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// ClosestEdgePoints returns the pair of edge points, one from each rectangle,
// with the smallest distance between them. Ties keep the first pair found.
func ClosestEdgePoints(a, b Rect) (Point, Point) {
	pa := a.EdgePoints()
	pb := b.EdgePoints()
	bestA, bestB := pa[0], pb[0]
	best := distSq(bestA, bestB)
	for _, p := range pa {
		for _, q := range pb {
			d := distSq(p, q)
			if d < best {
				best = d
				bestA, bestB = p, q
			}
		}
	}
	return bestA, bestB
}
