package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AOIGrid implements a cell-based Area of Interest on the XZ plane.
// Cell size equals the interest radius, so a 3x3 neighbourhood of cells
// fully covers it. Accessed only from the game loop goroutine; no locks.
type AOIGrid struct {
	radius float32
	cells  map[cellKey]map[Identity]struct{}
	pos    map[Identity]Vector3
}

type cellKey struct {
	cx, cz int32
}

// NewAOIGrid returns a grid for the given interest radius, which must be
// positive.
func NewAOIGrid(radius float32) *AOIGrid {
	return &AOIGrid{
		radius: radius,
		cells:  make(map[cellKey]map[Identity]struct{}),
		pos:    make(map[Identity]Vector3),
	}
}

func (g *AOIGrid) toCellCoord(v float32) int32 {
	return int32(math32.Floor(v / g.radius))
}

func (g *AOIGrid) key(p Vector3) cellKey {
	return cellKey{cx: g.toCellCoord(p.X), cz: g.toCellCoord(p.Z)}
}

// Add places a player into the grid, replacing any earlier entry.
func (g *AOIGrid) Add(id Identity, p Vector3) {
	g.Remove(id)
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[Identity]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
	g.pos[id] = p
}

// Remove takes a player out of the grid.
func (g *AOIGrid) Remove(id Identity) {
	p, ok := g.pos[id]
	if !ok {
		return
	}
	delete(g.pos, id)
	k := g.key(p)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a player's position. Unknown players are added.
func (g *AOIGrid) Move(id Identity, p Vector3) {
	old, ok := g.pos[id]
	if ok && g.key(old) == g.key(p) {
		g.pos[id] = p
		return
	}
	g.Add(id, p)
}

// Nearby returns every tracked player within the interest radius of p,
// measured on the XZ plane.
func (g *AOIGrid) Nearby(p Vector3) []Identity {
	k := g.key(p)
	var result []Identity
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			for id := range g.cells[cellKey{cx: k.cx + dx, cz: k.cz + dz}] {
				o := g.pos[id]
				if (mgl32.Vec2{o.X - p.X, o.Z - p.Z}).Len() <= g.radius {
					result = append(result, id)
				}
			}
		}
	}
	return result
}
