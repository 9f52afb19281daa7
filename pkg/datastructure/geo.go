package datastructure

import "math"

type BoundingBox struct {
	minX, minY float64
	maxX, maxY float64
}

func NewBoundingBox(minX, minY, maxX, maxY float64) *BoundingBox {
	return &BoundingBox{minX: minX,
		minY: minY,
		maxX: maxX,
		maxY: maxY}
}

// NewEmptyBoundingBox. inverted box that any Extend call shrinks onto the first point.
func NewEmptyBoundingBox() *BoundingBox {
	return &BoundingBox{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (b *BoundingBox) Extend(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x)
	b.maxY = math.Max(b.maxY, y)
}

func (b *BoundingBox) IsEmpty() bool {
	return b.minX > b.maxX || b.minY > b.maxY
}

// Contains. boundary inclusive.
func (b *BoundingBox) Contains(x, y float64) bool {
	return x >= b.minX && x <= b.maxX && y >= b.minY && y <= b.maxY
}

func (b *BoundingBox) GetMinX() float64 {
	return b.minX
}

func (b *BoundingBox) GetMinY() float64 {
	return b.minY
}

func (b *BoundingBox) GetMaxX() float64 {
	return b.maxX
}

func (b *BoundingBox) GetMaxY() float64 {
	return b.maxY
}

func (b *BoundingBox) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.maxX - b.minX
}

func (b *BoundingBox) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.maxY - b.minY
}
