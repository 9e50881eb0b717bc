package feed

import (
	"github.com/dhconnelly/rtreego"
)

type cityEntry struct {
	city City
	rect rtreego.Rect
}

func (c *cityEntry) Bounds() rtreego.Rect {
	return c.rect
}

// CityIndex answers nearest-city queries over a fixed set of cities.
type CityIndex struct {
	tree *rtreego.Rtree
}

func NewCityIndex(cities []City) *CityIndex {
	objs := make([]rtreego.Spatial, 0, len(cities))
	for _, c := range cities {
		objs = append(objs, &cityEntry{
			city: c,
			rect: rtreego.Point{c.Lat, c.Lon}.ToRect(0.01),
		})
	}
	return &CityIndex{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

func (idx *CityIndex) Len() int {
	if idx == nil || idx.tree == nil {
		return 0
	}
	return idx.tree.Size()
}

// Nearest returns the city closest to (lat, lon) in degree space.
func (idx *CityIndex) Nearest(lat, lon float64) (City, bool) {
	if idx.Len() == 0 {
		return City{}, false
	}
	obj := idx.tree.NearestNeighbor(rtreego.Point{lat, lon})
	entry, ok := obj.(*cityEntry)
	if !ok {
		return City{}, false
	}
	return entry.city, true
}
