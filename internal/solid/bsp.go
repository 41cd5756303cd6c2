package solid

// node is one level of a BSP tree. Polygons coplanar with the node's plane
// are stored on the node itself; everything else is pushed into the front or
// back subtree.
type node struct {
	plane    *Plane
	front    *node
	back     *node
	polygons []Polygon
}

func newNode(polys []Polygon) *node {
	n := &node{}
	n.build(polys)
	return n
}

// invert swaps solid and empty space.
func (n *node) invert() {
	for i := range n.polygons {
		n.polygons[i] = n.polygons[i].flip()
	}
	if n.plane != nil {
		p := n.plane.flip()
		n.plane = &p
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys that fall inside this tree.
func (n *node) clipPolygons(polys []Polygon) []Polygon {
	if n.plane == nil {
		return append([]Polygon(nil), polys...)
	}
	var fr, bk []Polygon
	for _, p := range polys {
		n.plane.split(p, &fr, &bk, &fr, &bk)
	}
	if n.front != nil {
		fr = n.front.clipPolygons(fr)
	}
	if n.back != nil {
		bk = n.back.clipPolygons(bk)
	} else {
		bk = nil
	}
	return append(fr, bk...)
}

// clipTo removes every polygon of this tree that lies inside other.
func (n *node) clipTo(other *node) {
	n.polygons = other.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *node) allPolygons() []Polygon {
	out := append([]Polygon(nil), n.polygons...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

// build inserts polys into the tree, using the first polygon's plane as the
// splitter of an empty node.
func (n *node) build(polys []Polygon) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		p := polys[0].Plane
		n.plane = &p
	}
	var fr, bk []Polygon
	for _, p := range polys {
		n.plane.split(p, &n.polygons, &n.polygons, &fr, &bk)
	}
	if len(fr) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(fr)
	}
	if len(bk) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(bk)
	}
}
