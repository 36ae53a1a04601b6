package network

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// EdgesGeoJSON returns the network's edges as a GeoJSON feature collection,
// for debug inspection and map overlays.
func (n *Network) EdgesGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, node := range n.g.Nodes() {
		for _, e := range n.g.outgoing(node.ID) {
			line := e.Geometry
			if len(line) < 2 {
				u, errU := n.g.Node(e.U)
				v, errV := n.g.Node(e.V)
				if errU != nil || errV != nil {
					continue
				}
				line = orb.LineString{u.Point, v.Point}
			}
			coords := make([][]float64, len(line))
			for i, pt := range line {
				coords[i] = []float64{pt[0], pt[1]}
			}
			f := geojson.NewLineStringFeature(coords)
			f.SetProperty("u", e.U)
			f.SetProperty("v", e.V)
			f.SetProperty("length", e.Length)
			if e.Highway != "" {
				f.SetProperty("highway", e.Highway)
			}
			if len(e.MaxSpeed) > 0 {
				f.SetProperty("maxspeed", e.MaxSpeed)
			}
			fc.AddFeature(f)
		}
	}
	return fc
}
