// Package geometry converts survey geometry values to and from Well-Known
// Text. Only the three types the platform collects are accepted: points,
// lines and polygons.
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// Encode renders a geometry as WKT. A nil geometry encodes to the empty
// string.
func Encode(g orb.Geometry) (string, error) {
	if g == nil {
		return "", nil
	}
	switch g.(type) {
	case orb.Point, orb.LineString, orb.Polygon:
		return wkt.MarshalString(g), nil
	}
	return "", errors.Errorf("unsupported geometry type %s", g.GeoJSONType())
}

// Decode parses a WKT string. The empty string decodes to nil.
func Decode(s string) (orb.Geometry, error) {
	if s == "" {
		return nil, nil
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid WKT %q", s)
	}
	switch g.(type) {
	case orb.Point, orb.LineString, orb.Polygon:
		return g, nil
	}
	return nil, errors.Errorf("Invalid WKT %q: unsupported geometry type %s", s, g.GeoJSONType())
}

// DecodePoint parses a WKT point, for map start positions.
func DecodePoint(s string) (*orb.Point, error) {
	if s == "" {
		return nil, nil
	}
	g, err := Decode(s)
	if err != nil {
		return nil, err
	}
	pt, ok := g.(orb.Point)
	if !ok {
		return nil, errors.Errorf("Invalid WKT %q: expected a point", s)
	}
	return &pt, nil
}
