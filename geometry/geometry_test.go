package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name string
		g    orb.Geometry
	}{
		{"point", orb.Point{24.94, 60.17}},
		{"line", orb.LineString{{0, 0}, {1, 1}, {2, 0.5}}},
		{"polygon", orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.g)
			require.NoError(t, err)
			require.NotEmpty(t, encoded)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.g, decoded)
		})
	}
}

func TestEncodeNil(t *testing.T) {
	encoded, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", encoded)
}

func TestEncodeRejectsUnsupportedTypes(t *testing.T) {
	_, err := Encode(orb.MultiPoint{{0, 0}, {1, 1}})
	assert.ErrorContains(t, err, "unsupported geometry type")
}

func TestDecodeEmpty(t *testing.T) {
	decoded, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeInvalidWKT(t *testing.T) {
	for _, s := range []string{"POINT(nope)", "POINT(1 2", "not wkt at all"} {
		_, err := Decode(s)
		assert.ErrorContains(t, err, "Invalid WKT", s)
	}
}

func TestDecodeRejectsUnsupportedTypes(t *testing.T) {
	_, err := Decode("MULTIPOINT((0 0),(1 1))")
	assert.ErrorContains(t, err, "unsupported geometry type")
}

func TestDecodePoint(t *testing.T) {
	pt, err := DecodePoint("POINT(24.94 60.17)")
	require.NoError(t, err)
	require.NotNil(t, pt)
	assert.Equal(t, orb.Point{24.94, 60.17}, *pt)

	pt, err = DecodePoint("")
	require.NoError(t, err)
	assert.Nil(t, pt)

	_, err = DecodePoint("LINESTRING(0 0,1 1)")
	assert.ErrorContains(t, err, "expected a point")
}
