package geom_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pypcl/compgeom/geom"
	"github.com/stretchr/testify/require"
)

func encodeSTL(t *testing.T, tris [][12]float32) []byte {
	t.Helper()

	var buf bytes.Buffer
	var header [80]byte
	copy(header[:], "binary stl for testing")
	buf.Write(header[:])

	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(tris))))
	for _, tri := range tris {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, tri))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))
	}
	return buf.Bytes()
}

func TestDecodeSTL(t *testing.T) {
	data := encodeSTL(t, [][12]float32{
		// normal, then three vertices
		{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		{0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 0},
	})

	tri, err := geom.DecodeSTL(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, tri.Points, 6)
	require.Len(t, tri.Triangles, 2)
	require.True(t, tri.Points[0].Equal(geom.Pt(0, 0, 0)))
	require.True(t, tri.Points[1].Equal(geom.Pt(1, 0, 0)))
	require.True(t, tri.Points[5].Equal(geom.Pt(0, 1, 0)))
	require.True(t, tri.Triangles[0].Equal(geom.IPt(0, 1, 2)))
	require.True(t, tri.Triangles[1].Equal(geom.IPt(3, 4, 5)))

	b := tri.Bounds()
	require.True(t, b.Lo.Equal(geom.Pt(0, 0, 0)))
	require.True(t, b.Hi.Equal(geom.Pt(1, 1, 0)))
}

func TestDecodeSTLRejectsASCII(t *testing.T) {
	ascii := []byte("solid cube\n  facet normal 0 0 1\n  endfacet\nendsolid cube\n" +
		"                                                                ")
	_, err := geom.DecodeSTL(bytes.NewReader(ascii))
	require.ErrorIs(t, err, geom.ErrBadHeader)
}

func TestDecodeSTLTruncated(t *testing.T) {
	data := encodeSTL(t, [][12]float32{
		{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0},
	})
	_, err := geom.DecodeSTL(bytes.NewReader(data[:len(data)-10]))
	require.Error(t, err)
}

func TestReadSTLFile(t *testing.T) {
	data := encodeSTL(t, [][12]float32{
		{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0},
	})
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tri, err := geom.ReadSTLFile(path)
	require.NoError(t, err)
	require.Len(t, tri.Triangles, 1)

	_, err = geom.ReadSTLFile(filepath.Join(t.TempDir(), "missing.stl"))
	require.Error(t, err)
}
