package geom

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Triangulation is a triangulated surface: a flat list of points and
// triangles indexing into it.
type Triangulation struct {
	Points    []Point
	Triangles []IntPoint
}

// ErrBadHeader indicates input that is not a binary STL stream.
var ErrBadHeader = errors.New("bad STL header")

const stlHeaderSize = 80

// ReadSTLFile reads a binary STL file from path.
func ReadSTLFile(path string) (*Triangulation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	return DecodeSTL(file)
}

// DecodeSTL decodes a binary little-endian STL stream: an 80-byte
// header, a uint32 triangle count, and one 50-byte record per
// triangle. ASCII STL input is rejected with [ErrBadHeader].
func DecodeSTL(r io.Reader) (*Triangulation, error) {
	d := stlDecoder{br: bufio.NewReader(r)}
	return d.decode()
}

type stlDecoder struct {
	br *bufio.Reader
}

// stlTri is the on-disk layout of one triangle record.
type stlTri struct {
	Norm   [3]float32
	V1     [3]float32
	V2     [3]float32
	V3     [3]float32
	Attrib uint16
}

func (d *stlDecoder) decode() (t *Triangulation, err error) {
	defer d.catch(&err)

	var header [stlHeaderSize]byte
	_, rerr := io.ReadFull(d.br, header[:])
	if rerr != nil {
		d.throw(fmt.Errorf("read header: %w", rerr))
	}
	if bytes.HasPrefix(header[:], []byte("solid")) {
		d.throw(ErrBadHeader)
	}

	count := d.uint32()
	out := Triangulation{
		Points:    make([]Point, 0, count*3),
		Triangles: make([]IntPoint, 0, count),
	}
	for i := range int(count) {
		var tri stlTri
		d.throw(binary.Read(d.br, binary.LittleEndian, &tri))
		out.Points = append(out.Points, vertex(tri.V1), vertex(tri.V2), vertex(tri.V3))
		out.Triangles = append(out.Triangles, IPt(i*3, i*3+1, i*3+2))
	}

	return &out, nil
}

func vertex(v [3]float32) Point {
	return Pt(float64(v[0]), float64(v[1]), float64(v[2]))
}

func (d *stlDecoder) uint32() (v uint32) {
	d.throw(binary.Read(d.br, binary.LittleEndian, &v))
	return v
}

type stlError struct {
	err error
}

func (d *stlDecoder) throw(err error) {
	if err != nil {
		panic(stlError{err: err})
	}
}

func (d *stlDecoder) catch(err *error) {
	switch r := recover().(type) {
	case stlError:
		*err = r.err
	case nil:
	default:
		panic(r)
	}
}

// Bounds returns the bounding box of the triangulation's points.
func (t *Triangulation) Bounds() Box {
	if len(t.Points) == 0 {
		return Box{}
	}

	lo := make(Point, len(t.Points[0]))
	hi := make(Point, len(t.Points[0]))
	copy(lo, t.Points[0])
	copy(hi, t.Points[0])
	for _, p := range t.Points[1:] {
		for i, x := range p {
			lo[i] = math.Min(lo[i], x)
			hi[i] = math.Max(hi[i], x)
		}
	}
	return Box{Lo: lo, Hi: hi}
}
