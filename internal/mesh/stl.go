package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const stlHeaderSize = 80

// STLSize returns the byte size of a binary STL with n triangles.
func STLSize(n int) int {
	return stlHeaderSize + 4 + 50*n
}

// WriteSTL encodes m as binary STL. The name is stored in the 80-byte header.
func WriteSTL(w io.Writer, name string, m *Mesh) error {
	bw := bufio.NewWriter(w)

	var header [stlHeaderSize]byte
	copy(header[:], name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write STL header: %w", err)
	}

	n := m.TriangleCount()
	if err := binary.Write(bw, binary.LittleEndian, uint32(n)); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	var rec [50]byte
	for i := 0; i < n; i++ {
		o := i * 9
		putFloats(rec[0:12], m.Normals[o:o+3])
		putFloats(rec[12:48], m.Positions[o:o+9])
		rec[48], rec[49] = 0, 0
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func putFloats(dst []byte, src []float32) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// ReadSTL decodes a binary STL. Stored normals are ignored and recomputed
// from the vertex winding.
func ReadSTL(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read STL header: %w", err)
	}
	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	m := &Mesh{Name: trimHeader(header[:])}
	var rec [50]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d of %d: %w", i, n, err)
		}
		var v [9]float64
		for k := range v {
			v[k] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[12+k*4:])))
		}
		m.addTriangle(vec(v[0:3]), vec(v[3:6]), vec(v[6:9]))
	}
	return m, nil
}

func trimHeader(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}
