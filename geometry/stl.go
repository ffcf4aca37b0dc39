package geometry

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteSTL writes the mesh in binary STL form. The mesh transform is baked
// into the written coordinates.
func WriteSTL(w io.Writer, m *Mesh) error {
	baked := m.Baked()

	var header [80]byte
	copy(header[:], "bitbloq scene export")
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(baked.TriangleCount())); err != nil {
		return fmt.Errorf("stl: write triangle count: %w", err)
	}

	buf := make([]float32, 12)
	for i := 0; i+8 < len(baked.Vertices); i += 9 {
		// Facet normal followed by the three vertices.
		buf[0] = float32(baked.Normals[i])
		buf[1] = float32(baked.Normals[i+1])
		buf[2] = float32(baked.Normals[i+2])
		for j := 0; j < 9; j++ {
			buf[3+j] = float32(baked.Vertices[i+j])
		}
		if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("stl: write facet: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("stl: write attribute count: %w", err)
		}
	}
	return nil
}
