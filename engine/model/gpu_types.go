// Package model defines the byte layout of mesh data handed to the renderer.
package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VertexStride is the size of one encoded GPUVertex in bytes.
	VertexStride = 48
	// IndexStride is the size of one encoded uint32 index in bytes.
	IndexStride = 4
)

// GPUVertex is the GPU-aligned representation of a single morph mesh vertex.
// Size: 48 bytes, little-endian, no padding.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in object space (12 bytes)
	Normal   [3]float32 // offset 12: unit normal (12 bytes)
	TexCoord [2]float32 // offset 24: UV coordinate (8 bytes)
	Color    [4]float32 // offset 32: per-vertex RGBA color (16 bytes)
}

// MarshalInto writes the vertex into buf, which must hold at least VertexStride bytes.
//
// Parameters:
//   - buf: destination slice
func (g *GPUVertex) MarshalInto(buf []byte) {
	_ = buf[VertexStride-1]
	putFloats(buf[0:12], g.Position[:])
	putFloats(buf[12:24], g.Normal[:])
	putFloats(buf[24:32], g.TexCoord[:])
	putFloats(buf[32:48], g.Color[:])
}

// Marshal serializes the vertex into a fresh VertexStride-byte buffer.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	g.MarshalInto(buf)
	return buf
}

// UnmarshalVertex decodes one vertex from buf.
func UnmarshalVertex(buf []byte) GPUVertex {
	_ = buf[VertexStride-1]
	var g GPUVertex
	getFloats(buf[0:12], g.Position[:])
	getFloats(buf[12:24], g.Normal[:])
	getFloats(buf[24:32], g.TexCoord[:])
	getFloats(buf[32:48], g.Color[:])
	return g
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
}

func getFloats(buf []byte, values []float32) {
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
}

// EncodeVertices packs parallel attribute arrays into dst as consecutive GPUVertex records.
// colors may be nil, in which case colorFn supplies each vertex color from its normal.
//
// Parameters:
//   - dst: destination, exactly len(positions)*VertexStride bytes
//   - positions, normals: per-vertex attributes, equal length
//   - uvs: per-vertex texture coordinates, equal length
//   - colors: optional per-vertex colors
//
// Returns:
//   - error: if any length disagrees with dst or with positions
func EncodeVertices(dst []byte, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, colors []mgl32.Vec4) error {
	n := len(positions)
	if len(normals) != n || len(uvs) != n || (colors != nil && len(colors) != n) {
		return fmt.Errorf("model: attribute lengths differ (positions %d, normals %d, uvs %d, colors %d)", n, len(normals), len(uvs), len(colors))
	}
	if len(dst) != n*VertexStride {
		return fmt.Errorf("model: vertex region is %d bytes, want %d", len(dst), n*VertexStride)
	}
	var v GPUVertex
	for i := range positions {
		v.Position = positions[i]
		v.Normal = normals[i]
		v.TexCoord = uvs[i]
		if colors != nil {
			v.Color = colors[i]
		} else {
			v.Color = NormalColor(normals[i])
		}
		v.MarshalInto(dst[i*VertexStride:])
	}
	return nil
}

// NormalColor maps a unit normal into an opaque RGB color.
func NormalColor(n mgl32.Vec3) [4]float32 {
	return [4]float32{n[0]*0.5 + 0.5, n[1]*0.5 + 0.5, n[2]*0.5 + 0.5, 1}
}

// EncodeIndices copies indices into dst as little-endian uint32 values.
//
// Parameters:
//   - dst: destination, exactly len(indices)*IndexStride bytes
//   - indices: the index list
//
// Returns:
//   - error: if dst has the wrong size
func EncodeIndices(dst []byte, indices []uint32) error {
	if len(dst) != len(indices)*IndexStride {
		return fmt.Errorf("model: index region is %d bytes, want %d", len(dst), len(indices)*IndexStride)
	}
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(dst[i*IndexStride:], idx)
	}
	return nil
}

// DecodeIndex reads the i-th index from an encoded index region.
func DecodeIndex(buf []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(buf[i*IndexStride:])
}
