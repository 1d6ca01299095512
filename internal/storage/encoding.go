package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVectors packs equally sized vectors into a little-endian float32 BLOB.
func EncodeVectors(vectors [][]float32, dim int) ([]byte, error) {
	if len(vectors) == 0 || dim == 0 {
		return nil, nil
	}
	b := make([]byte, 0, len(vectors)*dim*4)
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		for _, v := range vec {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
		}
	}
	return b, nil
}

// DecodeVectors unpacks a BLOB produced by EncodeVectors.
func DecodeVectors(b []byte, count, dim int) ([][]float32, error) {
	if count == 0 {
		return [][]float32{}, nil
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d for %d vectors", dim, count)
	}
	if len(b) != count*dim*4 {
		return nil, fmt.Errorf("invalid embedding blob length %d, want %d", len(b), count*dim*4)
	}

	vectors := make([][]float32, count)
	for i := range count {
		vec := make([]float32, dim)
		for j := range dim {
			off := (i*dim + j) * 4
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
		}
		vectors[i] = vec
	}
	return vectors, nil
}
