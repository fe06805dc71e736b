package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// VTFA format errors.
var (
	ErrInvalidVTFAMagic       = errors.New("invalid VTFA magic: expected 'VTFA'")
	ErrUnsupportedVTFAVersion = errors.New("unsupported VTFA version")
	ErrTruncatedVTFAData      = errors.New("truncated VTFA data")
)

// VTFAVersion is the only VTFA revision written by Encode.
const VTFAVersion uint16 = 1

// vtfaHeaderSize is magic(4) + version(2) + reserved(2) + bones(4) + rows(4).
const vtfaHeaderSize = 16

// VTFA is a baked animation texture: one 4x4 bone matrix per texel,
// Bones texels per row, Rows rows. Matrices are stored column-major.
type VTFA struct {
	Version  uint16
	Bones    uint32
	Rows     uint32
	Matrices [][16]float32 // row-major over texels: Matrices[row*Bones+bone]
}

// ParseVTFA parses a VTFA file from raw bytes.
func ParseVTFA(data []byte) (*VTFA, error) {
	if len(data) < vtfaHeaderSize {
		return nil, ErrTruncatedVTFAData
	}

	if string(data[0:4]) != "VTFA" {
		return nil, ErrInvalidVTFAMagic
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != VTFAVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVTFAVersion, version)
	}

	bones := binary.LittleEndian.Uint32(data[8:12])
	rows := binary.LittleEndian.Uint32(data[12:16])

	// 16-bit row addressing in the shader bounds both dimensions.
	if bones == 0 || rows == 0 || bones > 1024 || rows > 65535 {
		return nil, fmt.Errorf("invalid VTFA dimensions: %d bones x %d rows", bones, rows)
	}

	count := int(bones) * int(rows)
	if len(data)-vtfaHeaderSize < count*64 {
		return nil, fmt.Errorf("%w: need %d texels", ErrTruncatedVTFAData, count)
	}

	tex := &VTFA{
		Version:  version,
		Bones:    bones,
		Rows:     rows,
		Matrices: make([][16]float32, count),
	}

	r := bytes.NewReader(data[vtfaHeaderSize:])
	if err := binary.Read(r, binary.LittleEndian, tex.Matrices); err != nil {
		return nil, fmt.Errorf("%w: reading texels: %v", ErrTruncatedVTFAData, err)
	}

	return tex, nil
}

// ParseVTFAFile parses a VTFA file from disk.
func ParseVTFAFile(path string) (*VTFA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading VTFA file: %w", err)
	}
	return ParseVTFA(data)
}

// Encode serializes the texture in VTFA format.
func (t *VTFA) Encode() ([]byte, error) {
	if int(t.Bones)*int(t.Rows) != len(t.Matrices) {
		return nil, fmt.Errorf("VTFA: %d matrices for %d bones x %d rows", len(t.Matrices), t.Bones, t.Rows)
	}

	buf := new(bytes.Buffer)
	buf.Grow(vtfaHeaderSize + len(t.Matrices)*64)
	buf.WriteString("VTFA")
	binary.Write(buf, binary.LittleEndian, VTFAVersion)
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, t.Bones)
	binary.Write(buf, binary.LittleEndian, t.Rows)
	if err := binary.Write(buf, binary.LittleEndian, t.Matrices); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
