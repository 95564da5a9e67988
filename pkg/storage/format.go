package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Snapshot file layout: a fixed little-endian SnapshotHeader followed by
// the MessagePack payload, LZ4 block compressed when FlagCompressed is set.
const (
	SnapshotMagic   = "BKSN"
	SnapshotVersion = 1

	// FlagCompressed marks an LZ4 block payload; without it the payload is raw MessagePack
	FlagCompressed uint8 = 1 << 0

	snapshotHeaderSize = 16
)

// SnapshotHeader precedes the payload of a snapshot file
type SnapshotHeader struct {
	Magic    [4]byte
	Version  uint8
	Flags    uint8
	_        [2]byte
	RawSize  uint32 // uncompressed payload length
	Checksum uint32 // CRC-32 (IEEE) of the uncompressed payload
}

// WriteSnapshotHeader writes the header describing raw, the uncompressed payload
func WriteSnapshotHeader(w io.Writer, flags uint8, raw []byte) error {
	header := SnapshotHeader{
		Version:  SnapshotVersion,
		Flags:    flags,
		RawSize:  uint32(len(raw)),
		Checksum: crc32.ChecksumIEEE(raw),
	}
	copy(header.Magic[:], SnapshotMagic)
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadSnapshotHeader reads a header and checks its magic and version
func ReadSnapshotHeader(r io.Reader) (*SnapshotHeader, error) {
	var header SnapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header.Magic[:]) != SnapshotMagic {
		return nil, fmt.Errorf("not a snapshot file: magic %q", string(header.Magic[:]))
	}
	if header.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}
	return &header, nil
}

// Verify checks an uncompressed payload against the header
func (h *SnapshotHeader) Verify(raw []byte) error {
	if len(raw) != int(h.RawSize) {
		return fmt.Errorf("corrupt data: expected %d bytes, got %d", h.RawSize, len(raw))
	}
	if sum := crc32.ChecksumIEEE(raw); sum != h.Checksum {
		return fmt.Errorf("corrupt data: checksum %08x, want %08x", sum, h.Checksum)
	}
	return nil
}

// SnapshotData is the MessagePack payload of a snapshot
type SnapshotData struct {
	Collections map[string]map[string]interface{} `msgpack:"collections"`
	Indexes     map[string]map[string][]string    `msgpack:"indexes,omitempty"`
	Counters    map[string]int64                  `msgpack:"counters,omitempty"`
	Metadata    map[string]interface{}            `msgpack:"metadata,omitempty"`
}

func newSnapshotData() *SnapshotData {
	return &SnapshotData{
		Collections: make(map[string]map[string]interface{}),
		Indexes:     make(map[string]map[string][]string),
		Counters:    make(map[string]int64),
		Metadata:    make(map[string]interface{}),
	}
}
