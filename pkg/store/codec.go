package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

// SnapshotExtension is the file suffix of encoded snapshots.
const SnapshotExtension = ".json.zst"

// EncodeSnapshot writes snap as zstd-compressed JSON.
func EncodeSnapshot(w io.Writer, snap common.Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (common.Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var snap common.Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return common.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// MarshalSnapshot encodes snap into a byte slice.
func MarshalSnapshot(snap common.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a byte slice produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (common.Snapshot, error) {
	return DecodeSnapshot(bytes.NewReader(data))
}
