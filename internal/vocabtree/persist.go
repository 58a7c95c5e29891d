package vocabtree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/kuandriy/vocabtree/internal/checksum"
	"github.com/kuandriy/vocabtree/internal/persist"
)

// magic identifies a checksummed vocabtree file. Files that don't start
// with it are read as legacy (pre-checksum, bare spec-layout) files — see
// the endianness/versioning design note.
var magic = [4]byte{'V', 'T', 'R', '1'}

const formatVersion uint32 = 1

// cvmatHeader mirrors the source's OpenCV-style matrix header used to frame
// each node's raw centroid bytes: element size, element type tag (the
// source's CV_32F for float32), and dimensions.
type cvmatHeader struct {
	ElemSize uint64
	ElemType int32
	Rows     uint32
	Cols     uint32
}

const cvElemTypeFloat32 = 5 // OpenCV's CV_32F tag, carried for wire fidelity

// Save writes t to path as: a 4-byte magic, a uint32 format version, the
// spec's exact byte stream (split, maxLevel, numberOfNodes, weights,
// database vectors, inverted files, per-node topology+mean records), and a
// trailing blake3-256 digest of that exact byte stream. The write goes
// through persist.WriteAtomic — a temp file plus rename — so a crash
// mid-write never leaves a torn index at path; at worst a stale .tmp is
// left behind for the next startup's persist.RecoverTmpFiles to clean up.
func Save(t *Tree, path string) error {
	assertTrained(t)

	var body bytes.Buffer
	if err := writeBody(&body, t); err != nil {
		return fmt.Errorf("vocabtree: encode: %w", err)
	}
	sum := checksum.Sum(body.Bytes())

	var full bytes.Buffer
	full.Write(magic[:])
	if err := binary.Write(&full, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	full.Write(body.Bytes())
	full.Write(sum[:])

	if err := persist.WriteAtomic(path, full.Bytes()); err != nil {
		return fmt.Errorf("vocabtree: save %s: %w", path, err)
	}
	return nil
}

// Load reads a Tree previously written by Save. A checksum mismatch or a
// stream that ends before the spec's layout is fully consumed is reported
// as ErrCorrupt; Load never returns a non-nil *Tree alongside a non-nil
// error, so a caller cannot accidentally query a partially-read index.
//
// Files that don't start with the magic are read as legacy (pre-checksum)
// files: the spec's bare layout, with no trailer to verify.
func Load(path string) (*Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vocabtree: read %s: %w", path, err)
	}

	if len(raw) >= 4 && bytes.Equal(raw[:4], magic[:]) {
		if len(raw) < 4+4+checksum.Size {
			return nil, fmt.Errorf("%w: file too short for a checksummed index", ErrCorrupt)
		}
		body := raw[8 : len(raw)-checksum.Size]
		var want [checksum.Size]byte
		copy(want[:], raw[len(raw)-checksum.Size:])
		if !checksum.Verify(body, want) {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
		}
		t, err := readBody(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return t, nil
	}

	t, err := readBody(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return t, nil
}

func writeBody(w io.Writer, t *Tree) error {
	if err := binary.Write(w, binary.LittleEndian, t.Split); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.MaxLevel); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.NumberOfNodes); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.Weights); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.DatabaseVectors))); err != nil {
		return err
	}
	for id, vec := range t.DatabaseVectors {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.InvertedFiles))); err != nil {
		return err
	}
	for _, postings := range t.InvertedFiles {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(postings))); err != nil {
			return err
		}
		for id, count := range postings {
			if err := binary.Write(w, binary.LittleEndian, id); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, count); err != nil {
				return err
			}
		}
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		fields := []uint32{n.FirstChildIndex, n.Index, n.InvertedFileLength, n.Level, n.LevelIndex}
		for _, f := range fields {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return err
			}
		}
		header := cvmatHeader{ElemSize: 4, ElemType: cvElemTypeFloat32, Rows: 1, Cols: uint32(len(n.Mean))}
		if err := binary.Write(w, binary.LittleEndian, header); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, n.Mean); err != nil {
			return err
		}
	}
	return nil
}

func readBody(r io.Reader) (*Tree, error) {
	t := &Tree{DatabaseVectors: make(map[uint64][]float32)}

	if err := binary.Read(r, binary.LittleEndian, &t.Split); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &t.MaxLevel); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &t.NumberOfNodes); err != nil {
		return nil, err
	}

	t.Weights = make([]float32, t.NumberOfNodes)
	if err := binary.Read(r, binary.LittleEndian, t.Weights); err != nil {
		return nil, err
	}

	var dbCount uint32
	if err := binary.Read(r, binary.LittleEndian, &dbCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < dbCount; i++ {
		var id uint64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		vec := make([]float32, t.NumberOfNodes)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, err
		}
		t.DatabaseVectors[id] = vec
	}

	var ifCount uint32
	if err := binary.Read(r, binary.LittleEndian, &ifCount); err != nil {
		return nil, err
	}
	t.InvertedFiles = make([]map[uint64]uint32, ifCount)
	for i := uint32(0); i < ifCount; i++ {
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		postings := make(map[uint64]uint32, size)
		for j := uint32(0); j < size; j++ {
			var id uint64
			var count uint32
			if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
				return nil, err
			}
			postings[id] = count
		}
		t.InvertedFiles[i] = postings
	}

	t.Nodes = make([]Node, t.NumberOfNodes)
	for i := uint32(0); i < t.NumberOfNodes; i++ {
		n := &t.Nodes[i]
		fields := []*uint32{&n.FirstChildIndex, &n.Index, &n.InvertedFileLength, &n.Level, &n.LevelIndex}
		for _, f := range fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, err
			}
		}
		var header cvmatHeader
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return nil, err
		}
		n.Mean = make([]float32, header.Rows*header.Cols)
		if err := binary.Read(r, binary.LittleEndian, n.Mean); err != nil {
			return nil, err
		}
	}

	return t, nil
}
