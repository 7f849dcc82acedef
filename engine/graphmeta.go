package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// BlockMeta describes one contiguous range of sparse vertices sharing a
// block: vertices [VLo, VUp) have their edge lists packed starting at
// edge offset ELo, with aggregate out/in degree ODg/IDg for the range.
type BlockMeta struct {
	BID      uint32
	VLo, VUp uint64
	ELo      uint64
	ODg      uint64
	IDg      uint64
}

// DenseVertexMeta describes a single high-degree vertex whose edge list
// is large enough to be spread across multiple flash blocks starting at BLo.
type DenseVertexMeta struct {
	ELo     uint64
	ODg     uint64
	IDg     uint64
	BLo     uint32
	NBlocks uint32
}

// GraphMetadata is the graph header (C7): global counts plus the
// per-block and per-dense-vertex tables needed to translate a vertex id
// into the block(s) holding its edge list. Binary vertex/edge payload
// files are out of scope (owned by the graph importer); only the header
// is parsed here.
type GraphMetadata struct {
	Weighted bool
	NVerts   uint64
	NDVerts  uint64
	NEdges   uint64
	NBlocks  uint32
	NDBlocks uint32
	BlockSize uint32

	Blocks      []BlockMeta // sorted ascending by VLo
	DenseVerts  map[uint64]DenseVertexMeta
}

// BinarySearchBlock returns the block id whose [VLo,VUp) range contains
// vid. Reports false if vid is out of range or falls in a gap (e.g. a
// dense vertex, which has no entry in Blocks).
func (g *GraphMetadata) BinarySearchBlock(vid uint64) (uint32, bool) {
	n := len(g.Blocks)
	i := sort.Search(n, func(i int) bool { return g.Blocks[i].VUp > vid })
	if i >= n || g.Blocks[i].VLo > vid {
		return 0, false
	}
	return g.Blocks[i].BID, true
}

// DenseVertex reports whether vid is a dense vertex and returns its metadata.
func (g *GraphMetadata) DenseVertex(vid uint64) (DenseVertexMeta, bool) {
	dv, ok := g.DenseVerts[vid]
	return dv, ok
}

// ParseGraphHeader reads the line-oriented header format:
//
//	key = value
//	[block N]
//	key = value
//	[dense V]
//	key = value
//
// Top-level keys set the global counters; [block N] sections append a
// BlockMeta (in any order: Blocks is sorted by VLo once parsing ends);
// [dense V] sections add a DenseVertexMeta keyed by vertex id V.
func ParseGraphHeader(r io.Reader) (*GraphMetadata, error) {
	g := &GraphMetadata{DenseVerts: make(map[uint64]DenseVertexMeta)}

	var curBlock *BlockMeta
	var curBlockID uint32
	var curDenseVID uint64
	var curDense *DenseVertexMeta

	flush := func() {
		if curBlock != nil {
			g.Blocks = append(g.Blocks, *curBlock)
			curBlock = nil
		}
		if curDense != nil {
			g.DenseVerts[curDenseVID] = *curDense
			curDense = nil
		}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			flush()
			header := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			fields := strings.Fields(header)
			if len(fields) != 2 {
				return nil, fmt.Errorf("graph header line %d: malformed section %q", lineNo, line)
			}
			n, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("graph header line %d: %w", lineNo, err)
			}
			switch fields[0] {
			case "block":
				curBlockID = uint32(n)
				curBlock = &BlockMeta{BID: curBlockID}
			case "dense":
				curDenseVID = n
				curDense = &DenseVertexMeta{}
			default:
				return nil, fmt.Errorf("graph header line %d: unknown section %q", lineNo, fields[0])
			}
			continue
		}

		key, val, err := splitKV(line)
		if err != nil {
			return nil, fmt.Errorf("graph header line %d: %w", lineNo, err)
		}
		switch {
		case curBlock != nil:
			if err := assignBlockField(curBlock, key, val); err != nil {
				return nil, fmt.Errorf("graph header line %d: %w", lineNo, err)
			}
		case curDense != nil:
			if err := assignDenseField(curDense, key, val); err != nil {
				return nil, fmt.Errorf("graph header line %d: %w", lineNo, err)
			}
		default:
			if err := assignGlobalField(g, key, val); err != nil {
				return nil, fmt.Errorf("graph header line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	sort.Slice(g.Blocks, func(i, j int) bool { return g.Blocks[i].VLo < g.Blocks[j].VLo })
	return g, nil
}

// LoadGraphHeaderFile opens path and parses it as a graph header file.
func LoadGraphHeaderFile(path string) (*GraphMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph header %s: %w", path, err)
	}
	defer f.Close()
	return ParseGraphHeader(f)
}

func splitKV(line string) (string, string, error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", fmt.Errorf("expected key = value, got %q", line)
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), nil
}

func assignGlobalField(g *GraphMetadata, key, val string) error {
	switch key {
	case "weighted":
		g.Weighted = val == "true" || val == "1"
	case "nverts":
		return parseUint(val, &g.NVerts)
	case "ndverts":
		return parseUint(val, &g.NDVerts)
	case "nedges":
		return parseUint(val, &g.NEdges)
	case "nblocks":
		var v uint64
		if err := parseUint(val, &v); err != nil {
			return err
		}
		g.NBlocks = uint32(v)
	case "ndblocks":
		var v uint64
		if err := parseUint(val, &v); err != nil {
			return err
		}
		g.NDBlocks = uint32(v)
	case "block_size":
		var v uint64
		if err := parseUint(val, &v); err != nil {
			return err
		}
		g.BlockSize = uint32(v)
	default:
		return fmt.Errorf("unknown global field %q", key)
	}
	return nil
}

func assignBlockField(b *BlockMeta, key, val string) error {
	switch key {
	case "vlo":
		return parseUint(val, &b.VLo)
	case "vup":
		return parseUint(val, &b.VUp)
	case "elo":
		return parseUint(val, &b.ELo)
	case "odg":
		return parseUint(val, &b.ODg)
	case "idg":
		return parseUint(val, &b.IDg)
	default:
		return fmt.Errorf("unknown block field %q", key)
	}
}

func assignDenseField(d *DenseVertexMeta, key, val string) error {
	switch key {
	case "elo":
		return parseUint(val, &d.ELo)
	case "odg":
		return parseUint(val, &d.ODg)
	case "idg":
		return parseUint(val, &d.IDg)
	case "blo":
		var v uint64
		if err := parseUint(val, &v); err != nil {
			return err
		}
		d.BLo = uint32(v)
	case "nblocks":
		var v uint64
		if err := parseUint(val, &v); err != nil {
			return err
		}
		d.NBlocks = uint32(v)
	default:
		return fmt.Errorf("unknown dense field %q", key)
	}
	return nil
}

func parseUint(val string, dst *uint64) error {
	v, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", val, err)
	}
	*dst = v
	return nil
}
