package ioformat

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/katalvlaran/tdcch/customization"
	"github.com/katalvlaran/tdcch/elimtree"
)

const (
	scalarMagic   = "TSCB"
	scalarVersion = uint16(1)
)

// ScalarBounds holds decoded per-up-edge (lo, hi) bounds and implements
// elimtree.Metric directly, so a customization's output can be queried
// immediately after a round trip without reconstructing a
// customization.ScalarCustomizer (whose fields are private precisely
// because callers are expected to drive it through Customize, not
// populate it by hand).
type ScalarBounds struct {
	UpBounds, DownBounds []customization.ScalarBound
}

func (b ScalarBounds) Up(e uint32) elimtree.Bound   { return b.UpBounds[e] }
func (b ScalarBounds) Down(e uint32) elimtree.Bound { return b.DownBounds[e] }

// EncodeScalarBounds writes a scalar customization's up/down (lo, hi)
// arrays (spec §8.5's round-trip property, applied to C5's scalar
// algebra).
func EncodeScalarBounds(w io.Writer, sc *customization.ScalarCustomizer, numUpEdges int) error {
	bw, flush := bufferedWriter(w)
	if err := writeHeader(bw, scalarMagic, scalarVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(numUpEdges)); err != nil {
		return fmt.Errorf("ioformat: write edge count: %w", err)
	}
	for e := 0; e < numUpEdges; e++ {
		if err := writeScalarBound(bw, sc.Up(uint32(e))); err != nil {
			return err
		}
	}
	for e := 0; e < numUpEdges; e++ {
		if err := writeScalarBound(bw, sc.Down(uint32(e))); err != nil {
			return err
		}
	}
	return flush()
}

// DecodeScalarBounds reads back a scalar customization written by
// EncodeScalarBounds.
func DecodeScalarBounds(r io.Reader) (ScalarBounds, error) {
	var out ScalarBounds
	if err := readHeader(r, scalarMagic, scalarVersion); err != nil {
		return out, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return out, fmt.Errorf("ioformat: read edge count: %w", err)
	}
	out.UpBounds = make([]customization.ScalarBound, n)
	out.DownBounds = make([]customization.ScalarBound, n)
	for i := range out.UpBounds {
		b, err := readScalarBound(r)
		if err != nil {
			return out, err
		}
		out.UpBounds[i] = b
	}
	for i := range out.DownBounds {
		b, err := readScalarBound(r)
		if err != nil {
			return out, err
		}
		out.DownBounds[i] = b
	}
	return out, nil
}

func writeScalarBound(w io.Writer, b customization.ScalarBound) error {
	if err := binary.Write(w, binary.LittleEndian, b.Lo); err != nil {
		return fmt.Errorf("ioformat: write lo: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, b.Hi); err != nil {
		return fmt.Errorf("ioformat: write hi: %w", err)
	}
	return nil
}

func readScalarBound(r io.Reader) (customization.ScalarBound, error) {
	var b customization.ScalarBound
	if err := binary.Read(r, binary.LittleEndian, &b.Lo); err != nil {
		return b, fmt.Errorf("ioformat: read lo: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &b.Hi); err != nil {
		return b, fmt.Errorf("ioformat: read hi: %w", err)
	}
	return b, nil
}
