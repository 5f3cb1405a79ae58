package ioformat

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/katalvlaran/tdcch/customization"
)

const (
	intervalMagic   = "TICV"
	intervalVersion = uint16(1)
)

// EncodeIntervalVectors writes an interval-minima customization's
// up/down K-bucket vectors (spec §8.5 round-trip, applied to C5's
// interval-minima algebra used by the corridor potential's metric).
func EncodeIntervalVectors(w io.Writer, ic *customization.IntervalMinimaCustomizer, numUpEdges int) error {
	bw, flush := bufferedWriter(w)
	if err := writeHeader(bw, intervalMagic, intervalVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(numUpEdges)); err != nil {
		return fmt.Errorf("ioformat: write edge count: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(ic.K())); err != nil {
		return fmt.Errorf("ioformat: write k: %w", err)
	}
	for e := 0; e < numUpEdges; e++ {
		if err := writeIntervalVector(bw, ic.Up(uint32(e))); err != nil {
			return err
		}
	}
	for e := 0; e < numUpEdges; e++ {
		if err := writeIntervalVector(bw, ic.Down(uint32(e))); err != nil {
			return err
		}
	}
	return flush()
}

// IntervalVectors holds decoded per-up-edge interval-minima vectors.
type IntervalVectors struct {
	K        int
	Up, Down []customization.IntervalVector
}

// DecodeIntervalVectors reads back interval vectors written by
// EncodeIntervalVectors.
func DecodeIntervalVectors(r io.Reader) (IntervalVectors, error) {
	var out IntervalVectors
	if err := readHeader(r, intervalMagic, intervalVersion); err != nil {
		return out, err
	}
	var n, k uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return out, fmt.Errorf("ioformat: read edge count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &k); err != nil {
		return out, fmt.Errorf("ioformat: read k: %w", err)
	}
	out.K = int(k)
	out.Up = make([]customization.IntervalVector, n)
	out.Down = make([]customization.IntervalVector, n)
	for i := range out.Up {
		v, err := readIntervalVector(r, int(k))
		if err != nil {
			return out, err
		}
		out.Up[i] = v
	}
	for i := range out.Down {
		v, err := readIntervalVector(r, int(k))
		if err != nil {
			return out, err
		}
		out.Down[i] = v
	}
	return out, nil
}

func writeIntervalVector(w io.Writer, v customization.IntervalVector) error {
	for _, m := range v.Mins {
		if err := binary.Write(w, binary.LittleEndian, m); err != nil {
			return fmt.Errorf("ioformat: write min: %w", err)
		}
	}
	return writeScalarBound(w, v.Bound)
}

func readIntervalVector(r io.Reader, k int) (customization.IntervalVector, error) {
	v := customization.IntervalVector{Mins: make([]uint32, k)}
	for i := range v.Mins {
		if err := binary.Read(r, binary.LittleEndian, &v.Mins[i]); err != nil {
			return v, fmt.Errorf("ioformat: read min %d: %w", i, err)
		}
	}
	b, err := readScalarBound(r)
	if err != nil {
		return v, err
	}
	v.Bound = b
	return v, nil
}
