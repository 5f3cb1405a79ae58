package ioformat

import "io"

const (
	topologyMagic   = "TCCH"
	topologyVersion = uint16(1)
)

// EncodeOrder writes a CCH's elimination order: the one artifact needed
// to re-derive the full topology deterministically via cch.Build(g,
// order), since contraction, the elimination tree, and every triangle
// are pure functions of (g, order). Persisting the derived arrays
// themselves would only duplicate what Build already recomputes cheaply.
func EncodeOrder(w io.Writer, order []uint32) error {
	bw, flush := bufferedWriter(w)
	if err := writeHeader(bw, topologyMagic, topologyVersion); err != nil {
		return err
	}
	if err := writeUint32s(bw, order); err != nil {
		return err
	}
	return flush()
}

// DecodeOrder reads back an elimination order written by EncodeOrder.
func DecodeOrder(r io.Reader) ([]uint32, error) {
	if err := readHeader(r, topologyMagic, topologyVersion); err != nil {
		return nil, err
	}
	return readUint32s(r)
}
