package dist

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Transport tunes how matrices are cut into wire chunks.
type Transport struct {
	// MessageGroupSize caps values per chunk.
	MessageGroupSize int
	// FrameSize caps the encoded size of one chunk message in bytes. The
	// bound covers steady-state messages; gob's one-time type descriptors
	// at the start of a stream are not counted against it.
	FrameSize int
}

// WithDefaults fills zero fields with 1024 values per group and 64 KiB
// frames.
func (t Transport) WithDefaults() Transport {
	if t.MessageGroupSize <= 0 {
		t.MessageGroupSize = 1024
	}
	if t.FrameSize <= 0 {
		t.FrameSize = 1 << 16
	}
	return t
}

// TransportError reports a wire-level failure talking to one node.
type TransportError struct {
	Node   string
	Reason string
}

func (e *TransportError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("transport: %s", e.Reason)
	}
	return fmt.Sprintf("transport %s: %s", e.Node, e.Reason)
}

// Encoded chunk cost estimate: fixed envelope overhead plus per-value gob
// cost. Conservative for steady-state messages on both counts; the stream's
// initial type descriptors are excluded from the FrameSize bound.
const (
	chunkOverhead = 96
	bytesPerValue = 9
)

func (t Transport) maxChunkValues() (int, error) {
	byFrame := (t.FrameSize - chunkOverhead) / bytesPerValue
	if byFrame < 1 {
		return 0, &TransportError{Reason: fmt.Sprintf("frame size %d cannot fit a single value", t.FrameSize)}
	}
	if t.MessageGroupSize < byFrame {
		return t.MessageGroupSize, nil
	}
	return byFrame, nil
}

// ChunkMatrices serializes an ordered matrix set into chunks that respect
// both transport bounds. The final chunk of the set carries Last.
func ChunkMatrices(round int, ws []*mat.Dense, t Transport) ([]Chunk, error) {
	maxVals, err := t.maxChunkValues()
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for mi, w := range ws {
		rows, cols := w.Dims()
		data := w.RawMatrix().Data
		for off := 0; off < len(data); off += maxVals {
			end := off + maxVals
			if end > len(data) {
				end = len(data)
			}
			vals := make([]float64, end-off)
			copy(vals, data[off:end])
			chunks = append(chunks, Chunk{
				Round:  round,
				Matrix: mi,
				Rows:   rows,
				Cols:   cols,
				Offset: off,
				Values: vals,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, errors.New("no matrices to chunk")
	}
	chunks[len(chunks)-1].Last = true
	return chunks, nil
}

// Reassemble rebuilds the matrix set from chunks, in any arrival order.
// Every matrix must be fully covered; a gap or a missing matrix is an
// error, never silently zero.
func Reassemble(chunks []Chunk) ([]*mat.Dense, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks to reassemble")
	}
	byMatrix := map[int]*mat.Dense{}
	covered := map[int]int{}
	max := -1
	for _, c := range chunks {
		w, ok := byMatrix[c.Matrix]
		if !ok {
			if c.Rows <= 0 || c.Cols <= 0 {
				return nil, errors.Errorf("chunk for matrix %d carries invalid shape %dx%d", c.Matrix, c.Rows, c.Cols)
			}
			w = mat.NewDense(c.Rows, c.Cols, nil)
			byMatrix[c.Matrix] = w
		}
		data := w.RawMatrix().Data
		if c.Offset < 0 || c.Offset+len(c.Values) > len(data) {
			return nil, errors.Errorf("chunk for matrix %d overruns %d values at offset %d", c.Matrix, len(data), c.Offset)
		}
		copy(data[c.Offset:], c.Values)
		covered[c.Matrix] += len(c.Values)
		if c.Matrix > max {
			max = c.Matrix
		}
	}
	ws := make([]*mat.Dense, max+1)
	for i := range ws {
		w, ok := byMatrix[i]
		if !ok {
			return nil, errors.Errorf("no chunks received for matrix %d", i)
		}
		r, c := w.Dims()
		if covered[i] != r*c {
			return nil, errors.Errorf("matrix %d incomplete: %d of %d values received", i, covered[i], r*c)
		}
		ws[i] = w
	}
	return ws, nil
}
