// Package dist implements coordinator-driven distributed training: a
// coordinator broadcasts weights to executor nodes, each executor computes
// gradients over its local shard, and the coordinator aggregates the
// results into one update. Messages travel as gob over TCP, with matrices
// split into bounded chunks.
package dist

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
)

// MessageType tags a protocol message.
type MessageType int

const (
	MsgWeights MessageType = iota
	MsgGradients
	MsgSummary
	MsgDiscard
	MsgError
	MsgAssign
)

func (t MessageType) String() string {
	switch t {
	case MsgWeights:
		return "weights"
	case MsgGradients:
		return "gradients"
	case MsgSummary:
		return "summary"
	case MsgDiscard:
		return "discard"
	case MsgError:
		return "error"
	case MsgAssign:
		return "assign"
	}
	return "unknown"
}

// Message is the protocol envelope.
type Message struct {
	Type    MessageType
	Payload interface{}
}

// Chunk carries a bounded slice of one matrix's values. Offset indexes
// into the matrix's row-major backing array; Last marks the final chunk of
// a matrix set.
type Chunk struct {
	Round  int
	Matrix int
	Rows   int
	Cols   int
	Offset int
	Values []float64
	Last   bool
}

// RoundSummary closes an executor's gradient reply.
type RoundSummary struct {
	Round   int
	Loss    float64
	Samples int
}

// Span assigns an executor the half-open sample range [Start, End) of its
// local dataset for a round. End < 0 means through the end of the data.
type Span struct {
	Round int
	Start int
	End   int
}

func init() {
	gob.Register(Chunk{})
	gob.Register(RoundSummary{})
	gob.Register(Span{})
}

// Protocol frames Messages over a stream.
type Protocol struct {
	enc *gob.Encoder
	dec *gob.Decoder
}

func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	return &Protocol{enc: gob.NewEncoder(w), dec: gob.NewDecoder(r)}
}

func (p *Protocol) Send(m Message) error {
	return errors.Wrap(p.enc.Encode(m), "sending message")
}

func (p *Protocol) Receive() (Message, error) {
	var m Message
	if err := p.dec.Decode(&m); err != nil {
		return Message{}, errors.Wrap(err, "receiving message")
	}
	return m, nil
}

func (p *Protocol) SendError(reason string) error {
	return p.Send(Message{Type: MsgError, Payload: reason})
}

// SendDiscard tells the peer to drop any partial round state.
func (p *Protocol) SendDiscard(round int) error {
	return p.Send(Message{Type: MsgDiscard, Payload: round})
}
