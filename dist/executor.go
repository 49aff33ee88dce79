package dist

import (
	"context"
	"log"
	"net"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LocalTrainer is the executor's view of a trainable model: install a
// weight set, then report the gradients, mean loss and sample count of the
// local shard.
type LocalTrainer interface {
	SetWeights(ws []*mat.Dense) error
	Gradients() (grads []*mat.Dense, loss float64, samples int, err error)
}

// RangeTrainer is a LocalTrainer that can restrict a round to a sample
// range of its local dataset, assigned by the coordinator.
type RangeTrainer interface {
	LocalTrainer
	SetRange(start, end int) error
}

// Executor serves gradient requests from a coordinator over TCP.
type Executor struct {
	trainer   LocalTrainer
	transport Transport
	log       *log.Logger

	mu sync.Mutex
}

func NewExecutor(trainer LocalTrainer, transport Transport, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{trainer: trainer, transport: transport.WithDefaults(), log: logger}
}

// ListenAndServe binds the node's address and serves until ctx is
// canceled.
func (e *Executor) ListenAndServe(ctx context.Context, node Node) error {
	l, err := net.Listen("tcp", node.Addr())
	if err != nil {
		return errors.Wrapf(err, "listening on %s", node)
	}
	return e.Serve(ctx, l)
}

// Serve accepts coordinator connections on l until ctx is canceled; each
// connection is one round exchange.
func (e *Executor) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return errors.Wrap(err, "accepting connection")
			}
		}
		go e.handle(conn)
	}
}

func (e *Executor) handle(conn net.Conn) {
	defer conn.Close()
	p := NewProtocol(conn, conn)

	var chunks []Chunk
	var span *Span
	round := 0
receive:
	for {
		m, err := p.Receive()
		if err != nil {
			e.log.Printf("receive failed: %v", err)
			return
		}
		switch m.Type {
		case MsgDiscard:
			e.log.Printf("coordinator discarded round, dropping %d chunks", len(chunks))
			return
		case MsgAssign:
			sp, ok := m.Payload.(Span)
			if !ok {
				p.SendError("bad assignment payload")
				return
			}
			span = &sp
		case MsgWeights:
			ch, ok := m.Payload.(Chunk)
			if !ok {
				p.SendError("bad weight payload")
				return
			}
			chunks = append(chunks, ch)
			round = ch.Round
			if ch.Last {
				break receive
			}
		default:
			p.SendError("expected weights")
			return
		}
	}

	ws, err := Reassemble(chunks)
	if err != nil {
		e.log.Printf("round %d: reassemble failed: %v", round, err)
		p.SendError(err.Error())
		return
	}

	// One round at a time; the trainer mutates shared weights.
	e.mu.Lock()
	var grads []*mat.Dense
	var loss float64
	var samples int
	if span != nil {
		if rt, ok := e.trainer.(RangeTrainer); ok {
			err = rt.SetRange(span.Start, span.End)
		} else {
			err = errors.New("trainer does not support sample range assignment")
		}
	}
	if err == nil {
		if err = e.trainer.SetWeights(ws); err == nil {
			grads, loss, samples, err = e.trainer.Gradients()
		}
	}
	e.mu.Unlock()
	if err != nil {
		e.log.Printf("round %d: local training failed: %v", round, err)
		p.SendError(err.Error())
		return
	}

	out, err := ChunkMatrices(round, grads, e.transport)
	if err != nil {
		e.log.Printf("round %d: chunking reply failed: %v", round, err)
		p.SendError(err.Error())
		return
	}
	for _, ch := range out {
		if err := p.Send(Message{Type: MsgGradients, Payload: ch}); err != nil {
			e.log.Printf("round %d: send failed: %v", round, err)
			return
		}
	}
	if err := p.Send(Message{Type: MsgSummary, Payload: RoundSummary{Round: round, Loss: loss, Samples: samples}}); err != nil {
		e.log.Printf("round %d: summary send failed: %v", round, err)
	}
}
