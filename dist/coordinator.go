package dist

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FailurePolicy decides what a round does when some nodes fail to return
// gradients.
type FailurePolicy int

const (
	// ProceedDegraded aggregates whatever gradients arrived, as long as
	// at least one node responded.
	ProceedDegraded FailurePolicy = iota
	// AbortRound discards the round and retries it from the same
	// weights.
	AbortRound
)

func (p FailurePolicy) String() string {
	if p == AbortRound {
		return "abort-round"
	}
	return "proceed-degraded"
}

// CoordinatorConfig tunes a coordinator run.
type CoordinatorConfig struct {
	Transport Transport
	Policy    FailurePolicy
	// Retries bounds round repeats under AbortRound.
	Retries int
	// Timeout bounds each node exchange. Defaults to 30s.
	Timeout time.Duration
	// Precision is the aggregated loss threshold for convergence.
	Precision float64
	// Rounds caps the run. Defaults to 100.
	Rounds int
	// Spans optionally assigns each node, by index, a sample range of its
	// local dataset; length must match the node list.
	Spans []Span
	Log   *log.Logger
}

// RunReport summarizes a finished coordinator run.
type RunReport struct {
	Converged bool
	Rounds    int
	Loss      float64
}

// Coordinator drives synchronous training rounds against a set of
// executor nodes. Each round broadcasts the current weights, collects
// per-node gradients, aggregates them and applies one update through the
// caller's closure.
type Coordinator struct {
	self    Node
	nodes   []Node
	weights []*mat.Dense
	apply   func(round int, grads []*mat.Dense)
	cfg     CoordinatorConfig
}

func NewCoordinator(self Node, nodes []Node, weights []*mat.Dense, apply func(int, []*mat.Dense), cfg CoordinatorConfig) *Coordinator {
	cfg.Transport = cfg.Transport.WithDefaults()
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = 100
	}
	if cfg.Log == nil {
		cfg.Log = log.Default()
	}
	return &Coordinator{self: self, nodes: nodes, weights: weights, apply: apply, cfg: cfg}
}

// Run executes rounds until the aggregated loss reaches Precision, the
// round cap is hit, or ctx is canceled. On cancellation it tells nodes to
// discard partial state before returning.
func (c *Coordinator) Run(ctx context.Context) (RunReport, error) {
	if len(c.nodes) == 0 {
		return RunReport{}, errors.New("no executor nodes")
	}
	if len(c.cfg.Spans) > 0 && len(c.cfg.Spans) != len(c.nodes) {
		return RunReport{}, errors.Errorf("%d sample spans cannot cover %d nodes", len(c.cfg.Spans), len(c.nodes))
	}
	c.cfg.Log.Printf("coordinator %s driving %d nodes, %s on failure", c.self, len(c.nodes), c.cfg.Policy)
	for round := 1; ; round++ {
		select {
		case <-ctx.Done():
			c.notifyDiscard(round)
			return RunReport{Rounds: round - 1}, ctx.Err()
		default:
		}

		grads, loss, err := c.exchangeRound(ctx, round)
		if err != nil {
			return RunReport{Rounds: round - 1}, err
		}
		c.cfg.Log.Printf("round %d: loss %g", round, loss)
		if loss <= c.cfg.Precision {
			return RunReport{Converged: true, Rounds: round, Loss: loss}, nil
		}
		if round >= c.cfg.Rounds {
			return RunReport{Rounds: round, Loss: loss}, nil
		}
		c.apply(round, grads)
	}
}

// exchangeRound runs one broadcast/collect cycle, retrying under
// AbortRound up to the configured retry budget.
func (c *Coordinator) exchangeRound(ctx context.Context, round int) ([]*mat.Dense, float64, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		grads, loss, err := c.broadcast(ctx, round)
		if err == nil {
			return grads, loss, nil
		}
		lastErr = err
		if c.cfg.Policy != AbortRound {
			break
		}
		c.cfg.Log.Printf("round %d attempt %d failed: %v", round, attempt+1, err)
	}
	return nil, 0, errors.Wrapf(lastErr, "round %d", round)
}

type nodeResult struct {
	node    Node
	grads   []*mat.Dense
	loss    float64
	samples int
	err     error
}

func (c *Coordinator) broadcast(ctx context.Context, round int) ([]*mat.Dense, float64, error) {
	chunks, err := ChunkMatrices(round, c.weights, c.cfg.Transport)
	if err != nil {
		return nil, 0, err
	}

	results := make(chan nodeResult, len(c.nodes))
	for i, node := range c.nodes {
		go func(i int, node Node) {
			grads, loss, samples, err := c.exchange(i, node, round, chunks)
			results <- nodeResult{node: node, grads: grads, loss: loss, samples: samples, err: err}
		}(i, node)
	}

	var sets [][]*mat.Dense
	var samples []int
	lossSum := 0.0
	var failed []error
	for range c.nodes {
		r := <-results
		if r.err != nil {
			c.cfg.Log.Printf("node %s failed in round %d: %v", r.node, round, r.err)
			failed = append(failed, r.err)
			continue
		}
		sets = append(sets, r.grads)
		samples = append(samples, r.samples)
		lossSum += r.loss * float64(r.samples)
	}

	if len(failed) > 0 && c.cfg.Policy == AbortRound {
		return nil, 0, errors.Wrap(failed[0], "aborting round")
	}
	if len(sets) == 0 {
		return nil, 0, errors.New("no node returned gradients")
	}
	if len(failed) > 0 {
		c.cfg.Log.Printf("round %d proceeding degraded with %d of %d nodes", round, len(sets), len(c.nodes))
	}

	agg, err := AggregateMean(sets, samples)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, s := range samples {
		total += s
	}
	return agg, lossSum / float64(total), nil
}

// exchange performs one node's round trip: send the span assignment when
// configured and the weight chunks, then read gradient chunks until the
// summary arrives.
func (c *Coordinator) exchange(idx int, node Node, round int, chunks []Chunk) ([]*mat.Dense, float64, int, error) {
	conn, err := net.DialTimeout("tcp", node.Addr(), c.cfg.Timeout)
	if err != nil {
		return nil, 0, 0, &TransportError{Node: node.Addr(), Reason: err.Error()}
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.cfg.Timeout))

	p := NewProtocol(conn, conn)
	if len(c.cfg.Spans) > 0 {
		sp := c.cfg.Spans[idx]
		sp.Round = round
		if err := p.Send(Message{Type: MsgAssign, Payload: sp}); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "sending assignment to %s", node)
		}
	}
	for _, ch := range chunks {
		if err := p.Send(Message{Type: MsgWeights, Payload: ch}); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "sending weights to %s", node)
		}
	}

	var back []Chunk
	for {
		m, err := p.Receive()
		if err != nil {
			return nil, 0, 0, errors.Wrapf(err, "receiving gradients from %s", node)
		}
		switch m.Type {
		case MsgGradients:
			ch, ok := m.Payload.(Chunk)
			if !ok {
				return nil, 0, 0, errors.Errorf("bad gradient payload from %s", node)
			}
			back = append(back, ch)
		case MsgSummary:
			sum, ok := m.Payload.(RoundSummary)
			if !ok {
				return nil, 0, 0, errors.Errorf("bad summary payload from %s", node)
			}
			grads, err := Reassemble(back)
			if err != nil {
				return nil, 0, 0, errors.Wrapf(err, "reassembling gradients from %s", node)
			}
			return grads, sum.Loss, sum.Samples, nil
		case MsgError:
			reason, _ := m.Payload.(string)
			return nil, 0, 0, errors.Errorf("node %s reported: %s", node, reason)
		default:
			return nil, 0, 0, errors.Errorf("unexpected %s message from %s", m.Type, node)
		}
	}
}

// notifyDiscard is a best-effort broadcast telling nodes to drop round
// state; failures are only logged.
func (c *Coordinator) notifyDiscard(round int) {
	for _, node := range c.nodes {
		conn, err := net.DialTimeout("tcp", node.Addr(), c.cfg.Timeout)
		if err != nil {
			c.cfg.Log.Printf("discard notify to %s failed: %v", node, err)
			continue
		}
		conn.SetDeadline(time.Now().Add(c.cfg.Timeout))
		if err := NewProtocol(conn, conn).SendDiscard(round); err != nil {
			c.cfg.Log.Printf("discard notify to %s failed: %v", node, err)
		}
		conn.Close()
	}
}
