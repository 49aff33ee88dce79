package nn

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"gradnet/dist"
)

// Distributed trains a network against remote executor nodes. Train
// returns immediately; Wait blocks for the run report. Each round the
// coordinator ships the current weights out, collects shard gradients, and
// steps the local weights with the configured schedule and penalty.
type Distributed struct {
	// Policy selects the partial-failure behavior; the default keeps
	// going with whichever nodes responded.
	Policy dist.FailurePolicy
	// Retries bounds round repeats under AbortRound.
	Retries int
	// Timeout bounds each node exchange.
	Timeout time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	report dist.RunReport
	err    error
}

// Train starts the coordinator loop in the background.
func (d *Distributed) Train(net *Network, nodes []dist.Node) error {
	if len(nodes) == 0 {
		return errors.New("no executor nodes")
	}
	if d.done != nil {
		return errors.New("training already running")
	}
	s := net.settings
	cfg := dist.CoordinatorConfig{
		Transport: s.Transport,
		Policy:    d.Policy,
		Retries:   d.Retries,
		Timeout:   d.Timeout,
		Precision: s.Precision,
		Rounds:    s.Iterations,
		Log:       s.Log,
	}
	if len(s.Partitions) > 0 {
		spans, err := partitionSpans(s.Partitions, len(nodes))
		if err != nil {
			return err
		}
		cfg.Spans = spans
	}
	apply := func(round int, grads []*mat.Dense) {
		net.applyUpdate(grads, s.LearningRate(round), s.Regularization)
	}
	coord := dist.NewCoordinator(s.Coordinator, nodes, net.weights, apply, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		d.report, d.err = coord.Run(ctx)
	}()
	return nil
}

// Wait blocks until the run finishes and returns its report.
func (d *Distributed) Wait() (dist.RunReport, error) {
	if d.done == nil {
		return dist.RunReport{}, errors.New("training not started")
	}
	<-d.done
	return d.report, d.err
}

// Stop cancels the run; nodes are told to discard the partial round.
func (d *Distributed) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// partitionSpans turns the dataset split points into one per-node sample
// range; the last node runs through the end of its local data.
func partitionSpans(boundaries []int, nodes int) ([]dist.Span, error) {
	if len(boundaries) != nodes-1 {
		return nil, errors.Errorf("%d partition boundaries cannot assign %d nodes", len(boundaries), nodes)
	}
	spans := make([]dist.Span, nodes)
	start := 0
	for i, b := range boundaries {
		if b <= start {
			return nil, errors.Errorf("partition boundary %d must exceed %d", b, start)
		}
		spans[i] = dist.Span{Start: start, End: b}
		start = b
	}
	spans[nodes-1] = dist.Span{Start: start, End: -1}
	return spans, nil
}

// ShardTrainer adapts a network plus its local data shard to the executor
// side of the protocol.
type ShardTrainer struct {
	net     *Network
	inputs  [][]float64
	targets [][]float64

	// active sample range; end -1 means through the end
	start, end int
}

// NewShardTrainer binds a network to its shard. A nil targets slice
// trains against the inputs themselves.
func NewShardTrainer(net *Network, inputs, targets [][]float64) *ShardTrainer {
	return &ShardTrainer{net: net, inputs: inputs, targets: targets, end: -1}
}

func (t *ShardTrainer) SetWeights(ws []*mat.Dense) error {
	return t.net.SetWeights(ws)
}

// SetRange restricts subsequent Gradients calls to samples [start, end) of
// the local dataset. end < 0 means through the end.
func (t *ShardTrainer) SetRange(start, end int) error {
	n := len(t.inputs)
	if end < 0 {
		end = n
	}
	if start < 0 || start >= end || end > n {
		return errors.Errorf("sample range [%d, %d) invalid for %d local samples", start, end, n)
	}
	t.start, t.end = start, end
	return nil
}

func (t *ShardTrainer) Gradients() ([]*mat.Dense, float64, int, error) {
	end := t.end
	if end < 0 || end > len(t.inputs) {
		end = len(t.inputs)
	}
	in := t.inputs[t.start:end]
	tg := t.targets
	if tg != nil {
		tg = tg[t.start:end]
	}
	grads, loss, err := t.net.Gradients(in, tg)
	if err != nil {
		return nil, 0, 0, err
	}
	return grads, loss, len(in), nil
}
