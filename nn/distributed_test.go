package nn

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradnet/dist"
)

func startExecutor(t *testing.T, trainer dist.LocalTrainer) dist.Node {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go dist.NewExecutor(trainer, dist.Transport{}, nil).Serve(ctx, l)

	return dist.Node{Host: "127.0.0.1", Port: l.Addr().(*net.TCPAddr).Port}
}

func TestDistributedTraining(t *testing.T) {
	layers := []Layer{Input(2), Dense(6, Sigmoid{}), Output(1, Sigmoid{})}
	inputs, targets := xorData()

	var nodes []dist.Node
	for _, seg := range ShardIndexes(len(inputs), 2) {
		shard, err := New("shard", layers, Settings{}, Zero())
		require.NoError(t, err)
		trainer := NewShardTrainer(shard, inputs[seg.Start:seg.End], targets[seg.Start:seg.End])
		nodes = append(nodes, startExecutor(t, trainer))
	}

	settings := Settings{
		LearningRate: ConstantRate(1.0),
		Precision:    1e-6,
		Iterations:   30,
		Transport:    dist.Transport{MessageGroupSize: 8},
	}
	coord, err := New("coord", layers, settings, Uniform(-1, 1).Seed(42))
	require.NoError(t, err)

	baseline, err := coord.batchLoss(inputs, targets)
	require.NoError(t, err)

	var d Distributed
	d.Timeout = 5 * time.Second
	require.NoError(t, d.Train(coord, nodes))
	report, err := d.Wait()
	require.NoError(t, err)

	assert.Equal(t, 30, report.Rounds)
	assert.Less(t, report.Loss, baseline)

	final, err := coord.batchLoss(inputs, targets)
	require.NoError(t, err)
	assert.Less(t, final, baseline)
}

func TestDistributedPartitionAssignment(t *testing.T) {
	layers := []Layer{Input(2), Dense(4, Sigmoid{}), Output(1, Sigmoid{})}
	inputs, targets := xorData()

	// every node holds the full dataset; the coordinator assigns ranges
	var trainers []*ShardTrainer
	var nodes []dist.Node
	for i := 0; i < 2; i++ {
		shard, err := New("shard", layers, Settings{}, Zero())
		require.NoError(t, err)
		trainer := NewShardTrainer(shard, inputs, targets)
		trainers = append(trainers, trainer)
		nodes = append(nodes, startExecutor(t, trainer))
	}

	settings := Settings{
		LearningRate: ConstantRate(1.0),
		Precision:    1e-9,
		Iterations:   3,
		Partitions:   []int{2},
	}
	coord, err := New("coord", layers, settings, Uniform(-1, 1).Seed(11))
	require.NoError(t, err)

	var d Distributed
	d.Timeout = 5 * time.Second
	require.NoError(t, d.Train(coord, nodes))
	report, err := d.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Rounds)

	assert.Equal(t, 0, trainers[0].start)
	assert.Equal(t, 2, trainers[0].end)
	assert.Equal(t, 2, trainers[1].start)
	assert.Equal(t, 4, trainers[1].end)
}

func TestDistributedPartitionCountMismatch(t *testing.T) {
	settings := Settings{Partitions: []int{1, 2}}
	net2, err := New("coord", []Layer{Input(2), Output(1, Sigmoid{})}, settings, nil)
	require.NoError(t, err)

	var d Distributed
	nodes := []dist.Node{{Host: "127.0.0.1", Port: 1}, {Host: "127.0.0.1", Port: 2}}
	assert.Error(t, d.Train(net2, nodes))
}

func TestPartitionSpans(t *testing.T) {
	spans, err := partitionSpans([]int{3, 7}, 3)
	require.NoError(t, err)
	assert.Equal(t, []dist.Span{{Start: 0, End: 3}, {Start: 3, End: 7}, {Start: 7, End: -1}}, spans)

	_, err = partitionSpans([]int{3}, 3)
	assert.Error(t, err)
	_, err = partitionSpans([]int{5, 3}, 3)
	assert.Error(t, err)
	_, err = partitionSpans([]int{0}, 2)
	assert.Error(t, err)
}

func TestShardTrainerRange(t *testing.T) {
	inputs, targets := xorData()
	net2, err := New("shard", []Layer{Input(2), Dense(3, Tanh{}), Output(1, Sigmoid{})}, Settings{}, Uniform(-1, 1).Seed(2))
	require.NoError(t, err)
	trainer := NewShardTrainer(net2, inputs, targets)

	require.NoError(t, trainer.SetRange(1, 3))
	_, _, samples, err := trainer.Gradients()
	require.NoError(t, err)
	assert.Equal(t, 2, samples)

	require.NoError(t, trainer.SetRange(2, -1))
	_, _, samples, err = trainer.Gradients()
	require.NoError(t, err)
	assert.Equal(t, 2, samples)

	assert.Error(t, trainer.SetRange(-1, 2))
	assert.Error(t, trainer.SetRange(3, 3))
	assert.Error(t, trainer.SetRange(0, 5))
}

func TestDistributedAbortOnUnreachableNode(t *testing.T) {
	// grab a free port, then close it so the dial fails
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	dead := dist.Node{Host: "127.0.0.1", Port: l.Addr().(*net.TCPAddr).Port}
	l.Close()

	net2, err := New("coord", []Layer{Input(2), Output(1, Sigmoid{})}, Settings{Iterations: 5}, nil)
	require.NoError(t, err)

	d := Distributed{Policy: dist.AbortRound, Timeout: 2 * time.Second}
	require.NoError(t, d.Train(net2, []dist.Node{dead}))
	_, err = d.Wait()
	require.Error(t, err)
}

func TestDistributedRequiresNodes(t *testing.T) {
	net2, err := New("coord", []Layer{Input(2), Output(1, Sigmoid{})}, Settings{}, nil)
	require.NoError(t, err)
	var d Distributed
	assert.Error(t, d.Train(net2, nil))
}

func TestDistributedWaitBeforeTrain(t *testing.T) {
	var d Distributed
	_, err := d.Wait()
	assert.Error(t, err)
}

func TestShardTrainerReportsSamples(t *testing.T) {
	inputs, targets := xorData()
	net2, err := New("shard", []Layer{Input(2), Dense(3, Tanh{}), Output(1, Sigmoid{})}, Settings{}, Uniform(-1, 1).Seed(1))
	require.NoError(t, err)

	trainer := NewShardTrainer(net2, inputs, targets)
	grads, loss, samples, err := trainer.Gradients()
	require.NoError(t, err)
	assert.Equal(t, 4, samples)
	assert.Greater(t, loss, 0.0)
	assert.Len(t, grads, 2)
}
