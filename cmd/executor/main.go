// Command executor serves gradient requests for one shard of a synthetic
// dataset. Every executor in a cluster generates the same dataset from the
// shared seed and carves out its own contiguous shard.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gradnet/dist"
	"gradnet/nn"
	"gradnet/utils"
)

var (
	host       = flag.String("host", "0.0.0.0", "listen host")
	port       = flag.Int("port", 7600, "listen port")
	archStr    = flag.String("arch", "2 8 1", "whitespace-separated layer sizes")
	activator  = flag.String("act", "sigmoid", "activator: sigmoid, tanh, relu, identity")
	seed       = flag.Uint64("seed", 1, "shared dataset seed")
	samples    = flag.Int("samples", 200, "total synthetic sample count")
	shard      = flag.Int("shard", 0, "this node's shard index")
	shards     = flag.Int("shards", 1, "total shard count")
	partitions = flag.String("partitions", "", "comma-separated dataset split points; overrides even sharding")
	verbose    = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "executor: ", log.LstdFlags)

	sizes, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		logger.Fatal(err)
	}
	cfg := utils.Config{
		Architecture: sizes,
		Activator:    *activator,
		Iterations:   1,
		LearningRate: 1,
	}
	if err := utils.ValidateConfig(&cfg); err != nil {
		logger.Fatal(err)
	}

	var segs []nn.Segment
	if *partitions != "" {
		boundaries, err := utils.ParseBoundaries(*partitions)
		if err != nil {
			logger.Fatal(err)
		}
		segs, err = nn.SplitPartitions(*samples, boundaries)
		if err != nil {
			logger.Fatal(err)
		}
	} else {
		segs = nn.ShardIndexes(*samples, *shards)
	}
	if *shard < 0 || *shard >= len(segs) {
		logger.Fatalf("shard %d out of range for %d shards", *shard, len(segs))
	}

	layers := utils.BuildLayers(sizes, nn.ActivatorLookup[*activator])
	net, err := nn.New("executor", layers, nn.Settings{Verbose: *verbose, Log: logger}, nn.Zero())
	if err != nil {
		logger.Fatal(err)
	}

	inputs, targets := utils.SyntheticXOR(*samples, *seed)
	seg := segs[*shard]
	trainer := nn.NewShardTrainer(net, inputs[seg.Start:seg.End], targets[seg.Start:seg.End])
	logger.Printf("serving shard %d/%d, samples [%d, %d)", *shard, len(segs), seg.Start, seg.End)

	exec := dist.NewExecutor(trainer, dist.Transport{}, logger)
	if err := exec.ListenAndServe(context.Background(), dist.Node{Host: *host, Port: *port}); err != nil {
		logger.Fatal(err)
	}
}
