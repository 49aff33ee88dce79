// Command coordinate drives distributed training rounds against a set of
// executor nodes and prints the final report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gradnet/dist"
	"gradnet/nn"
	"gradnet/utils"
)

var (
	nodesStr  = flag.String("nodes", "127.0.0.1:7600", "comma-separated executor host:port list")
	archStr   = flag.String("arch", "2 8 1", "whitespace-separated layer sizes")
	activator = flag.String("act", "sigmoid", "activator: sigmoid, tanh, relu, identity")
	rounds    = flag.Int("rounds", 100, "maximum training rounds")
	lr        = flag.Float64("lr", 0.5, "learning rate")
	precision = flag.Float64("precision", 1e-3, "loss threshold for convergence")
	seed      = flag.Uint64("seed", 1, "weight initialization seed")
	partition = flag.String("partitions", "", "comma-separated split points assigning each node its sample range")
	abort     = flag.Bool("abort-on-failure", false, "abort and retry rounds with failed nodes instead of proceeding degraded")
	retries   = flag.Int("retries", 2, "round retries when aborting on failure")
	timeout   = flag.Duration("timeout", 30*time.Second, "per-node exchange timeout")
	weightDir = flag.String("weights", "", "save trained weights under this directory")
	verbose   = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "coordinate: ", log.LstdFlags)

	sizes, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		logger.Fatal(err)
	}
	cfg := utils.Config{
		Architecture: sizes,
		Activator:    *activator,
		Iterations:   *rounds,
		LearningRate: *lr,
		Precision:    *precision,
	}
	if err := utils.ValidateConfig(&cfg); err != nil {
		logger.Fatal(err)
	}

	var nodes []dist.Node
	for _, s := range strings.Split(*nodesStr, ",") {
		node, err := dist.ParseNode(strings.TrimSpace(s))
		if err != nil {
			logger.Fatal(err)
		}
		nodes = append(nodes, node)
	}

	boundaries, err := utils.ParseBoundaries(*partition)
	if err != nil {
		logger.Fatal(err)
	}

	settings := nn.Settings{
		Verbose:      *verbose,
		LearningRate: nn.ConstantRate(*lr),
		Precision:    *precision,
		Iterations:   *rounds,
		Partitions:   boundaries,
		Log:          logger,
	}
	layers := utils.BuildLayers(sizes, nn.ActivatorLookup[*activator])
	net, err := nn.New("coordinate", layers, settings, nn.Uniform(-0.5, 0.5).Seed(*seed))
	if err != nil {
		logger.Fatal(err)
	}

	trainer := nn.Distributed{Retries: *retries, Timeout: *timeout}
	if *abort {
		trainer.Policy = dist.AbortRound
	}
	if err := trainer.Train(net, nodes); err != nil {
		logger.Fatal(err)
	}
	report, err := trainer.Wait()
	if err != nil {
		logger.Fatal(err)
	}
	if report.Converged {
		fmt.Printf("converged after %d rounds, loss %g\n", report.Rounds, report.Loss)
	} else {
		fmt.Printf("stopped after %d rounds, loss %g\n", report.Rounds, report.Loss)
	}

	if *weightDir != "" {
		if err := net.SaveWeights(*weightDir); err != nil {
			logger.Fatal(err)
		}
		logger.Printf("weights saved under %s", *weightDir)
	}
}
