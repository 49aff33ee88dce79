// Command train fits a feed-forward network on a synthetic XOR dataset
// locally and prints the training report.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gradnet/nn"
	"gradnet/utils"
)

var (
	archStr     = flag.String("arch", "2 8 1", "whitespace-separated layer sizes")
	activator   = flag.String("act", "sigmoid", "activator: sigmoid, tanh, relu, identity")
	iterations  = flag.Int("iterations", 10000, "maximum training iterations")
	lr          = flag.Float64("lr", 0.5, "learning rate")
	precision   = flag.Float64("precision", 1e-3, "loss threshold for convergence")
	seed        = flag.Uint64("seed", 1, "seed for weights and data")
	samples     = flag.Int("samples", 200, "synthetic sample count")
	parallelism = flag.Int("parallelism", 1, "gradient worker count")
	curveFile   = flag.String("curve", "", "write per-iteration loss CSV to this file")
	weightDir   = flag.String("weights", "", "save trained weights under this directory")
	verbose     = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "train: ", log.LstdFlags)

	sizes, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		logger.Fatal(err)
	}
	cfg := utils.Config{
		Architecture: sizes,
		Activator:    *activator,
		Iterations:   *iterations,
		LearningRate: *lr,
		Precision:    *precision,
	}
	if err := utils.ValidateConfig(&cfg); err != nil {
		logger.Fatal(err)
	}

	settings := nn.Settings{
		Verbose:      *verbose,
		LearningRate: nn.ConstantRate(*lr),
		Precision:    *precision,
		Iterations:   *iterations,
		Parallelism:  *parallelism,
		Log:          logger,
	}
	if *curveFile != "" {
		f, err := os.Create(*curveFile)
		if err != nil {
			logger.Fatal(err)
		}
		defer f.Close()
		settings.ErrorCurve = f
	}

	layers := utils.BuildLayers(sizes, nn.ActivatorLookup[*activator])
	net, err := nn.New("train", layers, settings, nn.Uniform(-0.5, 0.5).Seed(*seed))
	if err != nil {
		logger.Fatal(err)
	}

	inputs, targets := utils.SyntheticXOR(*samples, *seed)
	report, err := nn.Supervised{}.Train(net, inputs, targets)
	if err != nil {
		logger.Fatal(err)
	}
	fmt.Printf("%s after %d iterations, loss %g\n", report.Status, report.Iterations, report.Error)

	if *weightDir != "" {
		if err := net.SaveWeights(*weightDir); err != nil {
			logger.Fatal(err)
		}
		logger.Printf("weights saved under %s", *weightDir)
	}
}
