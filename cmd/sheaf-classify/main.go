package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/sheaf/internal/cli"
	"github.com/cognicore/sheaf/pkg/sheaf"
	"github.com/cognicore/sheaf/pkg/sheaf/config"
	"github.com/cognicore/sheaf/pkg/sheaf/similarity"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		storePath  = flag.String("store", "", "Store path (required)")
		backend    = flag.String("backend", cli.BackendFile, "Store backend: file or sqlite")
		topics     = flag.String("topics", "", "Comma separated topics to load (default all)")
		start      = flag.Int("start", -1, "Starting layer (default from config)")
		measure    = flag.Int("measure", -1, "Measure layer (default from config)")
		reduction  = flag.String("reduction", "", "max-average, max-max or average (default from config)")
		raw        = flag.Bool("raw", false, "Do not normalize the mixture")
		compare    = flag.String("compare", "", "Second text to compare against")
	)
	flag.Parse()

	if *storePath == "" {
		log.Fatal("--store required")
	}
	query := strings.Join(flag.Args(), " ")
	if query == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal("Failed to read stdin:", err)
		}
		query = string(data)
	}
	if strings.TrimSpace(query) == "" {
		log.Fatal("text to classify required (arguments or stdin)")
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if *start >= 0 {
		cfg.Inference.StartingLayer = *start
	}
	if *measure >= 0 {
		cfg.Inference.MeasureLayer = *measure
	}
	if *reduction != "" {
		cfg.Inference.Reduction = *reduction
	}
	if *raw {
		cfg.Inference.Normalize = false
	}
	red, err := similarity.ParseReduction(cfg.Inference.Reduction)
	if err != nil {
		log.Fatal(err)
	}

	st, err := cli.OpenStore(ctx, *backend, *storePath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}
	analyzer, err := sheaf.New(sheaf.Options{
		Store:  st,
		Config: &cfg,
		Logger: cli.NewLogger(false),
	})
	if err != nil {
		log.Fatal("Failed to create analyzer:", err)
	}
	defer analyzer.Close()

	if _, err := analyzer.LoadSheaves(ctx, cli.SplitList(*topics)); err != nil {
		log.Fatal("Failed to load sheaves:", err)
	}

	in := cfg.Inference
	res, err := analyzer.InferMetric(query, in.StartingLayer, in.MeasureLayer, in.Normalize, red)
	if err != nil {
		log.Fatal("Classification failed:", err)
	}
	if err := res.Report(os.Stdout); err != nil {
		log.Fatal(err)
	}

	if *compare != "" {
		other, err := analyzer.InferMetric(*compare, in.StartingLayer, in.MeasureLayer, in.Normalize, red)
		if err != nil {
			log.Fatal("Classification failed:", err)
		}
		log.Printf("delta sim: %.6f  manhattan: %.6f", res.DeltaSim(other), res.ManhattanDistance(other))
	}
}
