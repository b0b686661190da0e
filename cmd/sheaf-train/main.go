package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sort"
	"syscall"

	"github.com/cognicore/sheaf/internal/cli"
	"github.com/cognicore/sheaf/pkg/sheaf"
	"github.com/cognicore/sheaf/pkg/sheaf/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		corpusDir  = flag.String("corpus", "", "Corpus root with one directory per topic")
		jsonlPath  = flag.String("jsonl", "", "JSONL corpus with topic and text fields")
		outPath    = flag.String("out", "", "Store path (required)")
		backend    = flag.String("backend", cli.BackendFile, "Store backend: file or sqlite")
		topics     = flag.String("topics", "", "Comma separated topics to train (default all)")
		verbose    = flag.Bool("v", false, "Log every fitted node")
	)
	flag.Parse()

	if *outPath == "" {
		log.Fatal("--out required")
	}
	if (*corpusDir == "") == (*jsonlPath == "") {
		log.Fatal("exactly one of --corpus or --jsonl required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	st, err := cli.OpenStore(ctx, *backend, *outPath)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	analyzer, err := sheaf.New(sheaf.Options{
		Store:  st,
		Config: &cfg,
		Logger: cli.NewLogger(*verbose),
	})
	if err != nil {
		log.Fatal("Failed to create analyzer:", err)
	}
	defer analyzer.Close()

	var report sheaf.Report
	if *corpusDir != "" {
		report, err = analyzer.TrainDirectory(ctx, *corpusDir, cli.SplitList(*topics))
	} else {
		report, err = analyzer.TrainJSONL(ctx, *jsonlPath, cli.SplitList(*topics))
	}
	if err != nil {
		log.Fatal("Training failed:", err)
	}

	log.Printf("Trained %d topics into %s", len(report.Trained), *outPath)
	gapTopics := make([]string, 0, len(report.Gaps))
	for topic := range report.Gaps {
		gapTopics = append(gapTopics, topic)
	}
	sort.Strings(gapTopics)
	for _, topic := range gapTopics {
		for _, g := range report.Gaps[topic] {
			log.Printf("  %s: %v", topic, g.Err())
		}
	}
	if err := report.Err(); err != nil {
		log.Fatalf("%d topics failed:\n%v", len(report.Failed), err)
	}
}
