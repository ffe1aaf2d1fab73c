package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"arbetsdata/internal/config"
	"arbetsdata/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	years := flag.String("years", "", "comma-separated statistics years, e.g. 2022,2023")
	ssyk := flag.String("ssyk", "", "comma-separated SSYK 2012 occupation codes; empty uses the built-in ICT set")
	maxAds := flag.Int("max-ads", 0, "cap on fetched ads per occupation code; 0 uses the default")
	enrich := flag.Bool("enrich", false, "run ad-text enrichment against the enrichment API")
	uploadGCS := flag.Bool("upload-gcs", false, "upload the parquet tables to GCS after a successful run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Years:     splitList(*years),
		SSYKCodes: splitList(*ssyk),
		MaxAds:    *maxAds,
		Enrich:    *enrich,
		UploadGCS: *uploadGCS,
	}

	if err := pipeline.New(cfg, logger).Run(ctx, opts); err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
