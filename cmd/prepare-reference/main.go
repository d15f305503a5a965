package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/messlens/backend/internal/infrastructure/csvio"
)

var (
	inPath  = flag.String("in", "data/Indian_Food_Nutrition_Processed.csv", "Raw nutrition dataset")
	outPath = flag.String("out", "data/nutrition_reference_clean.csv", "Clean reference table to write")
)

func main() {
	flag.Parse()

	stats, err := prepare(*inPath, *outPath)
	if err != nil {
		log.Fatalf("Failed to prepare reference table: %v", err)
	}

	log.Printf("[REFERENCE] read=%d missing=%d duplicates=%d out_of_range=%d written=%d",
		stats.Read, stats.Missing, stats.Duplicates, stats.OutOfRange, stats.Written)
	log.Printf("[REFERENCE] Saved clean reference table to %s", *outPath)
}

// prepare writes through a sibling temp file so a failed run never
// leaves a truncated table behind
func prepare(inPath, outPath string) (csvio.PrepareStats, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return csvio.PrepareStats{}, fmt.Errorf("failed to open raw dataset: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return csvio.PrepareStats{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reference-*.csv")
	if err != nil {
		return csvio.PrepareStats{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	stats, err := csvio.PrepareReference(in, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return stats, err
	}

	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return stats, nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
