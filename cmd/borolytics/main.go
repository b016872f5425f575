package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/borolytics/borolytics/dataset"
	"github.com/borolytics/borolytics/report"
)

// ============================================================================
// BOROLYTICS CLI — NYPD shooting incident report generator
// ============================================================================

const version = "0.1.0"

func main() {
	// A .env file in the working directory overrides nothing set in the
	// real environment. Missing file is fine.
	_ = godotenv.Load()

	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to a local CSV extract (skips the download)")
	dataURL := flag.String("url", envOr("BOROLYTICS_DATA_URL", dataset.DefaultURL), "Source CSV URL")
	outFile := flag.String("out", "shooting_report.html", "Report output path")
	chartsDir := flag.String("charts", "", "Also write each chart as a standalone PNG into this directory")
	title := flag.String("title", "", "Report title override")
	timeoutSec := flag.Int("timeout", envIntOr("BOROLYTICS_HTTP_TIMEOUT", 120), "Download timeout in seconds")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Borolytics — NYPD shooting incident report generator

Downloads the NYPD Shooting Incident Data (Historic) extract, cleans it,
and writes a self-contained HTML report: counts by borough, the yearly
trend with a least squares fit, time-of-day profile, demographics, and
fatal shares.

Usage:
  borolytics
  borolytics -out report.html -charts charts/
  borolytics -file rows.csv -out report.html

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  BOROLYTICS_DATA_URL       Override the source CSV URL
  BOROLYTICS_HTTP_TIMEOUT   Download timeout in seconds

A .env file in the working directory is loaded if present.
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("borolytics %s\n", version)
		os.Exit(0)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// ── Acquire data ──────────────────────────────────────────────────────
	var data []byte
	var err error

	if *filePath != "" {
		data, err = os.ReadFile(*filePath)
		if err != nil {
			fatalf("Failed to read file: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"file":  *filePath,
			"bytes": len(data),
		}).Info("📂 loaded local extract")
	} else {
		timeout := time.Duration(*timeoutSec) * time.Second
		logrus.WithField("url", *dataURL).Info("🔍 downloading extract")
		data, err = dataset.Fetch(context.Background(), *dataURL, timeout)
		if err != nil {
			fatalf("Download failed: %v", err)
		}
	}

	// ── Clean ─────────────────────────────────────────────────────────────
	df, err := dataset.LoadBytes(data)
	if err != nil {
		fatalf("Failed to parse CSV: %v", err)
	}

	tbl, stats, err := dataset.Clean(df)
	if err != nil {
		fatalf("Cleaning failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"rows":    stats.Rows,
		"filled":  stats.FilledTotal(),
		"dropped": len(stats.DroppedColumns),
	}).Info("🧹 cleaned dataset")

	// ── Report ────────────────────────────────────────────────────────────
	doc, err := report.Build(tbl, report.Params{
		Title:     *title,
		SourceURL: *dataURL,
		Stats:     stats,
	})
	if err != nil {
		fatalf("Report assembly failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"sections": len(doc.Sections),
		"span":     doc.Span,
	}).Info("📊 assembled report")

	if *chartsDir != "" {
		if err := writeCharts(*chartsDir, doc); err != nil {
			fatalf("Failed to write charts: %v", err)
		}
		logrus.WithField("dir", *chartsDir).Info("🖼 wrote standalone charts")
	}

	if err := report.RenderFile(*outFile, doc); err != nil {
		fatalf("Failed to write report: %v", err)
	}
	logrus.WithField("out", *outFile).Info("✅ report written")
}

// writeCharts decodes each section's embedded figure back to a PNG file
// named after the section.
func writeCharts(dir string, doc *report.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, sec := range doc.Sections {
		if sec.Chart == nil {
			continue
		}
		png, err := sec.Chart.PNG()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, sec.ID+".png")
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return err
		}
		logrus.WithField("chart", path).Debug("wrote chart")
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
