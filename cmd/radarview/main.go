// Command radarview renders radar sensor recordings (.pbs streams of dense
// images or tracker point clouds) into a live browser preview and optional
// H.264 video files, one per radar name.
//
// Usage:
//
//	radarview -input-dir dataset/ -output-dir videos/ -radar-name fr01 -radar-name fr02
//
// Omitting -output-dir previews without writing files. -point-cloud switches
// to the tracker point-cloud view.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/radarlab/radarview/internal/config"
	"github.com/radarlab/radarview/internal/fsutil"
	"github.com/radarlab/radarview/internal/session"
	"github.com/radarlab/radarview/internal/sink"
	"github.com/radarlab/radarview/internal/version"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var (
	inputDir       = flag.String("input-dir", "", "dataset base directory (required)")
	outputDir      = flag.String("output-dir", "", "output video directory (omit for display-only)")
	frameRate      = flag.Int("frame-rate", 10, "output video frame rate")
	qualityFactor  = flag.Int("quality-factor", 23, "video compression quality factor (x264 CRF)")
	pointCloud     = flag.Bool("point-cloud", false, "render the tracker point-cloud view instead of images")
	showGrid       = flag.Bool("show-grid", false, "overlay range rings on image frames")
	gridSeparation = flag.Float64("grid-separation", 5, "range ring separation in metres")
	failSoft       = flag.Bool("fail-soft", false, "continue with remaining radar names after a failure")
	displayListen  = flag.String("display-listen", "127.0.0.1:0", "live preview listen address (empty disables the preview)")
	tuningPath     = flag.String("tuning", "", "optional view tuning JSON file")
	showVersion    = flag.Bool("version", false, "print version and exit")

	radarNames stringList
)

func main() {
	flag.Var(&radarNames, "radar-name", "radar serial number to render (repeatable, required)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	if *inputDir == "" {
		log.Fatal("-input-dir is required")
	}
	if len(radarNames) == 0 {
		log.Fatal("at least one -radar-name is required")
	}
	if !fsutil.Exists(*inputDir) {
		log.Fatalf("input directory %s does not exist", *inputDir)
	}
	if *outputDir != "" {
		if err := fsutil.EnsureDir(*outputDir); err != nil {
			log.Fatalf("prepare output directory: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := sink.NewDisplay(*displayListen)
	defer display.Close()
	if display.Enabled() {
		fmt.Printf("live preview: http://%s/\n", display.Addr())
	}

	var tuning *config.ViewConfig
	if *tuningPath != "" {
		var err error
		tuning, err = config.Load(*tuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
	}

	cfg := session.Config{
		ShowRangeGrid:  *showGrid,
		GridSeparation: *gridSeparation,
		Tuning:         tuning,
	}
	if tuning != nil && tuning.GridSeparationMeters != nil {
		cfg.GridSeparation = *tuning.GridSeparationMeters
	}
	if display.Enabled() {
		cfg.Display = display
	}
	if *outputDir != "" {
		cfg.NewEncoder = func(path string, w, h int) (sink.Sink, error) {
			enc, err := sink.NewEncoder(path, w, h, *frameRate, *qualityFactor)
			if err != nil {
				return nil, err
			}
			return enc, nil
		}
	}

	policy := session.FailFast
	if *failSoft {
		policy = session.FailSoft
	}

	paths := session.BuildIOPaths(*inputDir, *outputDir, radarNames, *pointCloud)
	batch := session.NewBatch(cfg, policy)
	if err := batch.Run(ctx, paths); err != nil {
		log.Fatalf("render batch: %v", err)
	}
}
