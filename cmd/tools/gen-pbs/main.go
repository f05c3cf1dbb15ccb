// Command gen-pbs generates synthetic .pbs recordings for testing the viewer
// without sensor hardware. It writes an image stream and a point-cloud
// stream for the given radar name, with a bright target orbiting the sensor.
package main

import (
	"flag"
	"log"
	"math"
	"path/filepath"

	"github.com/radarlab/radarview/internal/frames"
	"github.com/radarlab/radarview/internal/pbs"
)

var (
	outputDir = flag.String("output-dir", ".", "directory for the generated .pbs files")
	radarName = flag.String("radar-name", "synthetic", "radar name used in the file names")
	numFrames = flag.Int("frames", 100, "number of records per stream")
	rows      = flag.Int("rows", 240, "image grid rows")
	cols      = flag.Int("cols", 240, "image grid cols")
	frameRate = flag.Float64("frame-rate", 10, "timestamp spacing, frames per second")
)

func main() {
	flag.Parse()

	imagePath := filepath.Join(*outputDir, *radarName+"_images.pbs")
	if err := writeImageStream(imagePath); err != nil {
		log.Fatalf("write %s: %v", imagePath, err)
	}
	log.Printf("wrote %d image records to %s", *numFrames, imagePath)

	pointsPath := filepath.Join(*outputDir, *radarName+"_points.pbs")
	if err := writePointStream(pointsPath); err != nil {
		log.Fatalf("write %s: %v", pointsPath, err)
	}
	log.Printf("wrote %d tracker records to %s", *numFrames, pointsPath)
}

// writeImageStream emits a noise floor with a bright blob circling the grid.
func writeImageStream(path string) error {
	w, err := pbs.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	nr, nc := *rows, *cols
	for i := 0; i < *numFrames; i++ {
		f := &frames.ImageFrame{
			FrameID:   int64(i + 1),
			Timestamp: float64(i) / *frameRate,
			Rows:      nr,
			Cols:      nc,
			Grid:      make([]uint32, nr*nc),
			Model: frames.ImageModel{
				Di: frames.Vec3{X: 0.25},
				Dj: frames.Vec3{Y: 0.25},
			},
			Extrinsic: frames.Extrinsic{Attitude: frames.Quat{W: 1}},
		}

		// Deterministic clutter floor.
		for j := range f.Grid {
			f.Grid[j] = uint32(50 + (j*2654435761)%200)
		}

		// Orbiting target, well above the clutter.
		phase := 2 * math.Pi * float64(i) / float64(*numFrames)
		cr := nr/2 + int(float64(nr)/3*math.Sin(phase))
		cc := nc/2 + int(float64(nc)/3*math.Cos(phase))
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				r, c := cr+dr, cc+dc
				if r >= 0 && r < nr && c >= 0 && c < nc {
					f.Grid[r*nc+c] = 8000
				}
			}
		}

		if err := w.WriteRecord(frames.MarshalImage(f)); err != nil {
			return err
		}
	}
	return w.Close()
}

// writePointStream emits a small cluster sweeping across the imaging window,
// with every tenth record empty to exercise the viewer's skip policy.
func writePointStream(path string) error {
	w, err := pbs.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	for i := 0; i < *numFrames; i++ {
		f := &frames.PointCloudFrame{
			FrameID:   int64(i + 1),
			Timestamp: float64(i) / *frameRate,
		}

		if i%10 != 9 {
			progress := float64(i) / float64(*numFrames)
			cx := 5 + 50*progress   // forward range sweep
			cy := -20 + 40*progress // lateral sweep
			for p := 0; p < 12; p++ {
				angle := 2 * math.Pi * float64(p) / 12
				f.Points = append(f.Points, frames.Point{
					X:   cx + 1.5*math.Cos(angle),
					Y:   cy + 1.5*math.Sin(angle),
					Aux: float64(p),
				})
			}
		}

		if err := w.WriteRecord(frames.MarshalTrackerState(f)); err != nil {
			return err
		}
	}
	return w.Close()
}
