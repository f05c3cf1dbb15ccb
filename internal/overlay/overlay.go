// Package overlay stamps derived metadata onto rendered raster frames: the
// frame id / timestamp label on every frame, and optionally concentric range
// rings anchored at the sensor's projected position.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/radarlab/radarview/internal/frames"
	"github.com/radarlab/radarview/internal/monitoring"
	"github.com/radarlab/radarview/internal/render"
)

// labelColor matches the recording tools' lime green.
var labelColor = color.RGBA{R: 50, G: 205, B: 50, A: 255}

// ringColor is the white used for range rings.
var ringColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Overlay configures the metadata stage. The zero value stamps only the
// label; range rings are opt-in and only meaningful for image frames, whose
// geometric model supplies the pixel scale.
type Overlay struct {
	ShowRangeGrid bool
	// Separation is the physical distance between rings in metres.
	Separation float64
}

// Apply stamps metadata onto rf in place and returns it. Callers must use
// the returned frame.
func (o Overlay) Apply(f frames.Frame, rf *render.RasterFrame) *render.RasterFrame {
	if o.ShowRangeGrid {
		if img, ok := f.(*frames.ImageFrame); ok {
			o.drawRangeRings(img, rf)
		}
	}
	drawLabel(rf, FormatLabel(f.ID(), f.Time()))
	return rf
}

// FormatLabel renders the standard frame annotation, e.g. "42:3.14".
func FormatLabel(frameID int64, timestamp float64) string {
	return fmt.Sprintf("%d:%.2f", frameID, timestamp)
}

// drawLabel writes text with its baseline 20 rows above the raster bottom.
func drawLabel(rf *render.RasterFrame, text string) {
	d := font.Drawer{
		Dst:  rf,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, rf.H-20),
	}
	d.DrawString(text)
}

// drawRangeRings draws white circles every Separation metres around the
// sensor's position projected into the image.
func (o Overlay) drawRangeRings(img *frames.ImageFrame, rf *render.RasterFrame) {
	scale := img.Model.PixelsPerMeter()
	if !(scale > 0) || math.IsInf(scale, 0) {
		monitoring.Logf("overlay: degenerate image model, skipping range rings")
		return
	}
	ppm := int(math.Ceil(scale))

	cx, cy := img.Model.WorldToGrid(img.Extrinsic.Position)
	step := int(o.Separation) * ppm
	if step <= 0 {
		monitoring.Logf("overlay: ring separation %v m yields no rings", o.Separation)
		return
	}

	maxDim := rf.W
	if rf.H > maxDim {
		maxDim = rf.H
	}
	for radius := step; radius < maxDim; radius += step {
		drawCircle(rf, cx, cy, radius)
	}
}

// drawCircle traces a 2 px circle outline, clipped at the raster edge.
func drawCircle(rf *render.RasterFrame, cx, cy, radius int) {
	// One step per circumference pixel keeps the outline gap-free.
	steps := int(2 * math.Pi * float64(radius))
	if steps < 8 {
		steps = 8
	}
	for s := 0; s < steps; s++ {
		theta := 2 * math.Pi * float64(s) / float64(steps)
		x := cx + int(math.Round(float64(radius)*math.Cos(theta)))
		y := cy + int(math.Round(float64(radius)*math.Sin(theta)))
		rf.Set(x, y, ringColor)
		rf.Set(x+1, y, ringColor)
		rf.Set(x, y+1, ringColor)
	}
}
