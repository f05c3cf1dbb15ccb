package render

import (
	"fmt"
	"math"

	"github.com/radarlab/radarview/internal/frames"
)

// Default imaging window for the forward-looking point-cloud view, in
// metres. X is longitudinal (forward) range, Y lateral.
const (
	DefaultXMin       = 0.0
	DefaultXMax       = 60.0
	DefaultYMin       = -30.0
	DefaultYMax       = 30.0
	DefaultResolution = 0.1
)

// PointCloudRenderer rasterizes tracker detections into a fixed imaging
// window. Physical forward range maps to raster rows and lateral offset to
// raster columns; this axis swap gives the conventional forward-looking
// radar view and must not change, downstream consumers depend on it.
type PointCloudRenderer struct {
	XMin, XMax float64
	YMin, YMax float64
	Res        float64
}

// NewPointCloudRenderer returns a renderer over the default imaging window.
func NewPointCloudRenderer() *PointCloudRenderer {
	return &PointCloudRenderer{
		XMin: DefaultXMin, XMax: DefaultXMax,
		YMin: DefaultYMin, YMax: DefaultYMax,
		Res: DefaultResolution,
	}
}

// Size returns the raster dimensions derived from the window and resolution.
func (r *PointCloudRenderer) Size() (w, h int) {
	w = int(math.Round((r.YMax - r.YMin) / r.Res))
	h = int(math.Round((r.XMax - r.XMin) / r.Res))
	return w, h
}

// Render stamps each in-window point as a small filled red marker. Points
// outside the window are dropped silently; an out-of-window detection is
// expected, not a fault. Empty point clouds yield a blank raster — the
// session skips those records before rendering, but the renderer itself
// stays callable.
func (r *PointCloudRenderer) Render(f frames.Frame) (*RasterFrame, error) {
	pc, ok := f.(*frames.PointCloudFrame)
	if !ok {
		return nil, fmt.Errorf("point cloud renderer got %T", f)
	}
	if r.Res <= 0 {
		return nil, fmt.Errorf("invalid resolution %v", r.Res)
	}

	w, h := r.Size()
	rf := NewRasterFrame(w, h)
	for _, p := range pc.Points {
		// Reject on physical coordinates, not pixel indices: int() truncates
		// toward zero, which would fold points fractionally below the window
		// minimum onto pixel 0.
		if p.X < r.XMin || p.X >= r.XMax || p.Y < r.YMin || p.Y >= r.YMax {
			continue
		}
		px := int((p.Y - r.YMin) / r.Res)
		py := int((p.X - r.XMin) / r.Res)
		if px >= w || py >= h {
			continue
		}
		stampMarker(rf, px, py)
	}
	return rf, nil
}

// stampMarker draws a filled marker of radius 1 px (a five-pixel plus),
// clipped at the raster edge.
func stampMarker(rf *RasterFrame, x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx*dx+dy*dy > 1 {
				continue
			}
			rf.SetRGB(x+dx, y+dy, 255, 0, 0)
		}
	}
}
