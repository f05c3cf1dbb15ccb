// Package render converts decoded radar frames into RGB raster frames.
// Two renderers share one contract: a dense image colorizer and a tracker
// point-cloud rasterizer.
package render

import (
	"image"
	"image/color"

	"github.com/radarlab/radarview/internal/frames"
)

// RasterFrame is a H×W×3 RGB byte grid. Pix is packed row-major, three bytes
// per pixel. The pipeline owns the frame until it is handed to sinks; sinks
// must copy if they need it beyond the Push call.
//
// RasterFrame implements draw.Image so overlay text and markers can be drawn
// straight into the packed buffer.
type RasterFrame struct {
	W, H int
	Pix  []uint8
}

// NewRasterFrame returns a zeroed (black) raster of the given size.
func NewRasterFrame(w, h int) *RasterFrame {
	return &RasterFrame{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

func (r *RasterFrame) ColorModel() color.Model { return color.RGBAModel }

func (r *RasterFrame) Bounds() image.Rectangle { return image.Rect(0, 0, r.W, r.H) }

func (r *RasterFrame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return color.RGBA{}
	}
	i := (y*r.W + x) * 3
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 0xff}
}

func (r *RasterFrame) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	i := (y*r.W + x) * 3
	r.Pix[i] = rgba.R
	r.Pix[i+1] = rgba.G
	r.Pix[i+2] = rgba.B
}

// SetRGB writes one pixel without a color.Color allocation.
func (r *RasterFrame) SetRGB(x, y int, red, green, blue uint8) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return
	}
	i := (y*r.W + x) * 3
	r.Pix[i] = red
	r.Pix[i+1] = green
	r.Pix[i+2] = blue
}

// Clone returns a deep copy. Sinks that retain frames use this.
func (r *RasterFrame) Clone() *RasterFrame {
	out := &RasterFrame{W: r.W, H: r.H, Pix: make([]uint8, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// Renderer maps one decoded frame to a raster frame. Implementations keep
// output dimensions constant for the lifetime of one session; the video
// encoder is opened once with the first frame's size and cannot resize.
type Renderer interface {
	Render(f frames.Frame) (*RasterFrame, error)
}
