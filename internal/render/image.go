package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette/moreland"

	"github.com/radarlab/radarview/internal/frames"
)

// lutSize is the number of colormap entries sampled from the palette.
const lutSize = 256

// ImageRenderer colorizes dense radar images: magnitudes are compressed to
// [0, 1] with the adaptive sigmoid, then mapped through a perceptual heat
// colormap. Output size is the grid's native raster size and is locked to
// the first frame for the rest of the session.
type ImageRenderer struct {
	sigmoid *Sigmoid
	lut     [lutSize]color.RGBA

	// locked output dimensions, zero until the first frame
	w, h int
}

// NewImageRenderer builds a renderer with a fresh compression history.
func NewImageRenderer() *ImageRenderer {
	r := &ImageRenderer{sigmoid: NewSigmoid()}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	for i := 0; i < lutSize; i++ {
		c, err := cm.At(float64(i) / (lutSize - 1))
		if err != nil {
			// The colormap is defined on all of [0, 1]; only a programming
			// error can land here.
			panic(fmt.Sprintf("colormap lookup: %v", err))
		}
		r.lut[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return r
}

// Render maps one ImageFrame to RGB.
func (r *ImageRenderer) Render(f frames.Frame) (*RasterFrame, error) {
	img, ok := f.(*frames.ImageFrame)
	if !ok {
		return nil, fmt.Errorf("image renderer got %T", f)
	}

	if r.w == 0 && r.h == 0 {
		r.w, r.h = img.Cols, img.Rows
	} else if img.Cols != r.w || img.Rows != r.h {
		return nil, fmt.Errorf("frame %d is %dx%d, session locked to %dx%d",
			img.FrameID, img.Cols, img.Rows, r.w, r.h)
	}

	vals := make([]float64, len(img.Grid))
	for i, v := range img.Grid {
		vals[i] = float64(v)
	}
	vals = r.sigmoid.Apply(vals)

	rf := NewRasterFrame(r.w, r.h)
	for i, v := range vals {
		idx := int(v * (lutSize - 1))
		if idx < 0 {
			idx = 0
		} else if idx >= lutSize {
			idx = lutSize - 1
		}
		c := r.lut[idx]
		rf.Pix[i*3] = c.R
		rf.Pix[i*3+1] = c.G
		rf.Pix[i*3+2] = c.B
	}
	return rf, nil
}
