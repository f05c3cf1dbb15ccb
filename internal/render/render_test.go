package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarlab/radarview/internal/frames"
)

func gridFrame(id int64, rows, cols int) *frames.ImageFrame {
	f := &frames.ImageFrame{
		FrameID:   id,
		Timestamp: float64(id) * 0.1,
		Rows:      rows,
		Cols:      cols,
		Grid:      make([]uint32, rows*cols),
	}
	for i := range f.Grid {
		// A spread of magnitudes so the sigmoid has usable statistics.
		f.Grid[i] = uint32(1 + i*37%100000)
	}
	return f
}

func TestImageRendererDimensions(t *testing.T) {
	r := NewImageRenderer()

	for id := int64(0); id < 5; id++ {
		rf, err := r.Render(gridFrame(id, 100, 100))
		require.NoError(t, err)
		assert.Equal(t, 100, rf.W)
		assert.Equal(t, 100, rf.H)
		assert.Len(t, rf.Pix, 100*100*3)
	}
}

func TestImageRendererRejectsResize(t *testing.T) {
	r := NewImageRenderer()
	_, err := r.Render(gridFrame(0, 50, 80))
	require.NoError(t, err)

	_, err = r.Render(gridFrame(1, 50, 81))
	require.Error(t, err)
}

func TestImageRendererRejectsWrongType(t *testing.T) {
	r := NewImageRenderer()
	_, err := r.Render(&frames.PointCloudFrame{})
	require.Error(t, err)
}

func TestImageRendererProducesNonUniformOutput(t *testing.T) {
	r := NewImageRenderer()
	rf, err := r.Render(gridFrame(0, 32, 32))
	require.NoError(t, err)

	first := [3]uint8{rf.Pix[0], rf.Pix[1], rf.Pix[2]}
	uniform := true
	for i := 3; i < len(rf.Pix); i += 3 {
		if rf.Pix[i] != first[0] || rf.Pix[i+1] != first[1] || rf.Pix[i+2] != first[2] {
			uniform = false
			break
		}
	}
	assert.False(t, uniform, "a graded magnitude field should not colorize to a flat image")
}

func TestPointCloudRendererSize(t *testing.T) {
	r := NewPointCloudRenderer()
	w, h := r.Size()
	assert.Equal(t, 600, w)
	assert.Equal(t, 600, h)
}

func TestPointAtWindowOriginMapsToPixelZero(t *testing.T) {
	r := NewPointCloudRenderer()
	rf, err := r.Render(&frames.PointCloudFrame{
		Points: []frames.Point{{X: r.XMin, Y: r.YMin, Aux: 1}},
	})
	require.NoError(t, err)

	// Marker centre lands on (0, 0).
	assert.Equal(t, uint8(255), rf.Pix[0], "red channel at (0,0)")
	assert.Equal(t, uint8(0), rf.Pix[1], "green channel at (0,0)")
	assert.Equal(t, uint8(0), rf.Pix[2], "blue channel at (0,0)")
}

func TestOutOfWindowPointsDropped(t *testing.T) {
	r := NewPointCloudRenderer()

	inWindow := []frames.Point{{X: 10, Y: 5, Aux: 1}}
	outside := []frames.Point{
		{X: -0.1, Y: 0},  // behind the sensor
		{X: 61, Y: 0},    // beyond max range
		{X: 10, Y: -31},  // left of the window
		{X: 10, Y: 30.5}, // right of the window
		// Fractionally outside, within one cell of the window minimum.
		// Truncation toward zero must not fold these onto pixel 0.
		{X: r.XMin - r.Res/2, Y: 0},
		{X: 10, Y: r.YMin - r.Res/2},
		{X: r.XMax, Y: 0},  // exactly on the exclusive max edge
		{X: 10, Y: r.YMax}, // exactly on the exclusive max edge
	}

	base, err := r.Render(&frames.PointCloudFrame{Points: inWindow})
	require.NoError(t, err)
	withOutside, err := r.Render(&frames.PointCloudFrame{Points: append(inWindow, outside...)})
	require.NoError(t, err)

	assert.True(t, bytes.Equal(base.Pix, withOutside.Pix),
		"out-of-window points must not change the raster")
}

func TestEmptyPointCloudRenders(t *testing.T) {
	r := NewPointCloudRenderer()
	rf, err := r.Render(&frames.PointCloudFrame{})
	require.NoError(t, err)

	blank := make([]uint8, len(rf.Pix))
	assert.True(t, bytes.Equal(rf.Pix, blank), "empty cloud should render a blank raster")
}

func TestMarkerClippedAtEdges(t *testing.T) {
	r := NewPointCloudRenderer()
	// Corner points whose markers partially fall off the raster.
	_, err := r.Render(&frames.PointCloudFrame{
		Points: []frames.Point{
			{X: r.XMin, Y: r.YMin},
			{X: r.XMax - r.Res/2, Y: r.YMax - r.Res/2},
		},
	})
	require.NoError(t, err)
}

func TestSigmoidOutputRange(t *testing.T) {
	s := NewSigmoid()
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = float64(1 + i*i)
	}

	out := s.Apply(vals)
	for i, v := range out {
		if v < 0 || v > 1 {
			t.Fatalf("Apply()[%d] = %v, want within [0, 1]", i, v)
		}
	}
}

func TestSigmoidAllBelowFloorPassesThrough(t *testing.T) {
	s := NewSigmoid()
	vals := []float64{0, 0, 0}
	out := s.Apply(vals)
	assert.Equal(t, []float64{0, 0, 0}, out)
}

func TestRasterFrameSetAt(t *testing.T) {
	rf := NewRasterFrame(4, 3)
	rf.SetRGB(2, 1, 10, 20, 30)

	c := rf.At(2, 1)
	r, g, b, _ := c.RGBA()
	assert.Equal(t, uint32(10<<8|10), r)
	assert.Equal(t, uint32(20<<8|20), g)
	assert.Equal(t, uint32(30<<8|30), b)

	// Out-of-bounds writes are ignored, not a panic.
	rf.SetRGB(-1, 0, 1, 1, 1)
	rf.SetRGB(4, 0, 1, 1, 1)
	rf.SetRGB(0, 3, 1, 1, 1)
}
