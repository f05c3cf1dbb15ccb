package frames

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
)

func testImageFrame() *ImageFrame {
	f := &ImageFrame{
		FrameID:   42,
		Timestamp: 3.14159,
		Rows:      4,
		Cols:      5,
		Model: ImageModel{
			Origin: Vec3{1, 2, 3},
			Di:     Vec3{0.25, 0, 0},
			Dj:     Vec3{0, 0.25, 0},
		},
		Extrinsic: Extrinsic{
			Position: Vec3{1, 2, 3},
			Attitude: Quat{1, 0, 0, 0},
		},
	}
	f.Grid = make([]uint32, f.Rows*f.Cols)
	for i := range f.Grid {
		f.Grid[i] = uint32(i * 1000)
	}
	return f
}

func TestImageRoundTrip(t *testing.T) {
	want := testImageFrame()
	got, err := DecodeImage(MarshalImage(want))
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded frame mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackerStateRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
	}{
		{"empty point cloud", nil},
		{"single point", []Point{{10, -3, 0.5}}},
		{"many points", []Point{{0, -30, 1}, {59.9, 29.9, 2}, {12.5, 0, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := &PointCloudFrame{FrameID: 7, Timestamp: 1.5, Points: tt.points}
			got, err := DecodeTrackerState(MarshalTrackerState(want))
			if err != nil {
				t.Fatalf("DecodeTrackerState() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("decoded frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeImageMalformed(t *testing.T) {
	valid := MarshalImage(testImageFrame())

	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated record", valid[:len(valid)-6]},
		{"garbage bytes", []byte{0xff, 0xff, 0xff, 0xff}},
		{"no grid", func() []byte {
			var b []byte
			b = protowire.AppendTag(b, 1, protowire.VarintType)
			b = protowire.AppendVarint(b, 1)
			return b
		}()},
		{"frame_id wrong wire type", func() []byte {
			var b []byte
			b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
			b = protowire.AppendFixed64(b, 1)
			return b
		}()},
		{"grid data length mismatch", func() []byte {
			f := testImageFrame()
			f.Grid = f.Grid[:len(f.Grid)-1]
			// Re-marshal with a short grid; declared rows*cols no longer match.
			var b []byte
			b = protowire.AppendTag(b, 3, protowire.BytesType)
			b = protowire.AppendBytes(b, marshalCartesian(f))
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeImage(tt.raw)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeImage() error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeTrackerStateMalformed(t *testing.T) {
	valid := MarshalTrackerState(&PointCloudFrame{FrameID: 1, Timestamp: 2, Points: []Point{{1, 2, 3}}})

	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated record", valid[:len(valid)-3]},
		{"detection wrong wire type", func() []byte {
			var b []byte
			b = protowire.AppendTag(b, 3, protowire.VarintType)
			b = protowire.AppendVarint(b, 9)
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTrackerState(tt.raw)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeTrackerState() error = %v, want *DecodeError", err)
			}
		})
	}
}

// Unknown fields must be skipped, not rejected: recordings from newer tools
// may carry fields this viewer does not know about.
func TestDecodeSkipsUnknownFields(t *testing.T) {
	b := MarshalTrackerState(&PointCloudFrame{FrameID: 9, Timestamp: 0.25})
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future extension"))

	got, err := DecodeTrackerState(b)
	if err != nil {
		t.Fatalf("DecodeTrackerState() error = %v", err)
	}
	if got.FrameID != 9 || got.Timestamp != 0.25 {
		t.Errorf("frame = %+v, want frame_id=9 timestamp=0.25", got)
	}
}

func TestWorldToGridRoundTrip(t *testing.T) {
	m := ImageModel{
		Origin: Vec3{10, 20, 0},
		Di:     Vec3{0.5, 0, 0},
		Dj:     Vec3{0, 0.5, 0},
	}

	tests := []struct {
		i, j int
	}{
		{0, 0}, {3, 7}, {100, 1}, {55, 55},
	}
	for _, tt := range tests {
		p := m.GridToWorld(tt.i, tt.j)
		i, j := m.WorldToGrid(p)
		if i != tt.i || j != tt.j {
			t.Errorf("WorldToGrid(GridToWorld(%d, %d)) = (%d, %d)", tt.i, tt.j, i, j)
		}
	}
}

func TestPixelsPerMeter(t *testing.T) {
	m := ImageModel{Di: Vec3{0.25, 0, 0}, Dj: Vec3{0, 0.25, 0}}
	if got := m.PixelsPerMeter(); math.Abs(got-4) > 1e-12 {
		t.Errorf("PixelsPerMeter() = %v, want 4", got)
	}
}
