// Package frames holds the decoded radar record types and their protobuf
// wire codec. Decoding is pure: raw record bytes in, typed frame out, no
// shared state and no I/O.
package frames

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Frame is one decoded record: a dense radar image or a tracker point cloud.
type Frame interface {
	// ID returns the frame id. Monotonic per stream, not gap-free.
	ID() int64
	// Time returns the capture timestamp in seconds.
	Time() float64
}

// Vec3 is a 3-vector in the sensor's reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return floats.Norm([]float64{v.X, v.Y, v.Z}, 2)
}

// Dot returns the inner product of v and u.
func (v Vec3) Dot(u Vec3) float64 {
	return floats.Dot([]float64{v.X, v.Y, v.Z}, []float64{u.X, u.Y, u.Z})
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Quat is a unit quaternion (w, x, y, z) describing sensor attitude.
type Quat struct {
	W, X, Y, Z float64
}

// Extrinsic is the sensor's mounting pose.
type Extrinsic struct {
	Position Vec3
	Attitude Quat
}

// ImageModel maps image grid cells to physical coordinates: the world
// position of cell (i, j) is origin + i*di + j*dj.
type ImageModel struct {
	Origin Vec3
	Di     Vec3
	Dj     Vec3
}

// WorldToGrid projects a world point onto the image grid, returning the
// nearest (i, j) cell indices.
func (m ImageModel) WorldToGrid(p Vec3) (i, j int) {
	rel := p.Sub(m.Origin)
	iRes := m.Di.Norm()
	jRes := m.Dj.Norm()
	iDir := m.Di.Scale(1 / iRes)
	jDir := m.Dj.Scale(1 / jRes)
	i = int(math.Round(rel.Dot(iDir) / iRes))
	j = int(math.Round(rel.Dot(jDir) / jRes))
	return i, j
}

// GridToWorld returns the world position of grid cell (i, j).
func (m ImageModel) GridToWorld(i, j int) Vec3 {
	p := m.Origin
	p = Vec3{
		p.X + float64(i)*m.Di.X + float64(j)*m.Dj.X,
		p.Y + float64(i)*m.Di.Y + float64(j)*m.Dj.Y,
		p.Z + float64(i)*m.Di.Z + float64(j)*m.Dj.Z,
	}
	return p
}

// PixelsPerMeter derives the raster scale from the grid resolution.
func (m ImageModel) PixelsPerMeter() float64 {
	return 1 / m.Di.Norm()
}

// ImageFrame is one dense radar image record.
type ImageFrame struct {
	FrameID   int64
	Timestamp float64
	Rows      int
	Cols      int
	// Grid holds magnitudes in row-major order, Rows*Cols cells.
	Grid      []uint32
	Model     ImageModel
	Extrinsic Extrinsic
}

func (f *ImageFrame) ID() int64     { return f.FrameID }
func (f *ImageFrame) Time() float64 { return f.Timestamp }

// Point is one tracker detection: two planar coordinates plus an auxiliary
// channel (intensity or radial velocity depending on tracker configuration).
type Point struct {
	X, Y, Aux float64
}

// PointCloudFrame is one tracker state record. Points may be empty.
type PointCloudFrame struct {
	FrameID   int64
	Timestamp float64
	Points    []Point
}

func (f *PointCloudFrame) ID() int64     { return f.FrameID }
func (f *PointCloudFrame) Time() float64 { return f.Timestamp }

// DecodeError reports raw record bytes that do not conform to the expected
// schema. It is fatal to the session decoding the stream.
type DecodeError struct {
	Schema string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s record: %s", e.Schema, e.Reason)
}

func decodeErrf(schema, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Schema: schema, Reason: fmt.Sprintf(format, args...)}
}
