package frames

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire schema of the recorded streams. Field numbers are fixed by the
// recording tools and must not change.
//
//	Vec3         { double x=1; double y=2; double z=3; }
//	Quat         { double w=1; double x=2; double y=3; double z=4; }
//	Model        { Vec3 origin=1; Vec3 di=2; Vec3 dj=3; }
//	Grid         { uint32 rows=1; uint32 cols=2; bytes data=3; }
//	Cartesian    { Model model=1; Grid data=2; }
//	Image        { int64 frame_id=1; double timestamp=2; Cartesian cartesian=3;
//	               Vec3 position=4; Quat attitude=5; }
//	Detection    { double x=1; double y=2; double aux=3; }
//	TrackerState { int64 frame_id=1; double timestamp=2;
//	               repeated Detection detection=3; }
//
// Grid.data packs rows*cols uint32 magnitudes, little-endian, row-major.

// DecodeImage decodes one raw record into an ImageFrame.
func DecodeImage(raw []byte) (*ImageFrame, error) {
	const schema = "Image"
	f := &ImageFrame{}
	seenGrid := false

	err := walkFields(schema, raw, func(num protowire.Number, typ protowire.Type, val []byte, u uint64) error {
		switch num {
		case 1:
			if typ != protowire.VarintType {
				return decodeErrf(schema, "frame_id: wire type %d, want varint", typ)
			}
			f.FrameID = int64(u)
		case 2:
			if typ != protowire.Fixed64Type {
				return decodeErrf(schema, "timestamp: wire type %d, want fixed64", typ)
			}
			f.Timestamp = math.Float64frombits(u)
		case 3:
			if typ != protowire.BytesType {
				return decodeErrf(schema, "cartesian: wire type %d, want bytes", typ)
			}
			if err := decodeCartesian(val, f); err != nil {
				return err
			}
			seenGrid = true
		case 4:
			if typ != protowire.BytesType {
				return decodeErrf(schema, "position: wire type %d, want bytes", typ)
			}
			v, err := decodeVec3(schema, val)
			if err != nil {
				return err
			}
			f.Extrinsic.Position = v
		case 5:
			if typ != protowire.BytesType {
				return decodeErrf(schema, "attitude: wire type %d, want bytes", typ)
			}
			q, err := decodeQuat(schema, val)
			if err != nil {
				return err
			}
			f.Extrinsic.Attitude = q
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seenGrid {
		return nil, decodeErrf(schema, "record carries no image grid")
	}
	return f, nil
}

// DecodeTrackerState decodes one raw record into a PointCloudFrame.
func DecodeTrackerState(raw []byte) (*PointCloudFrame, error) {
	const schema = "TrackerState"
	f := &PointCloudFrame{}

	err := walkFields(schema, raw, func(num protowire.Number, typ protowire.Type, val []byte, u uint64) error {
		switch num {
		case 1:
			if typ != protowire.VarintType {
				return decodeErrf(schema, "frame_id: wire type %d, want varint", typ)
			}
			f.FrameID = int64(u)
		case 2:
			if typ != protowire.Fixed64Type {
				return decodeErrf(schema, "timestamp: wire type %d, want fixed64", typ)
			}
			f.Timestamp = math.Float64frombits(u)
		case 3:
			if typ != protowire.BytesType {
				return decodeErrf(schema, "detection: wire type %d, want bytes", typ)
			}
			pt, err := decodeDetection(schema, val)
			if err != nil {
				return err
			}
			f.Points = append(f.Points, pt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// walkFields iterates the top-level fields of a wire message. For varint and
// fixed64 fields the scalar is passed as u; for bytes fields the sub-slice is
// passed as val. Unknown fields are skipped.
func walkFields(schema string, b []byte, visit func(num protowire.Number, typ protowire.Type, val []byte, u uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeErrf(schema, "malformed field tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		var val []byte
		var u uint64
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return decodeErrf(schema, "field %d: malformed varint: %v", num, protowire.ParseError(n))
			}
			u = v
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return decodeErrf(schema, "field %d: truncated fixed64: %v", num, protowire.ParseError(n))
			}
			u = v
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return decodeErrf(schema, "field %d: truncated fixed32: %v", num, protowire.ParseError(n))
			}
			u = uint64(v)
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return decodeErrf(schema, "field %d: truncated length-delimited value: %v", num, protowire.ParseError(n))
			}
			val = v
			b = b[n:]
		default:
			return decodeErrf(schema, "field %d: unsupported wire type %d", num, typ)
		}

		if err := visit(num, typ, val, u); err != nil {
			return err
		}
	}
	return nil
}

func decodeCartesian(b []byte, f *ImageFrame) error {
	const schema = "Image"
	return walkFields(schema, b, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return decodeErrf(schema, "cartesian field %d: wire type %d, want bytes", num, typ)
		}
		switch num {
		case 1:
			m, err := decodeModel(schema, val)
			if err != nil {
				return err
			}
			f.Model = m
		case 2:
			return decodeGrid(schema, val, f)
		}
		return nil
	})
}

func decodeModel(schema string, b []byte) (ImageModel, error) {
	var m ImageModel
	err := walkFields(schema, b, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return decodeErrf(schema, "model field %d: wire type %d, want bytes", num, typ)
		}
		v, err := decodeVec3(schema, val)
		if err != nil {
			return err
		}
		switch num {
		case 1:
			m.Origin = v
		case 2:
			m.Di = v
		case 3:
			m.Dj = v
		}
		return nil
	})
	return m, err
}

func decodeGrid(schema string, b []byte, f *ImageFrame) error {
	var data []byte
	err := walkFields(schema, b, func(num protowire.Number, typ protowire.Type, val []byte, u uint64) error {
		switch num {
		case 1:
			if typ != protowire.VarintType {
				return decodeErrf(schema, "grid rows: wire type %d, want varint", typ)
			}
			f.Rows = int(u)
		case 2:
			if typ != protowire.VarintType {
				return decodeErrf(schema, "grid cols: wire type %d, want varint", typ)
			}
			f.Cols = int(u)
		case 3:
			if typ != protowire.BytesType {
				return decodeErrf(schema, "grid data: wire type %d, want bytes", typ)
			}
			data = val
		}
		return nil
	})
	if err != nil {
		return err
	}

	if f.Rows <= 0 || f.Cols <= 0 {
		return decodeErrf(schema, "grid dimensions %dx%d invalid", f.Rows, f.Cols)
	}
	if len(data) != f.Rows*f.Cols*4 {
		return decodeErrf(schema, "grid data is %d bytes, want %d for %dx%d cells",
			len(data), f.Rows*f.Cols*4, f.Rows, f.Cols)
	}

	// Copy out of the record buffer; the frame outlives the raw record.
	f.Grid = make([]uint32, f.Rows*f.Cols)
	for i := range f.Grid {
		f.Grid[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return nil
}

func decodeVec3(schema string, b []byte) (Vec3, error) {
	var v Vec3
	err := walkFields(schema, b, func(num protowire.Number, typ protowire.Type, _ []byte, u uint64) error {
		if typ != protowire.Fixed64Type {
			return decodeErrf(schema, "vec3 field %d: wire type %d, want fixed64", num, typ)
		}
		switch num {
		case 1:
			v.X = math.Float64frombits(u)
		case 2:
			v.Y = math.Float64frombits(u)
		case 3:
			v.Z = math.Float64frombits(u)
		}
		return nil
	})
	return v, err
}

func decodeQuat(schema string, b []byte) (Quat, error) {
	var q Quat
	err := walkFields(schema, b, func(num protowire.Number, typ protowire.Type, _ []byte, u uint64) error {
		if typ != protowire.Fixed64Type {
			return decodeErrf(schema, "quat field %d: wire type %d, want fixed64", num, typ)
		}
		switch num {
		case 1:
			q.W = math.Float64frombits(u)
		case 2:
			q.X = math.Float64frombits(u)
		case 3:
			q.Y = math.Float64frombits(u)
		case 4:
			q.Z = math.Float64frombits(u)
		}
		return nil
	})
	return q, err
}

func decodeDetection(schema string, b []byte) (Point, error) {
	var p Point
	err := walkFields(schema, b, func(num protowire.Number, typ protowire.Type, _ []byte, u uint64) error {
		if typ != protowire.Fixed64Type {
			return decodeErrf(schema, "detection field %d: wire type %d, want fixed64", num, typ)
		}
		switch num {
		case 1:
			p.X = math.Float64frombits(u)
		case 2:
			p.Y = math.Float64frombits(u)
		case 3:
			p.Aux = math.Float64frombits(u)
		}
		return nil
	})
	return p, err
}
