package volume

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"voxelgrid/pkg/affine"
	"voxelgrid/pkg/tensor"
)

// Binary volume file layout, little endian:
//
//	magic     [4]byte  "VXGR"
//	version   uint16
//	dtype     uint8
//	reserved  uint8
//	channels  uint32
//	baseshape [3]uint32
//	matrix    [16]float64 row-major voxel-to-world transform
//	payload   elements in row-major (C, W, H, D) order, encoded per dtype
var fileMagic = [4]byte{'V', 'X', 'G', 'R'}

const fileVersion uint16 = 1

// maxFileElements bounds the element count a volume file header may
// declare, so a corrupt header cannot demand an absurd allocation.
const maxFileElements = 1 << 31

type fileHeader struct {
	Magic     [4]byte
	Version   uint16
	DType     uint8
	Reserved  uint8
	Channels  uint32
	Baseshape [3]uint32
	Matrix    [16]float64
}

// Save writes the volume to w in the binary volume format. The payload is
// encoded with the element width of the volume dtype.
func (v *Volume) Save(w io.Writer) error {
	header := fileHeader{
		Magic:   fileMagic,
		Version: fileVersion,
		DType:   uint8(v.DType()),
	}
	header.Channels = uint32(v.Channels())
	base := v.Baseshape()
	for axis := 0; axis < 3; axis++ {
		header.Baseshape[axis] = uint32(base[axis])
	}
	matrix := v.geometry.Matrix()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			header.Matrix[i*4+j] = matrix.At(i, j)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write volume header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, encodePayload(v.data)); err != nil {
		return fmt.Errorf("failed to write volume payload: %w", err)
	}
	return nil
}

// Load reads a volume from r in the binary volume format.
func Load(r io.Reader) (*Volume, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read volume header: %w", err)
	}
	if header.Magic != fileMagic {
		return nil, fmt.Errorf("not a volume file: bad magic %q", header.Magic[:])
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported volume file version %d", header.Version)
	}
	dtype := tensor.DType(header.DType)
	if _, err := tensor.ParseDType(dtype.String()); err != nil {
		return nil, fmt.Errorf("volume file: %w", err)
	}

	if header.Channels == 0 {
		return nil, fmt.Errorf("volume file declares zero channels")
	}
	if int64(header.Channels) > maxFileElements {
		return nil, fmt.Errorf("volume file declares %d channels, exceeding the %d element limit",
			header.Channels, int64(maxFileElements))
	}
	count := int64(header.Channels)
	for axis, s := range header.Baseshape {
		if s == 0 {
			return nil, fmt.Errorf("volume file declares a zero extent on axis %d", axis)
		}
		count *= int64(s)
		if count > maxFileElements {
			return nil, fmt.Errorf("volume file declares %dx%dx%dx%d elements, exceeding the %d element limit",
				header.Channels, header.Baseshape[0], header.Baseshape[1], header.Baseshape[2], int64(maxFileElements))
		}
	}

	channels := int(header.Channels)
	base := [3]int{int(header.Baseshape[0]), int(header.Baseshape[1]), int(header.Baseshape[2])}
	values, err := decodePayload(r, dtype, int(count))
	if err != nil {
		return nil, fmt.Errorf("failed to read volume payload: %w", err)
	}

	var linear [3][3]float64
	var translation [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			linear[i][j] = header.Matrix[i*4+j]
		}
		translation[i] = header.Matrix[i*4+3]
	}

	data, err := tensor.FromSlice(dtype, values, channels, base[0], base[1], base[2])
	if err != nil {
		return nil, fmt.Errorf("volume file: %v", err)
	}
	return New(data, affine.NewGeometry(base, affine.New(linear, translation)))
}

// SaveFile writes the volume to a file, creating or truncating it.
func (v *Volume) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create volume file: %w", err)
	}
	defer file.Close()
	if err := v.Save(file); err != nil {
		return err
	}
	return file.Close()
}

// LoadFile reads a volume from a file.
func LoadFile(path string) (*Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume file: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// encodePayload packs tensor values into the on-disk element type.
func encodePayload(t *tensor.Dense) interface{} {
	values := t.Data()
	switch t.DType() {
	case tensor.Float32:
		out := make([]float32, len(values))
		for i, v := range values {
			out[i] = float32(v)
		}
		return out
	case tensor.Int32:
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = int32(v)
		}
		return out
	case tensor.Int16:
		out := make([]int16, len(values))
		for i, v := range values {
			out[i] = int16(v)
		}
		return out
	case tensor.Uint8, tensor.Bool:
		out := make([]uint8, len(values))
		for i, v := range values {
			out[i] = uint8(v)
		}
		return out
	default:
		return values
	}
}

// decodePayload reads n on-disk elements back into float64 values.
func decodePayload(r io.Reader, dtype tensor.DType, n int) ([]float64, error) {
	values := make([]float64, n)
	switch dtype {
	case tensor.Float32:
		raw := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			values[i] = float64(v)
		}
	case tensor.Int32:
		raw := make([]int32, n)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			values[i] = float64(v)
		}
	case tensor.Int16:
		raw := make([]int16, n)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			values[i] = float64(v)
		}
	case tensor.Uint8, tensor.Bool:
		raw := make([]uint8, n)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			values[i] = float64(v)
		}
	default:
		if err := binary.Read(r, binary.LittleEndian, values); err != nil {
			return nil, err
		}
	}
	return values, nil
}
