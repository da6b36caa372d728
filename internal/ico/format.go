package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Layout constants of the ICO container.
const (
	HeaderSize   = 6
	DirEntrySize = 16
	TypeIcon     = 1
	MaxSize      = 256
	MediaType    = "image/x-icon"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Header is the ICONDIR record at the start of the file.
type Header struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

// DirEntry is one ICONDIRENTRY record.
type DirEntry struct {
	Width       uint8
	Height      uint8
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Size returns the pixel width, decoding the 0 => 256 convention.
func (e DirEntry) Size() int {
	if e.Width == 0 {
		return MaxSize
	}
	return int(e.Width)
}

// Icon is a parsed ICO container.
type Icon struct {
	Header  Header
	Entries []DirEntry
	Images  [][]byte
}

// Sizes returns the square size of every entry in directory order.
func (ic *Icon) Sizes() []int {
	sizes := make([]int, len(ic.Entries))
	for i, e := range ic.Entries {
		sizes[i] = e.Size()
	}
	return sizes
}

// IsPNG reports whether the image at index i carries a PNG signature.
func (ic *Icon) IsPNG(i int) bool {
	if i < 0 || i >= len(ic.Images) {
		return false
	}
	return bytes.HasPrefix(ic.Images[i], pngSignature)
}

// dimensionByte maps a size to its one-byte directory field.
func dimensionByte(size int) (uint8, error) {
	if size < 1 || size > MaxSize {
		return 0, ErrSizeOutOfRange
	}
	if size == MaxSize {
		return 0, nil
	}
	return uint8(size), nil
}

func validateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return &PackagingError{Reason: "invalid size list", Err: ErrNoSizes}
	}
	if len(sizes) > 0xFFFF {
		return &PackagingError{Reason: "too many images", Err: ErrSizeOutOfRange}
	}
	for _, s := range sizes {
		if _, err := dimensionByte(s); err != nil {
			return &PackagingError{Reason: "invalid size list", Size: s, Err: err}
		}
	}
	return nil
}

// Encode serializes PNG payloads into an ICO container. payloads[i] must be
// the PNG for sizes[i].
func Encode(sizes []int, payloads [][]byte) ([]byte, error) {
	if err := validateSizes(sizes); err != nil {
		return nil, err
	}
	if len(payloads) != len(sizes) {
		return nil, &PackagingError{
			Reason: "payload count mismatch",
			Err:    fmt.Errorf("%d sizes, %d payloads: %w", len(sizes), len(payloads), ErrEmptyPayload),
		}
	}

	n := len(sizes)
	base := HeaderSize + n*DirEntrySize
	total := base
	for i, p := range payloads {
		if len(p) == 0 {
			return nil, &PackagingError{Reason: "missing payload", Size: sizes[i], Err: ErrEmptyPayload}
		}
		total += len(p)
	}
	if uint64(total) > 0xFFFFFFFF {
		return nil, &PackagingError{Reason: "container exceeds 4 GiB", Err: ErrSizeOutOfRange}
	}

	out := make([]byte, total)
	binary.LittleEndian.PutUint16(out[0:], 0)
	binary.LittleEndian.PutUint16(out[2:], TypeIcon)
	binary.LittleEndian.PutUint16(out[4:], uint16(n))

	offset := base
	for i, size := range sizes {
		dim, _ := dimensionByte(size)
		e := DirEntry{
			Width:       dim,
			Height:      dim,
			Planes:      1,
			BitCount:    32,
			BytesInRes:  uint32(len(payloads[i])),
			ImageOffset: uint32(offset),
		}
		putEntry(out[HeaderSize+i*DirEntrySize:], e)
		copy(out[offset:], payloads[i])
		offset += len(payloads[i])
	}
	return out, nil
}

func putEntry(b []byte, e DirEntry) {
	b[0] = e.Width
	b[1] = e.Height
	b[2] = e.ColorCount
	b[3] = e.Reserved
	binary.LittleEndian.PutUint16(b[4:], e.Planes)
	binary.LittleEndian.PutUint16(b[6:], e.BitCount)
	binary.LittleEndian.PutUint32(b[8:], e.BytesInRes)
	binary.LittleEndian.PutUint32(b[12:], e.ImageOffset)
}

func readEntry(b []byte) DirEntry {
	return DirEntry{
		Width:       b[0],
		Height:      b[1],
		ColorCount:  b[2],
		Reserved:    b[3],
		Planes:      binary.LittleEndian.Uint16(b[4:]),
		BitCount:    binary.LittleEndian.Uint16(b[6:]),
		BytesInRes:  binary.LittleEndian.Uint32(b[8:]),
		ImageOffset: binary.LittleEndian.Uint32(b[12:]),
	}
}

// Parse reads an ICO container and slices out each image payload.
// The returned Images alias data.
func Parse(data []byte) (*Icon, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidIcon, len(data))
	}
	h := Header{
		Reserved: binary.LittleEndian.Uint16(data[0:]),
		Type:     binary.LittleEndian.Uint16(data[2:]),
		Count:    binary.LittleEndian.Uint16(data[4:]),
	}
	if h.Reserved != 0 || h.Type != TypeIcon {
		return nil, fmt.Errorf("%w: reserved=%d type=%d", ErrInvalidIcon, h.Reserved, h.Type)
	}
	if h.Count == 0 {
		return nil, fmt.Errorf("%w: zero images", ErrInvalidIcon)
	}
	dirEnd := HeaderSize + int(h.Count)*DirEntrySize
	if len(data) < dirEnd {
		return nil, fmt.Errorf("%w: directory of %d entries truncated", ErrInvalidIcon, h.Count)
	}

	ic := &Icon{
		Header:  h,
		Entries: make([]DirEntry, h.Count),
		Images:  make([][]byte, h.Count),
	}
	for i := range ic.Entries {
		e := readEntry(data[HeaderSize+i*DirEntrySize:])
		start := uint64(e.ImageOffset)
		end := start + uint64(e.BytesInRes)
		if start < uint64(dirEnd) || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d spans [%d,%d) outside payload area", ErrInvalidIcon, i, start, end)
		}
		ic.Entries[i] = e
		ic.Images[i] = data[start:end]
	}
	return ic, nil
}
