package ico

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodePayloadMismatch(t *testing.T) {
	_, err := Encode([]int{16, 32}, [][]byte{fakePNG(16)})
	var perr *PackagingError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PackagingError, got %v", err)
	}

	_, err = Encode([]int{16}, [][]byte{nil})
	if !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Expected ErrEmptyPayload, got %v", err)
	}
}

func TestDirEntrySize(t *testing.T) {
	if (DirEntry{Width: 0}).Size() != 256 {
		t.Error("Expected width 0 to decode as 256")
	}
	if (DirEntry{Width: 48}).Size() != 48 {
		t.Error("Expected width 48 to decode as 48")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	valid, err := Encode([]int{16, 32}, [][]byte{fakePNG(16), fakePNG(32)})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte{}, valid...)
		return f(b)
	}

	cases := map[string][]byte{
		"short":     valid[:4],
		"reserved":  mutate(func(b []byte) []byte { b[0] = 1; return b }),
		"cursor":    mutate(func(b []byte) []byte { binary.LittleEndian.PutUint16(b[2:], 2); return b }),
		"zeroCount": mutate(func(b []byte) []byte { binary.LittleEndian.PutUint16(b[4:], 0); return b }),
		"truncatedDirectory": mutate(func(b []byte) []byte {
			return b[:HeaderSize+DirEntrySize+4]
		}),
		"truncatedPayload": mutate(func(b []byte) []byte { return b[:len(b)-1] }),
		"offsetIntoDirectory": mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[HeaderSize+12:], 10)
			return b
		}),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(data); !errors.Is(err, ErrInvalidIcon) {
				t.Errorf("Expected ErrInvalidIcon, got %v", err)
			}
		})
	}
}

func TestIsPNGOutOfRange(t *testing.T) {
	ic := &Icon{Images: [][]byte{fakePNG(16)}}
	if ic.IsPNG(-1) || ic.IsPNG(1) {
		t.Error("Expected out-of-range indexes to report false")
	}
	ic.Images[0] = []byte("BM not a png")
	if ic.IsPNG(0) {
		t.Error("Expected non-PNG payload to report false")
	}
}
