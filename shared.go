package aseview

import "encoding/binary"

// From https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md#references

type (
	BYTE  = uint8  // An 8-bit unsigned integer value
	WORD  = uint16 // A 16-bit unsigned integer value
	SHORT = int16  // A 16-bit signed integer value
	DWORD = uint32 // A 32-bit unsigned integer value
)

// The format is a packed byte stream, so every read goes through byte
// indexing and never assumes alignment of the underlying buffer.

func word(b []byte, off int) WORD {
	return binary.LittleEndian.Uint16(b[off:])
}

func short(b []byte, off int) SHORT {
	return SHORT(binary.LittleEndian.Uint16(b[off:]))
}

func dword(b []byte, off int) DWORD {
	return binary.LittleEndian.Uint32(b[off:])
}

// prefix splits the first n bytes off b. It fails with ErrCast when b is
// shorter than n, leaving b untouched.
func prefix(b []byte, n int, what string) ([]byte, []byte, error) {
	if len(b) < n {
		return nil, b, castError(what, n, len(b))
	}
	return b[:n:n], b[n:], nil
}
