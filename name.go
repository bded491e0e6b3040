package sswave

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Name is a decoded wavetable name. Every byte is a code point of the same
// value; names are not UTF-8.
type Name []byte

// String maps every byte to the code point of the same value.
func (n Name) String() string {
	var sb strings.Builder
	sb.Grow(len(n))

	for _, b := range n {
		sb.WriteRune(rune(b))
	}

	return sb.String()
}

// Key returns the name with its padding removed. Keys are used for lookups.
func (n Name) Key() string {
	return trimName(n.String())
}

func trimName(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}

// ParseName converts s into a name of the given length, padded with spaces.
// Every rune must fit in a single byte.
func ParseName(s string, length int) (Name, error) {
	if utf8.RuneCountInString(s) > length {
		return nil, fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, s, length)
	}

	name := make(Name, 0, length)
	for _, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("%w: %q contains %q", ErrInvalidName, s, r)
		}

		name = append(name, byte(r))
	}

	for len(name) < length {
		name = append(name, ' ')
	}

	return name, nil
}

// DecodeName reads name i from the image.
func (c *Codec) DecodeName(img io.ReaderAt, i int) (Name, error) {
	r, err := c.cfg.Layout.NameRange(i)
	if err != nil {
		return nil, err
	}

	raw, err := readRange(img, r)
	if err != nil {
		return nil, fmt.Errorf("name %d: %w", i, err)
	}

	reverseBytes(raw, raw)

	return Name(raw), nil
}

// DecodeNames reads the whole name table.
func (c *Codec) DecodeNames(img io.ReaderAt) ([]Name, error) {
	names := make([]Name, c.cfg.Layout.WavetableCount)

	for i := range names {
		name, err := c.DecodeName(img, i)
		if err != nil {
			return nil, err
		}

		names[i] = name
	}

	return names, nil
}

// EncodeName writes name i into the image. Only the bytes of the name slot
// are modified.
func (c *Codec) EncodeName(img Image, i int, name Name) error {
	r, err := c.cfg.Layout.NameRange(i)
	if err != nil {
		return err
	}

	if len(name) != r.Length {
		return fmt.Errorf("%w: %d bytes, slot holds %d", ErrInvalidName, len(name), r.Length)
	}

	raw := make([]byte, r.Length)
	reverseBytes(raw, name)

	if err := writeRange(img, r, raw); err != nil {
		return fmt.Errorf("name %d: %w", i, err)
	}

	return nil
}
