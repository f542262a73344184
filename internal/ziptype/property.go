package ziptype

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/meigma/zipview/internal/sizing"
)

// TimestampLayout is the layout used to render timestamps in properties.
const TimestampLayout = "2006-01-02 15:04:05"

// Property is a named, display-ready attribute.
type Property struct {
	Name  string
	Value string
}

// Properties returns display properties of the entry. The timestamp is
// empty for NoTimestamp.
func (e Entry) Properties() []Property {
	ts := ""
	if t, ok := e.Time(); ok {
		ts = t.Format(TimestampLayout)
	}
	return []Property{
		{Name: "Filename", Value: e.Base()},
		{Name: "Pathname", Value: e.Path},
		{Name: "Timestamp", Value: ts},
		{Name: "Size", Value: FormatSize(e.Size)},
		{Name: "Compressed size", Value: FormatSize(e.CompressedSize)},
		{Name: "CRC", Value: fmt.Sprintf("%X", e.CRC32)},
	}
}

// FormatSize renders a byte count with thousands separators.
func FormatSize(n uint64) string {
	v, err := sizing.ToInt64(n, ErrSizeOverflow)
	if err != nil {
		v = math.MaxInt64
	}
	return humanize.Comma(v)
}
