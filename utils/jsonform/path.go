package jsonform

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

type SegmentKind uint8

const (
	SegmentKey SegmentKind = iota
	SegmentIndex
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Kind  SegmentKind `msgpack:"k"`
	Key   string      `msgpack:"s,omitempty"`
	Index int         `msgpack:"i,omitempty"`
}

func Key(k string) Segment {
	return Segment{Kind: SegmentKey, Key: k}
}

func Index(i int) Segment {
	return Segment{Kind: SegmentIndex, Index: i}
}

// ParseSegment reads a textual segment. A segment made only of ASCII digits is
// an array index; everything else is an object key.
func ParseSegment(s string) Segment {
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return Index(n)
		}
	}
	return Key(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (s Segment) IsIndex() bool {
	return s.Kind == SegmentIndex
}

// index returns the array position addressed by s. All-digit keys count as
// indices too, so paths typed as text still navigate arrays.
func (s Segment) index() (int, bool) {
	if s.Kind == SegmentIndex {
		return s.Index, s.Index >= 0
	}
	if isDigits(s.Key) {
		n, err := strconv.Atoi(s.Key)
		return n, err == nil
	}
	return 0, false
}

// String is the raw key or the decimal index.
func (s Segment) String() string {
	if s.Kind == SegmentIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// MarshalJSON encodes indices as JSON numbers and keys as JSON strings.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Kind == SegmentIndex {
		return []byte(strconv.Itoa(s.Index)), nil
	}
	return sonic.Marshal(s.Key)
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var k string
		if err := sonic.Unmarshal(data, &k); err != nil {
			return err
		}
		*s = Key(k)
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil || n < 0 {
		return fmt.Errorf("invalid path segment %s: want a string key or a non-negative integer index", data)
	}
	*s = Index(n)
	return nil
}

// Path addresses one location inside a JSON document.
type Path []Segment

// ParsePath reads dotted text such as "items.0.title" or "items[0].title".
// Dots, brackets and backslashes inside keys are escaped with a backslash.
func ParsePath(text string) Path {
	if text == "" {
		return Path{}
	}
	var (
		path    Path
		current strings.Builder
		pending bool
	)
	flush := func() {
		if pending || current.Len() > 0 {
			path = append(path, ParseSegment(current.String()))
		}
		current.Reset()
		pending = false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			i++
			current.WriteByte(text[i])
			pending = true
		case c == '.':
			flush()
			pending = true
		case c == '[':
			flush()
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				current.WriteString(text[i+1:])
				pending = true
				i = len(text)
				continue
			}
			path = append(path, ParseSegment(text[i+1:i+end]))
			i += end
		default:
			current.WriteByte(c)
			pending = true
		}
	}
	flush()
	return path
}

// String renders the path as "items[0].title". It is the inverse of ParsePath
// for every path whose keys are not all digits.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex() {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		for j := 0; j < len(seg.Key); j++ {
			switch seg.Key[j] {
			case '.', '[', ']', '\\':
				b.WriteByte('\\')
			}
			b.WriteByte(seg.Key[j])
		}
	}
	return b.String()
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Child returns a new path extended by seg; p is never aliased.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
