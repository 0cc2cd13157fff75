package xmlwire

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Declaration precedes every request body.
const Declaration = "<?xml version=\"1.0\"?>\r\n"

// SerializationNamespace is the namespace of primitive payloads such as String.
const SerializationNamespace = "http://schemas.microsoft.com/2003/10/Serialization/"

// Marshal encodes v as an XML document preceded by Declaration.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Declaration)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, &EncodeError{Type: fmt.Sprintf("%T", v), Err: err}
	}
	return buf.Bytes(), nil
}

// MarshalList encodes items wrapped in an ArrayOf<itemName> root element.
func MarshalList[T any](itemName string, items []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Declaration)

	enc := xml.NewEncoder(&buf)
	root := xml.StartElement{Name: xml.Name{Local: "ArrayOf" + itemName}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, &EncodeError{Type: root.Name.Local, Err: err}
	}
	for _, item := range items {
		if err := enc.EncodeElement(item, xml.StartElement{Name: xml.Name{Local: itemName}}); err != nil {
			return nil, &EncodeError{Type: root.Name.Local, Err: err}
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, &EncodeError{Type: root.Name.Local, Err: err}
	}
	if err := enc.Flush(); err != nil {
		return nil, &EncodeError{Type: root.Name.Local, Err: err}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v. Malformed or mismatched documents yield a
// *DecodeError.
func Unmarshal(data []byte, v any) error {
	if IsEmpty(data) {
		return &DecodeError{Type: fmt.Sprintf("%T", v), Err: ErrEmptyBody}
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return &DecodeError{Type: fmt.Sprintf("%T", v), Body: snippet(data), Err: err}
	}
	return nil
}

type list[T any] struct {
	Items []T `xml:",any"`
}

// UnmarshalList decodes an ArrayOf… document whose children are T, whatever
// the child element name.
func UnmarshalList[T any](data []byte) ([]T, error) {
	var l list[T]
	if err := Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// IsEmpty reports whether data holds nothing but whitespace.
func IsEmpty(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// String is the wire form of a bare string payload.
type String struct {
	XMLName xml.Name `xml:"http://schemas.microsoft.com/2003/10/Serialization/ string"`
	Value   string   `xml:",chardata"`
}

// NewString wraps s for sending.
func NewString(s string) String {
	return String{Value: s}
}

func snippet(data []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(data))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// Time is a timestamp that accepts the zone-less layouts the service emits.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}
	return []byte(t.Format("2006-01-02T15:04:05")), nil
}

// UUID is a uuid.UUID that decodes an empty or nil element as uuid.Nil.
type UUID struct {
	uuid.UUID
}

// NewUUID wraps id for sending. A nil id yields nil so omitempty drops it.
func NewUUID(id uuid.UUID) *UUID {
	if id == uuid.Nil {
		return nil
	}
	return &UUID{UUID: id}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UUID) UnmarshalText(text []byte) error {
	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		u.UUID = uuid.Nil
		return nil
	}
	id, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	u.UUID = id
	return nil
}

// Value returns the wrapped id, or uuid.Nil for a nil pointer.
func (u *UUID) Value() uuid.UUID {
	if u == nil {
		return uuid.Nil
	}
	return u.UUID
}
