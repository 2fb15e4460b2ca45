package xmlship

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	defaultItemElement = "record"
	defaultIndent      = "  "
)

// Encoder serializes records into a textual document rooted at the given
// element name. Encoding must be deterministic for the same input ordering.
type Encoder interface {
	Encode(records []Record, root string) (string, error)
}

// XMLEncoder renders records as an indented XML document: one item element
// per record, one child element per field, an empty element for NULL values.
type XMLEncoder struct {
	item   string
	indent string
}

// XMLOption configures the XMLEncoder.
type XMLOption func(*XMLEncoder)

// WithItemElement sets the element name used for each record.
func WithItemElement(name string) XMLOption {
	return func(e *XMLEncoder) {
		e.item = name
	}
}

// WithIndent sets the indentation unit.
func WithIndent(indent string) XMLOption {
	return func(e *XMLEncoder) {
		e.indent = indent
	}
}

// NewXMLEncoder constructs an XMLEncoder with defaults and optional settings.
func NewXMLEncoder(opts ...XMLOption) *XMLEncoder {
	e := &XMLEncoder{
		item:   defaultItemElement,
		indent: defaultIndent,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

var _ Encoder = (*XMLEncoder)(nil)

// Encode implements Encoder. The root element takes the collection name;
// field values are escaped by the encoder, so arbitrary text is safe.
func (e *XMLEncoder) Encode(records []Record, root string) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}

	rootName, err := sanitizeElementName(root)
	if err != nil {
		return "", err
	}
	itemName, err := sanitizeElementName(e.item)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", e.indent)

	rootStart := xml.StartElement{Name: xml.Name{Local: rootName}}
	if err := enc.EncodeToken(rootStart); err != nil {
		return "", fmt.Errorf("xmlship: encode root: %w", err)
	}

	for _, record := range records {
		if err := e.encodeRecord(enc, itemName, record); err != nil {
			return "", err
		}
	}

	if err := enc.EncodeToken(rootStart.End()); err != nil {
		return "", fmt.Errorf("xmlship: encode root end: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return "", fmt.Errorf("xmlship: flush: %w", err)
	}
	buf.WriteByte('\n')

	return buf.String(), nil
}

func (e *XMLEncoder) encodeRecord(enc *xml.Encoder, itemName string, record Record) error {
	itemStart := xml.StartElement{Name: xml.Name{Local: itemName}}
	if err := enc.EncodeToken(itemStart); err != nil {
		return fmt.Errorf("xmlship: encode record: %w", err)
	}

	for _, field := range record.Fields {
		name, err := sanitizeElementName(field.Name)
		if err != nil {
			return err
		}
		fieldStart := xml.StartElement{Name: xml.Name{Local: name}}
		if err := enc.EncodeToken(fieldStart); err != nil {
			return fmt.Errorf("xmlship: encode field %s: %w", name, err)
		}
		if !field.Null && field.Value != "" {
			if err := enc.EncodeToken(xml.CharData(field.Value)); err != nil {
				return fmt.Errorf("xmlship: encode field %s: %w", name, err)
			}
		}
		if err := enc.EncodeToken(fieldStart.End()); err != nil {
			return fmt.Errorf("xmlship: encode field %s: %w", name, err)
		}
	}

	if err := enc.EncodeToken(itemStart.End()); err != nil {
		return fmt.Errorf("xmlship: encode record end: %w", err)
	}

	return nil
}
