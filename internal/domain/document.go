package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeDrafts parses a document of loosely typed quote objects.
// Malformed JSON yields a *ParseError; anything other than an array of
// objects yields a *FormatError.
func DecodeDrafts(data []byte) ([]Draft, error) {
	items, err := decodeArray(data)
	if err != nil {
		return nil, err
	}

	drafts := make([]Draft, len(items))
	for i, raw := range items {
		if err := json.Unmarshal(raw, &drafts[i]); err != nil {
			return nil, elementError(i, err)
		}
	}

	return drafts, nil
}

// DecodeCollection parses a persisted collection. Blank input is an
// empty collection. Each element is read as a Draft and coerced field by
// field with Draft.Record, so hand-edited files with numeric ids, date
// strings or comma-separated tags load as they are meant.
func DecodeCollection(data []byte) ([]QuoteRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []QuoteRecord{}, nil
	}

	drafts, err := DecodeDrafts(data)
	if err != nil {
		return nil, err
	}

	records := make([]QuoteRecord, len(drafts))
	for i, d := range drafts {
		records[i] = d.Record()
	}

	return records, nil
}

// elementIndent is the indentation of array elements in a document.
const elementIndent = "  "

// EncodeCollection renders records as an indented JSON array, the same
// layout used for storage and export.
func EncodeCollection(records []QuoteRecord) ([]byte, error) {
	elements := make([]json.RawMessage, len(records))
	for i, rec := range records {
		raw, err := encodeElement(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding collection: %w", err)
		}

		elements[i] = raw
	}

	return joinElements(elements), nil
}

func encodeElement(rec QuoteRecord) (json.RawMessage, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(elementIndent, elementIndent)

	if err := enc.Encode(rec.Clone()); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// joinElements writes elements as a JSON array, one element per line.
// Elements are copied as they are.
func joinElements(elements []json.RawMessage) []byte {
	if len(elements) == 0 {
		return []byte("[]")
	}

	var buf bytes.Buffer

	buf.WriteString("[\n")
	for i, el := range elements {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString(elementIndent)
		buf.Write(el)
	}
	buf.WriteString("\n]")

	return buf.Bytes()
}

func decodeArray(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ParseError{Offset: syntaxErr.Offset, Cause: err}
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, NewFormatError("expected array")
		}

		return nil, &ParseError{Cause: err}
	}

	if items == nil {
		return nil, NewFormatError("expected array")
	}

	return items, nil
}

func elementError(index int, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "" {
		return NewFormatError(fmt.Sprintf("element %d: expected object", index))
	}

	return NewFormatError(fmt.Sprintf("element %d: %v", index, err))
}
