package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ExtraDataAfterJSONError is returned when a payload holds more than one JSON value.
type ExtraDataAfterJSONError struct{}

func (e *ExtraDataAfterJSONError) Error() string {
	return "extra data after JSON object"
}

// ToJSON marshals v without HTML escaping.
func ToJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := ToJSONStream(&buf, v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ToJSONStream encodes v to w without HTML escaping.
func ToJSONStream(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}

// FromJSON decodes a single JSON value strictly. An empty input yields the zero value.
//
//nolint:ireturn // Generic functions must return type parameter T
func FromJSON[T any](data []byte) (T, error) {
	var zero T
	if len(data) == 0 {
		return zero, nil
	}

	return FromJSONStream[T](bytes.NewReader(data))
}

// FromJSONStream decodes a single JSON value from r, rejecting unknown
// fields and trailing data.
//
//nolint:ireturn // Generic functions must return type parameter T
func FromJSONStream[T any](r io.Reader) (T, error) {
	var v T

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		return v, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return v, &ExtraDataAfterJSONError{}
	}

	return v, nil
}
