// Package codec provides the message encoding and decoding functions used
// to exchange records with a python process over stdio.
//
// A session's codec is resolved exactly once, at construction time, from the
// configured mode and any caller-supplied overrides. After resolution the
// codec is a set of concrete function values; no name-based lookup happens
// on the send or receive path.
package codec

import (
	"encoding/json"
	"fmt"
)

// Mode selects the built-in wire format for a session.
type Mode string

const (
	// ModeText exchanges plain text records. Outbound values are converted
	// via their string representation; inbound records are passed through.
	ModeText Mode = "text"

	// ModeJSON serializes each outbound message to a single JSON text record
	// and parses each inbound record as JSON.
	ModeJSON Mode = "json"

	// ModeBinary passes raw bytes through in both directions. No line
	// framing is applied and no parser runs on inbound data.
	ModeBinary Mode = "binary"
)

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeText, ModeJSON, ModeBinary:
		return true
	}

	return false
}

// Formatter encodes an outbound message into the bytes written to the
// process input stream. The line terminator is appended by the caller in
// framed modes, never by the formatter itself.
type Formatter func(v any) ([]byte, error)

// Parser decodes one complete inbound record into a message value.
type Parser func(line []byte) (any, error)

// Codec is the resolved encode/decode function set for one session.
//
// Parse is nil in binary mode: raw chunks bypass framing and decoding
// entirely and are delivered as-is.
type Codec struct {
	Mode        Mode
	Format      Formatter
	Parse       Parser
	ParseStderr Parser
}

// Framed reports whether records are newline-delimited in this mode.
func (c Codec) Framed() bool {
	return c.Mode != ModeBinary
}

// Resolve builds the concrete codec for mode, applying any non-nil
// caller-supplied overrides. Overrides take precedence over the mode's
// built-in functions.
func Resolve(mode Mode, format Formatter, parse, parseStderr Parser) (Codec, error) {
	if mode == "" {
		mode = ModeText
	}

	if !mode.Valid() {
		return Codec{}, fmt.Errorf("unknown mode %q", mode)
	}

	c := Codec{Mode: mode}

	switch mode {
	case ModeText:
		c.Format = TextFormatter
		c.Parse = TextParser
	case ModeJSON:
		c.Format = JSONFormatter
		c.Parse = JSONParser
	case ModeBinary:
		c.Format = BinaryFormatter
		// No parser: binary data is delivered raw.
	}

	// Stderr is diagnostic text in every mode; JSON mode does not change that.
	if mode != ModeBinary {
		c.ParseStderr = TextParser
	}

	if format != nil {
		c.Format = format
	}

	if parse != nil {
		c.Parse = parse
	}

	if parseStderr != nil {
		c.ParseStderr = parseStderr
	}

	return c, nil
}

// TextFormatter converts v to its text representation.
// Strings and byte slices pass through unchanged.
func TextFormatter(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	default:
		return fmt.Appendf(nil, "%v", v), nil
	}
}

// TextParser returns the record as a string.
func TextParser(line []byte) (any, error) {
	return string(line), nil
}

// JSONFormatter serializes v as one JSON text record.
func JSONFormatter(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return data, nil
}

// JSONParser parses one JSON text record.
func JSONParser(line []byte) (any, error) {
	var v any
	if err := json.Unmarshal(line, &v); err != nil {
		return nil, err
	}

	return v, nil
}

// BinaryFormatter passes raw bytes through. Strings are converted to their
// byte content; any other value is rejected.
func BinaryFormatter(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("binary mode requires []byte or string, got %T", v)
	}
}
