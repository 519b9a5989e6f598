package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsToText(t *testing.T) {
	c, err := Resolve("", nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, ModeText, c.Mode)
	require.True(t, c.Framed())

	out, err := c.Format("hello")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), out)

	value, err := c.Parse([]byte("world"))
	require.NoError(t, err)
	require.Equal(t, "world", value)
}

func TestResolveRejectsUnknownMode(t *testing.T) {
	_, err := Resolve("yaml", nil, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
}

func TestTextFormatterConvertsNonStrings(t *testing.T) {
	out, err := TextFormatter(42)
	require.NoError(t, err)
	require.Equal(t, []byte("42"), out)

	out, err = TextFormatter([]byte{0x68, 0x69})
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), out)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c, err := Resolve(ModeJSON, nil, nil, nil)
	require.NoError(t, err)

	out, err := c.Format(map[string]any{"a": 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(out))

	value, err := c.Parse(out)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": float64(1)}, value)
}

func TestJSONParserReportsInvalidRecords(t *testing.T) {
	c, err := Resolve(ModeJSON, nil, nil, nil)
	require.NoError(t, err)

	_, err = c.Parse([]byte("{not json"))
	require.Error(t, err)
}

func TestBinaryModeHasNoParserAndNoFraming(t *testing.T) {
	c, err := Resolve(ModeBinary, nil, nil, nil)
	require.NoError(t, err)
	require.False(t, c.Framed())
	require.Nil(t, c.Parse)

	out, err := c.Format([]byte{0x00, 0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x01}, out)

	_, err = c.Format(map[string]any{})
	require.Error(t, err)
}

func TestStderrParserDefaultsToTextInJSONMode(t *testing.T) {
	c, err := Resolve(ModeJSON, nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, c.ParseStderr)

	value, err := c.ParseStderr([]byte(`{"looks": "like json"}`))
	require.NoError(t, err)
	require.Equal(t, `{"looks": "like json"}`, value)
}

func TestResolveAppliesCustomOverrides(t *testing.T) {
	upper := func(v any) ([]byte, error) {
		return []byte(strings.ToUpper(v.(string))), nil
	}
	length := func(line []byte) (any, error) {
		return len(line), nil
	}

	c, err := Resolve(ModeText, upper, length, length)
	require.NoError(t, err)

	out, err := c.Format("loud")
	require.NoError(t, err)
	require.Equal(t, []byte("LOUD"), out)

	value, err := c.Parse([]byte("12345"))
	require.NoError(t, err)
	require.Equal(t, 5, value)
}

func TestResolveEncoding(t *testing.T) {
	enc, err := ResolveEncoding("")
	require.NoError(t, err)
	require.Nil(t, enc)

	enc, err = ResolveEncoding("utf-8")
	require.NoError(t, err)
	require.Nil(t, enc)

	enc, err = ResolveEncoding("ISO-8859-1")
	require.NoError(t, err)
	require.NotNil(t, enc)

	_, err = ResolveEncoding("no-such-encoding")
	require.Error(t, err)
}
