package framing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pushAll feeds text into a fresh framer in the given chunk sizes and
// returns every emitted record, including the final flush.
func pushAll(t *testing.T, text string, sizes []int) []string {
	t.Helper()

	framer := &LineFramer{}

	var records []string

	rest := text
	for _, size := range sizes {
		if size > len(rest) {
			size = len(rest)
		}

		records = append(records, framer.Push([]byte(rest[:size]))...)
		rest = rest[size:]
	}

	if len(rest) > 0 {
		records = append(records, framer.Push([]byte(rest))...)
	}

	if rec, ok := framer.Flush(); ok {
		records = append(records, rec)
	}

	return records
}

// TestChunkInvariance verifies that the emitted record sequence does not
// depend on how the byte stream is split into chunks.
func TestChunkInvariance(t *testing.T) {
	text := "first\nsecond\nthird with spaces\n\nfifth\n"
	want := pushAll(t, text, []int{len(text)})

	require.Equal(t, []string{"first", "second", "third with spaces", "", "fifth"}, want)

	splits := [][]int{
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{2, 3, 5, 7, 11, 13},
		{6},    // exactly one record per chunk boundary
		{5},    // terminator lands at the start of the next chunk
		{1000}, // whole text in one oversized chunk
	}

	for _, sizes := range splits {
		require.Equal(t, want, pushAll(t, text, sizes))
	}
}

func TestPushBuffersIncompleteFragment(t *testing.T) {
	framer := &LineFramer{}

	require.Empty(t, framer.Push([]byte("no terminator yet")))
	require.True(t, framer.Pending())

	records := framer.Push([]byte(" and now\nrest"))
	require.Equal(t, []string{"no terminator yet and now"}, records)
	require.True(t, framer.Pending())
}

func TestTerminatorSplitAcrossChunks(t *testing.T) {
	framer := &LineFramer{}

	require.Empty(t, framer.Push([]byte("line\r")))

	records := framer.Push([]byte("\nnext\n"))
	require.Equal(t, []string{"line", "next"}, records)
	require.False(t, framer.Pending())
}

func TestCRLFRecordsMatchLFRecords(t *testing.T) {
	crlf := pushAll(t, "a\r\nb\r\nc\r\n", []int{4, 4, 1})
	lf := pushAll(t, "a\nb\nc\n", []int{2, 2, 2})

	require.Equal(t, lf, crlf)
}

func TestFlushEmitsTrailingFragment(t *testing.T) {
	framer := &LineFramer{}

	require.Equal(t, []string{"done"}, framer.Push([]byte("done\ntail")))

	rec, ok := framer.Flush()
	require.True(t, ok)
	require.Equal(t, "tail", rec)

	// Flush resets the framer.
	_, ok = framer.Flush()
	require.False(t, ok)
}

func TestEmptyChunkEmitsNothing(t *testing.T) {
	framer := &LineFramer{}

	require.Empty(t, framer.Push(nil))
	require.Empty(t, framer.Push([]byte{}))
	require.False(t, framer.Pending())
}

func TestMultipleRecordsInOneChunk(t *testing.T) {
	framer := &LineFramer{}

	records := framer.Push([]byte("one\ntwo\nthree\n"))
	require.Equal(t, []string{"one", "two", "three"}, records)
	require.False(t, framer.Pending())
}
