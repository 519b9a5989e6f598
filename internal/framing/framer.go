// Package framing turns arbitrary byte chunks arriving on one stream into
// complete newline-delimited records.
//
// One LineFramer instance is owned per stream (stdout and stderr get
// independent framers). The framer holds at most one incomplete trailing
// fragment between calls; a complete record is emitted as soon as its
// terminator has been observed, and never before.
package framing

import (
	"bytes"
	"strings"
)

// LineFramer is a stateful splitter for one byte stream.
// The zero value is ready to use. Not safe for concurrent use; each stream's
// framer is advanced only from that stream's drain goroutine.
type LineFramer struct {
	pending []byte
}

// Push feeds the next chunk into the framer and returns every record
// completed by it, in arrival order. A chunk with no terminator returns nil
// and extends the buffered fragment; a terminator split across two chunks is
// joined correctly because the fragment carries over.
func (f *LineFramer) Push(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	if !bytes.ContainsRune(chunk, '\n') {
		f.pending = append(f.pending, chunk...)

		return nil
	}

	data := append(f.pending, chunk...)
	parts := bytes.Split(data, []byte{'\n'})

	// Everything before the final terminator is complete; the remainder
	// (possibly empty) becomes the new pending fragment.
	records := make([]string, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		records = append(records, trimCR(string(part)))
	}

	f.pending = bytes.Clone(parts[len(parts)-1])

	return records
}

// Flush returns the buffered trailing fragment, if any, and resets the
// framer. It is called once at end of stream so that final output written
// without a trailing terminator is not lost.
func (f *LineFramer) Flush() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}

	rec := trimCR(string(f.pending))
	f.pending = nil

	return rec, true
}

// Pending reports whether an incomplete fragment is buffered.
func (f *LineFramer) Pending() bool {
	return len(f.pending) > 0
}

// trimCR drops a trailing carriage return so CRLF-terminated records frame
// identically to LF-terminated ones.
func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
