package codec

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ResolveEncoding maps an IANA encoding name to the transform applied to
// the stdio pipes. UTF-8 (the default) returns nil, meaning bytes pass
// through untransformed.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "", "utf-8", "utf8", "UTF-8":
		return nil, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}

	if enc == nil {
		return nil, fmt.Errorf("encoding %q has no available implementation", name)
	}

	return enc, nil
}
