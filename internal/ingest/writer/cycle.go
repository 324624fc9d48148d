package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxNestingDepth is the bound named in spec §4.5/§9 ("bound at 10").
const maxNestingDepth = 10

// checkDepth walks raw's JSON tokens iteratively (spec §9 design note:
// "implement as an iterative walk with an explicit visited-set by object
// identity and a depth counter") and fails if any object/array nests more
// than maxNestingDepth levels deep. A decoded JSON document is always a
// tree — json.Decoder cannot produce a true reference cycle — so depth is
// the only structural bound this check enforces. The writer keeps no
// visited set anywhere (agenda items are addressed by index, not pointer,
// so no identity collision is possible there either).
func checkDepth(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	depth := 0
	maxSeen := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("writer: circular_reference: invalid JSON while scanning depth: %w", err)
		}
		switch tok.(type) {
		case json.Delim:
			d := tok.(json.Delim)
			switch d {
			case '{', '[':
				depth++
				if depth > maxSeen {
					maxSeen = depth
				}
			case '}', ']':
				depth--
			}
		}
	}
	if maxSeen > maxNestingDepth {
		return fmt.Errorf("writer: circular_reference: raw_json nests %d levels deep, exceeds bound of %d", maxSeen, maxNestingDepth)
	}
	return nil
}
