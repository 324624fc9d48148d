package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nestedJSON(depth int) []byte {
	var buf bytes.Buffer
	for i := 0; i < depth; i++ {
		buf.WriteString(`{"a":`)
	}
	buf.WriteString(`1`)
	for i := 0; i < depth; i++ {
		buf.WriteString(`}`)
	}
	return buf.Bytes()
}

func TestCheckDepth_WithinBoundPasses(t *testing.T) {
	assert.NoError(t, checkDepth(nestedJSON(10)))
}

func TestCheckDepth_ExceedsBoundFails(t *testing.T) {
	// S6: depth 12 fails with circular_reference.
	err := checkDepth(nestedJSON(12))
	assert.Error(t, err)
}

func TestCheckDepth_FlatJSONPasses(t *testing.T) {
	assert.NoError(t, checkDepth([]byte(`{"a":1,"b":[1,2,3]}`)))
}
