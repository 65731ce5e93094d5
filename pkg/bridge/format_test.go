package bridge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	for i, test := range []struct {
		name   string
		format Format
		ok     bool
	}{
		{"raw", Raw, true},
		{"idl", IDL, true},
		{"pp", Pretty, true},
		{"", 0, false},
		{"RAW", 0, false},
		{"json", 0, false},
	} {
		t.Run(fmt.Sprintf("%d", i+1), func(t *testing.T) {
			f, ok := ParseFormat(test.name)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.format, f)
			if ok {
				assert.Equal(t, test.name, f.String())
			}
		})
	}
}
