package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryUint64(t *testing.T) {
	tests := []struct {
		name         string
		field        string
		defaultValue uint64
		want         uint64
	}{
		{name: "missing falls back", field: "", defaultValue: 1, want: 1},
		{name: "zero falls back", field: "0", defaultValue: 1, want: 1},
		{name: "malformed falls back", field: "abc", defaultValue: 10, want: 10},
		{name: "negative falls back", field: "-3", defaultValue: 10, want: 10},
		{name: "valid value wins", field: "7", defaultValue: 1, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQueryUint64(tt.field, tt.defaultValue))
		})
	}
}
