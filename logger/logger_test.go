package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{"empty", nil, nil},
		{"plain", []interface{}{"order_id", 7}, []interface{}{"order_id", 7}},
		{"secret", []interface{}{"store_password", "x", "course_id", 3}, []interface{}{"store_password", "[REDACTED]", "course_id", 3}},
		{"dangling key", []interface{}{"a", 1, "b"}, []interface{}{"a", 1, "b"}},
		{"token", []interface{}{"Token", "abc"}, []interface{}{"Token", "[REDACTED]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redact(tt.in))
		})
	}
}
