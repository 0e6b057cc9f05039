package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneFormatter_Format(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		input    string
		expected string
	}{
		{name: "empty", region: "US", input: "  ", expected: ""},
		{name: "national number", region: "US", input: "(206) 386-4300", expected: "+1 206-386-4300"},
		{name: "already international", region: "us", input: "+1 212 736 3100", expected: "+1 212-736-3100"},
		{name: "unparseable kept", region: "US", input: " call us ", expected: "call us"},
		{name: "invalid kept", region: "US", input: "123", expected: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPhoneFormatter(tt.region).Format(tt.input))
		})
	}
}
