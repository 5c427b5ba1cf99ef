package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateURLKey(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"Go", "go"},
		{"Functional Programming", "functional_programming"},
		{"  padded  ", "padded"},
		{"C++ (advanced)", "c_advanced"},
		{"What's new in Go 1.22?", "what_s_new_in_go_1_22"},
		{"___", ""},
		{"", ""},
		{"ALL CAPS", "all_caps"},
		{"multiple---separators...here", "multiple_separators_here"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, GenerateURLKey(c.name), "input %q", c.name)
	}
}

func TestGenerateURLKey_Deterministic(t *testing.T) {
	first := GenerateURLKey("Distributed Systems 101")
	second := GenerateURLKey("Distributed Systems 101")
	assert.Equal(t, first, second)
}
