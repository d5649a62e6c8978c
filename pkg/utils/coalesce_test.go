// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"returns first non-empty string", []string{"", "", "hello", "world"}, "hello"},
		{"returns empty string when all empty", []string{"", ""}, ""},
		{"returns empty string when no arguments", nil, ""},
		{"spaces are not empty", []string{"", "  ", "hello"}, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coalesce(tt.values...))
		})
	}

	assert.Equal(t, 5, Coalesce(0, 5, 7))
}

func TestCoalesceTrimmed(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"blank name falls back", []string{"   ", "Another user"}, "Another user"},
		{"name is trimmed", []string{"  Dana Reyes ", "Another user"}, "Dana Reyes"},
		{"all blank", []string{" ", "\t"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoalesceTrimmed(tt.values...))
		})
	}
}
