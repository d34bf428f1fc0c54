package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYearLabel(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{1, "1st year"},
		{2, "2nd year"},
		{3, "3rd year"},
		{4, "4th year"},
		{0, ""},
		{5, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yearLabel(tt.in), "year %d", tt.in)
	}
}
