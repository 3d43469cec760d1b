package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNextPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/products", "/products"},
		{"/products?page=2", "/products?page=2"},
		{"https://evil.example.com/", "/"},
		{"http://evil.example.com", "/"},
		{"//evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
		{"relative/path", "/"},
		{"%zz", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNextPath(tt.in), "next=%q", tt.in)
	}
}
