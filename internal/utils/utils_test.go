package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello-World", "hello-world"},
		{"Café-Notes", "cafe-notes"},
		{"  Über Straße ", "uber straße"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldString(tt.in), tt.in)
	}
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "My First Post", TitleFromSlug("my-first_post"))
	assert.Equal(t, "", TitleFromSlug(""))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Unix())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
