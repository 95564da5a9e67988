package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

func TestConsoleRenderer_Run(t *testing.T) {
	_, coll := seededBooks(t)
	var buf bytes.Buffer

	_, err := NewRunner(WithRenderer(NewConsoleRenderer(&buf, false))).Run(context.Background(), coll)
	require.NoError(t, err)

	out := buf.String()
	for _, op := range Catalog() {
		assert.Contains(t, out, op.Title+":")
	}
	assert.Contains(t, out, "To Kill a Mockingbird")
	assert.Contains(t, out, "Matched 1, modified 1")
	assert.Contains(t, out, "Deleted 1")
	assert.Contains(t, out, "Index title_1 ready")
	assert.Contains(t, out, `"winningPlan"`)
	assert.Contains(t, out, "Summary:")
	assert.NotContains(t, out, "\x1b[", "colour is disabled")
}

func TestRenderTable(t *testing.T) {
	assert.Equal(t, "(no documents)", RenderTable(nil))

	out := RenderTable([]domain.Document{
		{"title": "1984", "price": 10.99, "_id": "a"},
		{"title": "Dune", "extra": true},
	})
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "10.99")
	assert.Contains(t, strings.ToUpper(out), "TOTAL: 2")
}

func TestColumns(t *testing.T) {
	cols := Columns([]domain.Document{
		{"zeta": 1, "price": 1.0, "title": "x"},
		{"_id": "a", "alpha": 2},
	})
	assert.Equal(t, []string{"_id", "title", "price", "alpha", "zeta"}, cols)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{12.99, "12.99"},
		{10.740000000000002, "10.74"},
		{1950.0, "1950"},
		{float32(2.5), "2.5"},
		{int64(3), "3"},
		{true, "true"},
		{"Fiction", "Fiction"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
