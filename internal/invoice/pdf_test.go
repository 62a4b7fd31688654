package invoice

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

func TestPDFRenderer_Render(t *testing.T) {
	r, err := NewPDFRenderer("")
	require.NoError(t, err)

	entry := testEntry(priced("Chair", 500, 2), priced("Table", 1500, 1))
	doc := NewBuilder(DefaultOptions()).Build(entry)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestPDFRenderer_RenderEmptyEntry(t *testing.T) {
	r, err := NewPDFRenderer("")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewBuilder(DefaultOptions()).Build(testEntry())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderer_ManyRowsAndLongNames(t *testing.T) {
	r, err := NewPDFRenderer("")
	require.NoError(t, err)

	items := make([]model.Item, 80)
	for i := range items {
		items[i] = priced(strings.Repeat("Reinforced concrete beam ", 4)+"é", int64(i*10), i)
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewBuilder(DefaultOptions()).Build(testEntry(items...))))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestNewPDFRenderer_MissingFonts(t *testing.T) {
	_, err := NewPDFRenderer(t.TempDir())
	assert.Error(t, err)
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#d3eafd", 0xd3, 0xea, 0xfd},
		{"#aaa", 0xaa, 0xaa, 0xaa},
		{"003366", 0x00, 0x33, 0x66},
		{"", 0, 0, 0},
		{"#zzzzzz", 0, 0, 0},
	}
	for _, tt := range tests {
		r, g, b := hexColor(tt.in)
		assert.Equal(t, []int{tt.r, tt.g, tt.b}, []int{r, g, b}, tt.in)
	}
}
