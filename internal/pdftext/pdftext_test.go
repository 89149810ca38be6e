package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentsFromStreamPositionsText(t *testing.T) {
	stream := []byte(`BT /F1 12 Tf 1 0 0 1 72 700 Tm (Hello) Tj 0 -20 Td (World) Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)

	assert.Equal(t, "Hello", frags[0].Text)
	assert.Equal(t, 72.0, frags[0].X)
	assert.Equal(t, 700.0, frags[0].Y)

	assert.Equal(t, "World", frags[1].Text)
	assert.Equal(t, 72.0, frags[1].X)
	assert.Equal(t, 680.0, frags[1].Y)
}

func TestFragmentsFromStreamLeadingAndNextLine(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 10 100 Tm 0 -15 TD (A) Tj T* (B) Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)

	assert.Equal(t, "A", frags[0].Text)
	assert.Equal(t, 85.0, frags[0].Y)
	assert.Equal(t, "B", frags[1].Text)
	assert.Equal(t, 70.0, frags[1].Y)
}

func TestFragmentsFromStreamTJArray(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 5 50 Tm [(Foo) -250 (Bar)] TJ ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)
	assert.Equal(t, "Foo", frags[0].Text)
	assert.Equal(t, "Bar", frags[1].Text)
	assert.Equal(t, 5.0, frags[0].X)
	assert.Equal(t, 50.0, frags[1].Y)
}

func TestFragmentsFromStreamQuoteOperator(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 0 100 Tm 0 -20 TD (first) Tj (second) ' ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)
	assert.Equal(t, 80.0, frags[0].Y)
	assert.Equal(t, "second", frags[1].Text)
	assert.Equal(t, 60.0, frags[1].Y)
}

func TestFragmentsFromStreamHexString(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 0 10 Tm <48656C6C6F> Tj <4> Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)
	assert.Equal(t, "Hello", frags[0].Text)
	assert.Equal(t, "@", frags[1].Text)
}

func TestFragmentsFromStreamEscapes(t *testing.T) {
	stream := []byte(`BT (a\(b\)c) Tj (\101\102) Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)
	assert.Equal(t, "a(b)c", frags[0].Text)
	assert.Equal(t, "AB", frags[1].Text)
}

func TestFragmentsFromStreamSkipsInvalidUTF8(t *testing.T) {
	stream := []byte("BT (\xff\xfe) Tj (ok) Tj ET")
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 1)
	assert.Equal(t, "ok", frags[0].Text)
}

func TestFragmentsFromStreamSkipsInlineImage(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 0 0 Tm ET BI /W 2 /H 2 ID xxxx EI BT 1 0 0 1 3 4 Tm (After) Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 1)
	assert.Equal(t, "After", frags[0].Text)
	assert.Equal(t, 3.0, frags[0].X)
	assert.Equal(t, 4.0, frags[0].Y)
}

func TestFragmentsFromStreamSkipsComments(t *testing.T) {
	stream := []byte("% generated content\nBT (Q) Tj ET")
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 1)
	assert.Equal(t, "Q", frags[0].Text)
}

func TestFragmentsFromStreamBTResetsState(t *testing.T) {
	stream := []byte(`BT 1 0 0 1 100 200 Tm (one) Tj ET BT (two) Tj ET`)
	frags := fragmentsFromStream(stream)
	require.Len(t, frags, 2)
	assert.Equal(t, 0.0, frags[1].X)
	assert.Equal(t, 0.0, frags[1].Y)
}
