package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	doc := Document{
		Title:    "Impact Certificate",
		Subtitle: "Embodied AI Agent for Warehouse Logistics",
		Sections: []Section{
			{Heading: "Impact Summary", Rows: []Row{{Label: "Hypercert", Value: "85%"}}},
			{Heading: "Impact Asset Owners", Rows: []Row{{Label: "0x1A2B...C3D4", Value: "Lead Researcher (60%)"}}},
		},
		Footer: "cairn",
	}

	r, err := NewGenerator().Generate(context.Background(), doc)
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))

	_, err = r.Seek(0, io.SeekStart)
	assert.NoError(t, err)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator().Generate(ctx, Document{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
