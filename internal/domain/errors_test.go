package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStockConflict(t *testing.T) {
	msg := "Insufficient stock: Ba chi heo: Available 2, Requested 5; Trung ga: Available 0, Requested 1"

	sc, ok := ParseStockConflict(msg)
	require.True(t, ok)
	require.Len(t, sc.Items, 2)

	assert.Equal(t, StockShortage{Name: "Ba chi heo", Available: 2, Requested: 5}, sc.Items[0])
	assert.Equal(t, StockShortage{Name: "Trung ga", Available: 0, Requested: 1}, sc.Items[1])
	assert.Equal(t, []string{"Ba chi heo", "Trung ga"}, sc.AffectedNames())
}

func TestParseStockConflictSingleItem(t *testing.T) {
	sc, ok := ParseStockConflict("Insufficient stock: Sua tuoi: Available 1, Requested 3")
	require.True(t, ok)
	require.Len(t, sc.Items, 1)
	assert.Equal(t, "Sua tuoi", sc.Items[0].Name)
}

func TestParseStockConflictRejectsOtherMessages(t *testing.T) {
	for _, msg := range []string{
		"",
		"internal server error",
		"Insufficient stock: ",
		"Insufficient stock: garbled with no counts",
		"insufficient stock: Ba chi heo: Available 2, Requested 5", // prefix is case-sensitive
	} {
		_, ok := ParseStockConflict(msg)
		assert.False(t, ok, "msg %q must not parse", msg)
	}
}

func TestStockConflictErrorMessage(t *testing.T) {
	sc := &StockConflictError{Items: []StockShortage{{Name: "Ca rot"}, {Name: "Hanh la"}}}
	assert.Equal(t, "insufficient stock: Ca rot, Hanh la", sc.Error())
}
