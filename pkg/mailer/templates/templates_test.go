package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMatchFound(t *testing.T) {
	subject, text, html, err := Render("match_found", map[string]any{
		"FullName":   "Laura Gómez",
		"ItemType":   "Celular",
		"Location":   "Bloque 19 - Fac. de Ingeniería",
		"MatchID":    "match-1",
		"LostItemID": "lost-1",
		"MatchDate":  "2026-08-29T10:00:00Z",
	})
	require.NoError(t, err)

	assert.Contains(t, subject, "coincidencia")
	assert.Contains(t, text, "Laura Gómez")
	assert.Contains(t, text, "Celular")
	assert.Contains(t, html, "Bloque 19")
	assert.Contains(t, html, "match-1")
}

func TestRenderItemDelivered(t *testing.T) {
	subject, text, html, err := Render("item_delivered", map[string]any{
		"FullName": "Laura Gómez",
		"ItemType": "Celular",
	})
	require.NoError(t, err)

	assert.Contains(t, subject, "entregado")
	assert.Contains(t, text, "Celular")
	assert.Contains(t, html, "Laura Gómez")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("password_reset", nil)
	assert.Error(t, err)
}
