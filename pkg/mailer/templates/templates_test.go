package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	subject, text, html, err := Render("welcome", map[string]any{
		"Name":        "Alice <admin>",
		"CompanyName": "YourPlaces",
		"AppURL":      "http://localhost:3000",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to YourPlaces", subject)
	assert.Contains(t, text, "Hi Alice <admin>,")
	assert.Contains(t, html, "Alice &lt;admin&gt;")
	assert.Contains(t, html, `href="http://localhost:3000"`)
}

func TestRenderMissingKeys(t *testing.T) {
	subject, text, _, err := Render("WELCOME", map[string]any{"Name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to ", subject)
	assert.NotContains(t, text, "<no value>")
}

func TestRenderUnknown(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}
