package mail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelingorcas/orcalog/config"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	html := `<h2>Your Access Code</h2><p>Code: <strong>{{.Code}}</strong></p><p>Expires in {{.ExpiresIn}}.</p>`
	text := `Your access code is {{.Code}}. It expires in {{.ExpiresIn}}.`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "login_code.html"), []byte(html), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login_code.txt"), []byte(text), 0o644))

	return dir
}

func TestNewService(t *testing.T) {
	t.Run("requires from address", func(t *testing.T) {
		svc, err := NewService(&config.MailConfig{Host: "smtp.example.com"}, nil)
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "FROM_ADDRESS")
	})

	t.Run("loads templates from configured directory", func(t *testing.T) {
		dir := writeTemplates(t)
		svc, err := NewService(&config.MailConfig{
			Host:         "smtp.example.com",
			Port:         587,
			FromAddress:  "noreply@example.com",
			FromName:     "Traveling Orcas",
			TemplatesDir: dir,
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc.htmlTemplates.Lookup("login_code.html"))
		assert.NotNil(t, svc.textTemplates.Lookup("login_code.txt"))
	})

	t.Run("tolerates missing template directory", func(t *testing.T) {
		svc, err := NewService(&config.MailConfig{
			Host:         "smtp.example.com",
			Port:         587,
			FromAddress:  "noreply@example.com",
			TemplatesDir: filepath.Join(t.TempDir(), "empty"),
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestRenderTemplate(t *testing.T) {
	dir := writeTemplates(t)
	svc, err := NewService(&config.MailConfig{
		Host:         "smtp.example.com",
		Port:         587,
		FromAddress:  "noreply@example.com",
		TemplatesDir: dir,
	}, nil)
	require.NoError(t, err)

	t.Run("renders html and text bodies", func(t *testing.T) {
		msg := svc.NewMessage()
		err := svc.renderTemplate("login_code", map[string]any{
			"Code":      "123456",
			"ExpiresIn": "15 minutes",
		}, msg)
		require.NoError(t, err)
	})

	t.Run("fails for unknown template", func(t *testing.T) {
		msg := svc.NewMessage()
		err := svc.renderTemplate("does_not_exist", nil, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestNewMessage(t *testing.T) {
	svc, err := NewService(&config.MailConfig{
		Host:        "smtp.example.com",
		Port:        587,
		FromAddress: "noreply@example.com",
		FromName:    "Traveling Orcas",
	}, nil)
	require.NoError(t, err)

	// A bad FROM address panics, so constructing a message is the assertion.
	msg := svc.NewMessage()
	require.NotNil(t, msg)
}
