package main

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

func testTemplates(t *testing.T) map[string]*template.Template {
	t.Helper()

	tmpl, err := template.New("notification").Parse(`<p>{{.fullName}}</p><p>{{.text}}</p>`)
	require.NoError(t, err)
	return map[string]*template.Template{"event_notification": tmpl}
}

func TestDecodeAndBuildMail(t *testing.T) {
	body := []byte(`{"type":"event_notification","recipientID":"E1","to":"wangw@example.com","data":{"fullName":"王伟","text":"周五例会"}}`)

	message, err := decodeMessage(body)
	require.NoError(t, err)
	assert.Equal(t, "E1", message.RecipientID)

	m, err := buildMail("noreply@example.com", message, testTemplates(t))
	require.NoError(t, err)

	recipients, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"wangw@example.com"}, recipients)
	assert.Equal(t, []string{"ECNC 排班系统 - 通知"}, m.GetGenHeader(mail.HeaderSubject))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestBuildMail_NoRecipient(t *testing.T) {
	message := &domain.NotificationMessage{Type: "event_notification", RecipientID: "E2"}

	_, err := buildMail("noreply@example.com", message, testTemplates(t))
	assert.ErrorIs(t, err, errNoRecipient)
}

func TestBuildMail_UnknownType(t *testing.T) {
	message := &domain.NotificationMessage{Type: "reset_password", To: "a@example.com"}

	_, err := buildMail("noreply@example.com", message, testTemplates(t))
	assert.ErrorContains(t, err, "不支持的邮件类型")
}

func TestDecodeMessage_Malformed(t *testing.T) {
	_, err := decodeMessage([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notification_email.html"), []byte(`{{.text}}`), 0o644))

	templates, err := loadTemplates(dir)
	require.NoError(t, err)
	assert.Contains(t, templates, "event_notification")

	_, err = loadTemplates(t.TempDir())
	assert.Error(t, err)
}

func TestShippedTemplateRenders(t *testing.T) {
	templates, err := loadTemplates("../../templates")
	require.NoError(t, err)

	var buf bytes.Buffer
	data := map[string]any{"fullName": "王伟", "text": "周五例会"}
	require.NoError(t, templates["event_notification"].Execute(&buf, data))
	assert.Contains(t, buf.String(), "周五例会")
}
