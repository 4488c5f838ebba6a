package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// 没有邮箱的员工只能在站内查看通知，这类消息直接确认
var errNoRecipient = errors.New("收件人没有邮箱")

type mailKind struct {
	template string
	subject  string
}

var mailKinds = map[string]mailKind{
	"event_notification": {template: "notification_email.html", subject: "ECNC 排班系统 - 通知"},
}

// loadTemplates 启动时一次性解析所有模板，模板缺失时 worker 不应启动
func loadTemplates(dir string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(mailKinds))
	for typ, kind := range mailKinds {
		tmpl, err := template.ParseFiles(filepath.Join(dir, kind.template))
		if err != nil {
			return nil, err
		}
		templates[typ] = tmpl
	}
	return templates, nil
}

func decodeMessage(body []byte) (*domain.NotificationMessage, error) {
	message := &domain.NotificationMessage{}
	if err := json.Unmarshal(body, message); err != nil {
		return nil, err
	}
	return message, nil
}

func buildMail(from string, message *domain.NotificationMessage, templates map[string]*template.Template) (*mail.Msg, error) {
	if message.To == "" {
		return nil, errNoRecipient
	}

	kind, ok := mailKinds[message.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型: %s", message.Type)
	}
	tmpl, ok := templates[message.Type]
	if !ok {
		return nil, fmt.Errorf("缺少邮件模板: %s", kind.template)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(message.To); err != nil {
		return nil, err
	}
	if err := m.SetBodyHTMLTemplate(tmpl, message.Data); err != nil {
		return nil, err
	}
	m.Subject(kind.subject)

	return m, nil
}
