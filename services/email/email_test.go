package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/trezcool/schoolrecords/core"
	testutil "github.com/trezcool/schoolrecords/tests"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	logger := new(testutil.NopLogger)
	core.ParseEmailTemplates(conf, logger)
	svc := NewConsoleServiceMock(conf, logger)

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Ann", Address: "ann@school.test"}},
			Subject:      "Password Reset",
			TemplateName: "password_reset",
			TemplateData: map[string]string{"Name": "Ann", "Username": "ann", "UID": "MQ", "Token": "tok"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "bob@school.test"}}, Subject: "empty"},
	)

	if len(logger.Errors) > 0 {
		t.Fatalf("SendMessages() logged errors: %v", logger.Errors)
	}
	sent := svc.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("len(SentMessages()) = %d; want 1", len(sent))
	}
	if !strings.Contains(sent[0].TextContent, "/password-reset/MQ/tok") {
		t.Errorf("TextContent = %q; want a reset link", sent[0].TextContent)
	}

	svc.Reset()
	if n := len(svc.SentMessages()); n != 0 {
		t.Errorf("len(SentMessages()) after Reset() = %d; want 0", n)
	}
}

func TestConsoleService_compose(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleService(conf, new(testutil.NopLogger)).(*consoleService)
	out := new(bytes.Buffer)
	svc.out = out

	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: "Ann", Address: "ann@school.test"}},
		Subject: "Report",
		BodyStr: "see attached",
	}
	if err := msg.Attach(strings.NewReader("id,value\n1,50\n"), "grades.csv", "text/csv"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	sent, err := svc.sendMessage(msg)
	if err != nil || !sent {
		t.Fatalf("sendMessage() = %v, %v; want true, nil", sent, err)
	}
	for _, want := range []string{
		"Subject: [Masomo] Report",
		`To: "Ann" <ann@school.test>`,
		"Content-Type: multipart/mixed",
		"see attached",
		"filename=grades.csv",
		"aWQsdmFsdWUKMSw1MAo=",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSendgridService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSendgridService(conf, new(testutil.NopLogger)).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Ann", Address: "ann@school.test"}},
		Cc:          []mail.Address{{Address: "cc@school.test"}},
		Subject:     "Hi",
		TextContent: "text",
	})

	if m.From.Address != "noreply@localhost" || m.From.Name != "Masomo" {
		t.Errorf("From = %+v; want Masomo <noreply@localhost>", m.From)
	}
	if len(m.Personalizations) != 1 {
		t.Fatalf("len(Personalizations) = %d; want 1", len(m.Personalizations))
	}
	p := m.Personalizations[0]
	if p.Subject != "[Masomo] Hi" || len(p.To) != 1 || len(p.CC) != 1 {
		t.Errorf("personalization = %+v", p)
	}
	if len(m.Content) != 1 || m.Content[0].Type != "text/plain" {
		t.Errorf("Content = %+v; want text/plain only", m.Content)
	}
}
