package services

import (
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/dimitrije/taskhub-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

type mailRecorder struct {
	mu   sync.Mutex
	sent []capturedMail
	err  error
}

func (r *mailRecorder) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
	return r.err
}

var testSMTP = config.SMTPConfig{
	Host:     "smtp.example.com",
	Port:     "587",
	Username: "mailer",
	Password: "secret",
	From:     "noreply@example.com",
}

func TestEmailService_IsConfigured(t *testing.T) {
	assert.True(t, NewEmailService(testSMTP, zap.NewNop()).IsConfigured())
	assert.False(t, NewEmailService(config.SMTPConfig{Host: "smtp.example.com"}, zap.NewNop()).IsConfigured())
}

func TestEmailService_SendCoupon(t *testing.T) {
	rec := &mailRecorder{}
	svc := NewEmailService(testSMTP, zap.NewNop())
	svc.send = rec.send

	svc.SendCoupon("invitee@example.com", "Alpha", "Lee", "ALPH-1234")
	svc.Wait()

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "smtp.example.com:587", rec.sent[0].addr)
	assert.Equal(t, []string{"invitee@example.com"}, rec.sent[0].to)
	assert.Contains(t, rec.sent[0].msg, "Subject: You've been invited to join Alpha")
	assert.Contains(t, rec.sent[0].msg, "ALPH-1234")
}

func TestEmailService_SendCoupon_NamesCannotAddHeaders(t *testing.T) {
	rec := &mailRecorder{}
	svc := NewEmailService(testSMTP, zap.NewNop())
	svc.send = rec.send

	svc.SendCoupon("ivo@example.com", "Alpha\r\nBcc: attacker@evil.test", "Lee", "ALPH-1234")
	svc.Wait()

	require.Len(t, rec.sent, 1)
	headers, _, found := strings.Cut(rec.sent[0].msg, "\r\n\r\n")
	require.True(t, found)
	for _, line := range strings.Split(headers, "\r\n") {
		assert.False(t, strings.HasPrefix(strings.ToLower(line), "bcc:"), "unexpected header line %q", line)
	}
	assert.Len(t, strings.Split(headers, "\r\n"), 5)
	assert.Contains(t, headers, "Subject: =?utf-8?q?")
}

func TestEmailService_SendCoupon_EscapesBody(t *testing.T) {
	rec := &mailRecorder{}
	svc := NewEmailService(testSMTP, zap.NewNop())
	svc.send = rec.send

	svc.SendCoupon("ivo@example.com", "<script>alert(1)</script>", "<b>Lee</b>", "ALPH-1234")
	svc.Wait()

	require.Len(t, rec.sent, 1)
	_, body, _ := strings.Cut(rec.sent[0].msg, "\r\n\r\n")
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "<b>Lee</b>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestEmailService_SendVerification(t *testing.T) {
	rec := &mailRecorder{}
	svc := NewEmailService(testSMTP, zap.NewNop())
	svc.send = rec.send

	svc.SendVerification("new@example.com", "New", "http://localhost/verify?token=abc")
	svc.Wait()

	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].msg, "http://localhost/verify?token=abc")
}

func TestEmailService_UnconfiguredIsNoop(t *testing.T) {
	rec := &mailRecorder{}
	svc := NewEmailService(config.SMTPConfig{}, zap.NewNop())
	svc.send = rec.send

	svc.Send("a@example.com", "hi", "body")
	svc.Wait()

	assert.Empty(t, rec.sent)
}

func TestEmailService_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &mailRecorder{err: errors.New("connection refused")}
	svc := NewEmailService(testSMTP, zap.New(core))
	svc.send = rec.send

	svc.Send("a@example.com", "hi", "body")
	svc.Wait()

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "failed to send email", entry.Message)
	assert.Equal(t, "a@example.com", entry.ContextMap()["to"])
}
