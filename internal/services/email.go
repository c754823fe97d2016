package services

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"sync"

	"github.com/dimitrije/taskhub-api/internal/config"
	"go.uber.org/zap"
)

type mailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService is the Notifier. Deliveries run in the background and
// failures are logged, never returned to the caller.
type EmailService struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   mailFunc
	wg     sync.WaitGroup
}

func NewEmailService(cfg config.SMTPConfig, logger *zap.Logger) *EmailService {
	return &EmailService{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send queues a message and returns immediately.
func (s *EmailService) Send(to, subject, body string) {
	if !s.IsConfigured() {
		s.logger.Debug("smtp not configured, dropping email", zap.String("to", to), zap.String("subject", subject))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deliver(to, subject, body); err != nil {
			s.logger.Warn("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		}
	}()
}

// Wait blocks until queued deliveries finish.
func (s *EmailService) Wait() {
	s.wg.Wait()
}

func (s *EmailService) deliver(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	// Q-encoding turns CR and LF into =0D=0A, so the subject stays one header line.
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, mime.QEncoding.Encode("utf-8", subject), body)

	return s.send(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

var (
	verificationTemplate = template.Must(template.New("verification").Parse(`<html>
<body>
	<h2>Welcome to TaskHub</h2>
	<p>Hi {{.Name}},</p>
	<p><a href="{{.VerifyURL}}">Click here to activate your account</a></p>
</body>
</html>`))

	couponTemplate = template.Must(template.New("coupon").Parse(`<html>
<body>
	<h2>Project Invitation</h2>
	<p><strong>{{.LeaderName}}</strong> has invited you to join the project <strong>{{.ProjectName}}</strong>.</p>
	<p>Submit this code with your join request: <code>{{.Code}}</code></p>
	<p>The code works once and only for your account.</p>
</body>
</html>`))
)

type verificationEmailData struct {
	Name      string
	VerifyURL string
}

type couponEmailData struct {
	LeaderName  string
	ProjectName string
	Code        string
}

func (s *EmailService) render(tmpl *template.Template, data any) (string, bool) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render email", zap.String("template", tmpl.Name()), zap.Error(err))
		return "", false
	}
	return buf.String(), true
}

func (s *EmailService) SendVerification(to, name, verifyURL string) {
	body, ok := s.render(verificationTemplate, verificationEmailData{Name: name, VerifyURL: verifyURL})
	if !ok {
		return
	}
	s.Send(to, "Confirm your TaskHub account", body)
}

func (s *EmailService) SendCoupon(to, projectName, leaderName, code string) {
	body, ok := s.render(couponTemplate, couponEmailData{LeaderName: leaderName, ProjectName: projectName, Code: code})
	if !ok {
		return
	}
	s.Send(to, fmt.Sprintf("You've been invited to join %s", projectName), body)
}
