package contact

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInFlight is returned when a client submits again before its previous
// submission has finished.
var ErrInFlight = errors.New("submission already in progress")

// Message is a validated submission ready for delivery.
type Message struct {
	ID       uuid.UUID
	Form     Form
	Received time.Time
}

// Submitter delivers a contact message.
type Submitter interface {
	Submit(ctx context.Context, m Message) error
}

// Simulated stands in for a real backend: it waits Delay and reports
// success, or Err when set.
type Simulated struct {
	Delay time.Duration
	Err   error
}

func (s Simulated) Submit(ctx context.Context, _ Message) error {
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return s.Err
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string
}

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// SMTPSubmitter mails each message to the portfolio owner.
type SMTPSubmitter struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSubmitter(cfg SMTPConfig) *SMTPSubmitter {
	return &SMTPSubmitter{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSubmitter) Submit(_ context.Context, m Message) error {
	if !s.cfg.Configured() {
		return fmt.Errorf("SMTP credentials not configured")
	}
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := s.sendMail(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{s.cfg.To}, composeMail(s.cfg, m)); err != nil {
		return fmt.Errorf("sending contact email: %w", err)
	}
	return nil
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

func composeMail(cfg SMTPConfig, m Message) []byte {
	f := m.Form
	subject := fmt.Sprintf("Portfolio Contact: %s", f.Name)
	if f.Subject != "" {
		subject += " - " + f.Subject
	}
	subject = headerBreaks.Replace(subject)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form (ref %s)
`, f.Name, f.Email, f.Message, m.ID)

	return []byte("To: " + cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + headerBreaks.Replace(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// Guard allows one in-flight submission per client key.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

// Acquire claims key and returns its release func, or ErrInFlight.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, ErrInFlight
	}
	g.inFlight[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, nil
}

// BannerTTL is how long a form banner stays up before dismissing itself.
const BannerTTL = 5 * time.Second

// Banner is the transient status line shown above the contact form.
type Banner struct {
	Kind string
	Text string
	TTL  time.Duration
}

func (b Banner) TTLMillis() int64 { return b.TTL.Milliseconds() }

var (
	BannerSent    = Banner{Kind: "success", Text: "Thank you! Your message has been sent successfully.", TTL: BannerTTL}
	BannerFailed  = Banner{Kind: "error", Text: "Sorry, there was an error sending your message. Please try again later.", TTL: BannerTTL}
	BannerInvalid = Banner{Kind: "error", Text: "Please fix the errors above", TTL: BannerTTL}
	BannerBusy    = Banner{Kind: "error", Text: "Your previous message is still being sent.", TTL: BannerTTL}
)

// Outcome is what the form shows after a submission attempt.
type Outcome struct {
	Errors Errors
	Banner Banner
	// Form is echoed back on failure so the visitor keeps their input; it is
	// empty after a successful send.
	Form Form
}

// Service validates, guards and delivers submissions.
type Service struct {
	submitter Submitter
	guard     *Guard
	log       *zap.Logger
	now       func() time.Time
}

func NewService(s Submitter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{submitter: s, guard: NewGuard(), log: logger.Named("contact"), now: time.Now}
}

// Submit handles one form post from client.
func (s *Service) Submit(ctx context.Context, client string, f Form) Outcome {
	f = f.Trimmed()
	if errs := Validate(f); !errs.OK() {
		return Outcome{Errors: errs, Banner: BannerInvalid, Form: f}
	}

	release, err := s.guard.Acquire(client)
	if err != nil {
		return Outcome{Errors: Errors{}, Banner: BannerBusy, Form: f}
	}
	defer release()

	m := Message{ID: uuid.New(), Form: f, Received: s.now()}
	if err := s.submitter.Submit(ctx, m); err != nil {
		s.log.Error("contact submission failed", zap.Stringer("id", m.ID), zap.Error(err))
		return Outcome{Errors: Errors{}, Banner: BannerFailed, Form: f}
	}
	s.log.Info("contact submission sent", zap.Stringer("id", m.ID), zap.String("name", f.Name))
	return Outcome{Errors: Errors{}, Banner: BannerSent}
}
