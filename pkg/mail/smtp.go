package mail

import (
	"context"
	"fmt"
	"net"
	netmail "net/mail"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultSMTPTimeout bounds one delivery when SMTPConfig.Timeout is unset
const DefaultSMTPTimeout = 10 * time.Second

// SMTPConfig holds relay settings
type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	Timeout time.Duration
}

// SMTPTransport sends mail through an SMTP relay, upgrading with STARTTLS
// when offered and authenticating with PLAIN when credentials are set
type SMTPTransport struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPTransport creates an SMTP transport
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}
	return &SMTPTransport{cfg: cfg, now: time.Now}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers msg. The whole exchange, from dial to QUIT, is bounded by
// the configured timeout and by ctx.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if _, err := netmail.ParseAddress(t.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if _, err := netmail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	client, err := t.client(ctx)
	if err != nil {
		return fmt.Errorf("failed to configure smtp client: %w", err)
	}

	m := gomail.NewMsg()
	if err := m.From(t.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(t.now())
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp delivery to %s:%d failed: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return nil
}

// client builds a go-mail client whose connections carry ctx's deadline and
// are closed when ctx ends
func (t *SMTPTransport) client(ctx context.Context) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(t.cfg.Timeout),
		gomail.WithDialContextFunc(func(dialCtx context.Context, network, address string) (net.Conn, error) {
			var dialer net.Dialer
			conn, err := dialer.DialContext(dialCtx, network, address)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				conn.SetDeadline(deadline)
			}
			context.AfterFunc(ctx, func() { conn.Close() })
			return conn, nil
		}),
	}
	if t.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.User),
			gomail.WithPassword(t.cfg.Pass),
		)
	}
	return gomail.NewClient(t.cfg.Host, opts...)
}
