package mail

import (
	"context"
	"fmt"

	"github.com/platinummonkey/ideagrave/pkg/observability"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers messages
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// VerificationMessage builds the email carrying a registration code
func VerificationMessage(to, subject, code string) Message {
	return Message{
		To:      to,
		Subject: subject,
		Body:    fmt.Sprintf("Your verification code is: %s", code),
	}
}

type instrumented struct {
	Transport
	metrics *observability.Metrics
}

// Instrument counts deliveries of t by outcome
func Instrument(t Transport, metrics *observability.Metrics) Transport {
	return &instrumented{Transport: t, metrics: metrics}
}

func (i *instrumented) Send(ctx context.Context, msg Message) error {
	err := i.Transport.Send(ctx, msg)
	i.metrics.ObserveMail(i.Transport.Name(), err)
	return err
}
