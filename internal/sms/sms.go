// Package sms delivers one-time codes through the NCP SENS SMS API.
// Delivery sits behind the Sender interface so services can be tested
// without network access and so test deployments can skip SMS entirely.
package sms

import "context"

// Sender delivers a text message to a single Korean mobile number.
type Sender interface {
	Send(ctx context.Context, to string, content string) error
}

// NoopSender satisfies Sender without sending anything. Used when the
// deployment runs in test mode with a fixed OTP code.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to string, content string) error {
	return nil
}
