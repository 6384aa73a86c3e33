// Package mailer renders and delivers credential notifications for newly
// provisioned accounts. Rendering uses Liquid templates; delivery goes
// through a Sender so tests and local development can swap AWS SES out.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/trader-link/internal/pkg/logger"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SESSender sends email through the AWS SES v2 API.
type SESSender struct {
	client *sesv2.Client
	from   string
}

// NewSESSender creates an SES sender with static credentials. Empty
// accessKey falls back to the default AWS credential chain. A non-empty
// fromName becomes the sender display name.
func NewSESSender(ctx context.Context, region, accessKey, secretKey, from, fromName string) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(awsCfg), from: formatFrom(from, fromName)}, nil
}

// formatFrom renders the SES FromEmailAddress, with the RFC 5322 display
// name form when a name is configured.
func formatFrom(addr, name string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

// Send delivers one email. Not retried: provisioning treats a failed send
// as non-fatal and records it for operator follow-up.
func (s *SESSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	return nil
}

// LogSender logs instead of sending. Used when SES is not configured so
// local development still exercises the full provisioning path.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _, _ string) error {
	logger.Info("credential mail suppressed (no SES configured)", "to", to, "subject", subject)
	return nil
}
