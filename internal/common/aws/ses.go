// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used for onboarding mail.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email is a plain-text plus HTML message.
type Email struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type SESClient struct {
	api  SESAPI
	from string
}

func NewSESClient(ctx context.Context, region, from string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESClientFromAPI(ses.NewFromConfig(cfg), from), nil
}

// NewSESClientFromAPI wraps an existing SES API implementation.
func NewSESClientFromAPI(api SESAPI, from string) *SESClient {
	return &SESClient{api: api, from: from}
}

// Send delivers the email and returns the SES message id.
func (s *SESClient) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}

	body := &types.Body{}
	if email.TextBody != "" {
		body.Text = &types.Content{Data: awssdk.String(email.TextBody), Charset: awssdk.String("UTF-8")}
	}
	if email.HTMLBody != "" {
		body.Html = &types.Content{Data: awssdk.String(email.HTMLBody), Charset: awssdk.String("UTF-8")}
	}

	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(s.from),
		Destination: &types.Destination{ToAddresses: email.To},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(email.Subject), Charset: awssdk.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
