// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAPI is the subset of the SNS client used for SMS.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	api      SNSAPI
	senderID string
}

func NewSNSClient(ctx context.Context, region, senderID string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSClientFromAPI(sns.NewFromConfig(cfg), senderID), nil
}

func NewSNSClientFromAPI(api SNSAPI, senderID string) *SNSClient {
	return &SNSClient{api: api, senderID: senderID}
}

// SendSMS publishes a transactional SMS and returns the SNS message id.
func (s *SNSClient) SendSMS(ctx context.Context, phoneNumber, message string) (string, error) {
	if phoneNumber == "" {
		return "", fmt.Errorf("phone number is required")
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    awssdk.String("String"),
			StringValue: awssdk.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    awssdk.String("String"),
			StringValue: awssdk.String(s.senderID),
		}
	}

	out, err := s.api.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       awssdk.String(phoneNumber),
		Message:           awssdk.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}
