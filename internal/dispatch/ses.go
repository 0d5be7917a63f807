// internal/dispatch/ses.go
package dispatch

import (
	"context"
	"fmt"

	"smarttender-engine/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the SES surface used, narrowed for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender is the alternate provider: it renders the plan into a
// plain subject/body pair instead of provider-side templates.
type SESSender struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewSESSender(ctx context.Context, region, fromEmail string, log logger.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SESSender{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"provider": "ses"}),
	}, nil
}

func (s *SESSender) Send(ctx context.Context, plan Plan) error {
	subject := "Tender Validation Result: Rejection"
	if plan.Variant == VariantValidation {
		subject = "Tender Validation Result: Success"
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nYour application result: %s.\n\n%s\n\nBest regards,\nTender Review Team",
		plan.CandidateName, plan.Status, plan.Reason,
	)

	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{plan.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.fromEmail),
	})
	return err
}
