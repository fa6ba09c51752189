package email

import (
	"context"
	"encoding/json"
	"fmt"
	c "notesauth/internal/core/domain/common"
	"notesauth/internal/core/domain/user"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesClient interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

type EmailSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                string
	passwordResetTemplate string
}

func NewEmailSender(awsConfig aws.Config, sender string, passwordResetTemplate string) *EmailSender {
	return newEmailSender(ses.NewFromConfig(awsConfig), sender, passwordResetTemplate)
}

func newEmailSender(client sesClient, sender string, passwordResetTemplate string) *EmailSender {
	if sender == "" {
		panic("email sender address must not be empty")
	}
	if passwordResetTemplate == "" {
		panic("password reset template must not be empty")
	}
	return &EmailSender{
		ses:                   client,
		sender:                sender,
		passwordResetTemplate: passwordResetTemplate,
	}
}

func (s *EmailSender) SendPasswordResetToken(ctx context.Context, to c.Email, reset user.PasswordReset) error {
	if to == "" {
		return fmt.Errorf("recipient email is not defined")
	}

	templateParamsBytes, err := json.Marshal(newPasswordResetTemplateParams(reset))
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: aws.String(s.sender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{string(to)},
			},
			Template:     aws.String(s.passwordResetTemplate),
			TemplateData: aws.String(templateParams),
		},
	)
	if err != nil {
		return fmt.Errorf("could not send templated email: %w", err)
	}
	return nil
}

type passwordResetTemplateParams struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expiresAt"`
}

func newPasswordResetTemplateParams(reset user.PasswordReset) passwordResetTemplateParams {
	return passwordResetTemplateParams{
		Code:      string(reset.Token),
		ExpiresAt: reset.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
