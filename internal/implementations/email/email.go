package email

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"context"
	"encoding/json"
	"errors"
	"net/url"

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

// EmailSender delivers activation notices as SES templated emails.
// SendActivationNotice returns once SES has accepted the message.
type EmailSender struct {
	ses sesClient
	// This address must be verified with Amazon SES.
	sender                    string
	accountActivationTemplate string
	accountActivationUrl      url.URL
}

func NewEmailSender(
	awsConfig aws.Config,
	sender string,
	accountActivationTemplate string,
	accountActivationUrl url.URL,
) *EmailSender {
	return newEmailSender(ses.NewFromConfig(awsConfig), sender, accountActivationTemplate, accountActivationUrl)
}

func newEmailSender(
	client sesClient,
	sender string,
	accountActivationTemplate string,
	accountActivationUrl url.URL,
) *EmailSender {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	if sender == "" {
		panic(e.NewInvalidArgumentError("sender", "must not be empty"))
	}
	if accountActivationTemplate == "" {
		panic(e.NewInvalidArgumentError("accountActivationTemplate", "must not be empty"))
	}
	return &EmailSender{
		ses:                       client,
		sender:                    sender,
		accountActivationTemplate: accountActivationTemplate,
		accountActivationUrl:      accountActivationUrl,
	}
}

func (s *EmailSender) SendActivationNotice(ctx context.Context, a account.Account) error {
	if !a.ActivationToken.IsPresent {
		return errors.New("account activation token is not defined")
	}
	if a.Email == "" {
		return errors.New("account email is not defined")
	}

	templateParamsBytes, err := json.Marshal(
		accountActivationTemplateParams{
			Username:       string(a.Username),
			ActivationCode: string(a.ActivationToken.Value),
			ActivationUrl:  s.activationLink(a.ActivationToken.Value),
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	email := string(a.Email)
	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{email},
			},
			Template:     &s.accountActivationTemplate,
			TemplateData: &templateParams,
		},
	)
	return err
}

func (s *EmailSender) activationLink(token account.ActivationToken) string {
	link := s.accountActivationUrl
	query := link.Query()
	query.Set("token", string(token))
	link.RawQuery = query.Encode()
	return link.String()
}

type accountActivationTemplateParams struct {
	Username       string `json:"username"`
	ActivationCode string `json:"activationCode"`
	ActivationUrl  string `json:"activationUrl"`
}
