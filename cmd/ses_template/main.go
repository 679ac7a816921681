package main

import (
	"accounts/internal/config"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const (
	activationSubject = "Activate your account"
	activationHtml    = `<p>Hi {{username}},</p>` +
		`<p>Please <a href="{{activationUrl}}">activate your account</a>.</p>` +
		`<p>Your activation code is <b>{{activationCode}}</b>.</p>`
	activationText = "Hi {{username}},\n\n" +
		"Please activate your account: {{activationUrl}}\n\n" +
		"Your activation code is {{activationCode}}.\n"
)

// Manages the SES template used for activation e-mails:
//
//	ses_template -action create
//	ses_template -action delete
//	ses_template -action send -to user@mail.com
func main() {
	action := flag.String("action", "", "create, delete or send")
	to := flag.String("to", "", "recipient of a test e-mail")
	flag.Parse()

	cfg, err := config.Load()
	exitOnError(err)
	exitOnError(cfg.ValidateEmailSettings())

	svc := ses.NewFromConfig(loadAwsConfig(cfg))
	name := cfg.AwsEmailActivateAccountTemplate

	var result interface{}
	switch *action {
	case "create":
		result, err = svc.CreateTemplate(context.Background(), &ses.CreateTemplateInput{
			Template: &types.Template{
				SubjectPart:  aws.String(activationSubject),
				HtmlPart:     aws.String(activationHtml),
				TextPart:     aws.String(activationText),
				TemplateName: &name,
			},
		})
	case "delete":
		result, err = svc.DeleteTemplate(context.Background(), &ses.DeleteTemplateInput{TemplateName: &name})
	case "send":
		if *to == "" {
			exitOnError(fmt.Errorf("-to must be set"))
		}
		result, err = svc.SendTemplatedEmail(context.Background(), &ses.SendTemplatedEmailInput{
			Source: aws.String(cfg.AwsEmailSender),
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{*to},
			},
			Template: &name,
			TemplateData: aws.String(
				`{"username": "test", "activationCode": "test-code", "activationUrl": "https://example.com"}`,
			),
		})
	default:
		flag.Usage()
		os.Exit(2)
	}
	exitOnError(err)

	fmt.Println("Success:")
	fmt.Println(result)
}

func loadAwsConfig(cfg *config.Config) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
	)
	exitOnError(err)
	return awsCfg
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
