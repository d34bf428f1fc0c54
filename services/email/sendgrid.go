package email

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridSender delivers mail through the Sendgrid v3 API.
type SendgridSender struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

var _ Sender = (*SendgridSender)(nil)

func NewSendgridSender(apiKey, appName, fromAddress string) *SendgridSender {
	return &SendgridSender{
		client:     sendgrid.NewSendClient(apiKey),
		from:       sgmail.NewEmail(appName, fromAddress),
		subjPrefix: "[" + appName + "] ",
	}
}

func (s *SendgridSender) Send(toAddress, subject, htmlBody string) error {
	msg := sgmail.NewSingleEmail(s.from, s.subjPrefix+subject, sgmail.NewEmail("", toAddress), "", htmlBody)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
