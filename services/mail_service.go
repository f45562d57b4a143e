package services

import (
	"fmt"
	"html"
	"strings"

	"farmconnect/models"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendConfirmation(to, name, link string) error
	SendOrderNotification(to, sellerName string, order models.Order) error
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailService struct {
	sender mailSender
	from   string
}

func NewMailService(host string, port int, user, pass, from string) *MailService {
	return &MailService{
		sender: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *MailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (s *MailService) SendConfirmation(to, name, link string) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
        <div style="font-size: 24px; font-weight: bold; color: #15803d;">FarmConnect</div>
        <h2 style="color: #333;">Confirm your email</h2>
        <p>Hello %s,</p>
        <p>Thanks for joining FarmConnect. Confirm your email address to start using your account:</p>
        <p style="margin: 30px 0;">
            <a href="%s" style="background-color: #15803d; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Confirm email</a>
        </p>
        <p>If you did not sign up, you can ignore this email.</p>
    </div>
</body>
</html>`, html.EscapeString(name), html.EscapeString(link))

	return s.send(to, "Confirm your FarmConnect account", body)
}

func (s *MailService) SendOrderNotification(to, sellerName string, order models.Order) error {
	var rows strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d %s</td><td>%s</td></tr>",
			html.EscapeString(it.ProductName), it.Quantity, it.Unit, it.Price.StringFixed(2))
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <div style="font-size: 24px; font-weight: bold; color: #15803d;">FarmConnect</div>
    <p>Hello %s,</p>
    <p>You have a new order <strong>%s</strong>:</p>
    <table cellpadding="6">
        <tr><th align="left">Product</th><th align="left">Quantity</th><th align="left">Price</th></tr>
        %s
    </table>
    <p><strong>Total: %s</strong></p>
</body>
</html>`, html.EscapeString(sellerName), order.ID, rows.String(), order.Total.StringFixed(2))

	return s.send(to, "New FarmConnect order", body)
}
