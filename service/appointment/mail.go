package appointment

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// Mailer sends payment-link emails through SMTP.
type Mailer struct {
	host string
	port string
	user string
	pass string
	link string
}

func NewMailer() *Mailer {
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		link: os.Getenv("PAYMENT_LINK_BASE"),
	}
}

// SendPaymentLink emails the client a link to settle a payment flagged with
// send_payment_link.
func (m *Mailer) SendPaymentLink(to string, appointment models.Appointment, payment models.Payment) error {
	port, err := strconv.Atoi(m.port)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}

	body := fmt.Sprintf(
		"A payment of %.2f is due for your appointment %q on %s.\n\nPay here: %s/%s",
		payment.Value,
		appointment.Title,
		appointment.Start.Format("02 Jan 2006 15:04"),
		m.link,
		appointment.ID,
	)
	if payment.DueDate != nil {
		body += fmt.Sprintf("\n\nDue by %s.", payment.DueDate.Format("02 Jan 2006"))
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Payment link for your appointment")
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, port, m.user, m.pass)
	return d.DialAndSend(msg)
}
