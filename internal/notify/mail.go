package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// MailNotifier sends e-mail through SMTP. Sends run in their own goroutine;
// failures are logged and dropped.
type MailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *logrus.Logger
}

func NewMailNotifier(host string, port int, username, password, from string, log *logrus.Logger) *MailNotifier {
	return &MailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    log,
	}
}

func (n *MailNotifier) send(to, subject, body string) {
	go func() {
		m := gomail.NewMessage()
		m.SetHeader("From", n.from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/plain", body)

		if err := n.dialer.DialAndSend(m); err != nil {
			n.log.WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
			}).WithError(err).Warn("failed to send notification e-mail")
		}
	}()
}

func (n *MailNotifier) NewOffer(e NewOfferEvent) {
	body := fmt.Sprintf(
		"Hi %s,\n\n%s made an offer on your listing: %d units of %s %s blood at $%s per unit.\nThe offer expires at %s.\n",
		e.SellerName, e.BuyerName, e.Quantity, e.AnimalType, e.BloodType, e.OfferedPrice, e.ExpiresAt)
	n.send(e.SellerEmail, "New offer received", body)
}

func (n *MailNotifier) OfferDecided(e OfferDecidedEvent) {
	verdict := "rejected"
	if e.Accepted {
		verdict = "accepted"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour offer for %d units of %s %s blood was %s.\n",
		e.BuyerName, e.Quantity, e.AnimalType, e.BloodType, verdict)
	n.send(e.BuyerEmail, fmt.Sprintf("Offer %s", verdict), body)
}

func (n *MailNotifier) PaymentConfirmed(e PaymentConfirmedEvent) {
	role := "purchase"
	if e.IsSeller {
		role = "sale"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nPayment for your %s (order %s, total $%s) has been confirmed.\n",
		e.Name, role, e.OrderId, e.Total)
	n.send(e.Email, "Payment confirmed", body)
}

func (n *MailNotifier) DailyDigest(e DailyDigestEvent) {
	body := fmt.Sprintf("Hi %s,\n\nBlood products available near you today:\n", e.HospitalName)
	for _, l := range e.Listings {
		body += fmt.Sprintf("- %s: %d units of %s %s blood at $%s/unit (%.1f miles)\n",
			l.HospitalName, l.Quantity, l.AnimalType, l.BloodType, l.PricePerUnit, l.DistanceMiles)
	}
	n.send(e.HospitalEmail, "Daily listing digest", body)
}
