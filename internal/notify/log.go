package notify

import "github.com/sirupsen/logrus"

// LogNotifier stands in when SMTP is not configured: events are recorded in
// the application log and nothing is sent.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NewOffer(e NewOfferEvent) {
	n.log.WithFields(logrus.Fields{
		"event":  "new_offer",
		"seller": e.SellerEmail,
		"units":  e.Quantity,
	}).Info("notification")
}

func (n *LogNotifier) OfferDecided(e OfferDecidedEvent) {
	n.log.WithFields(logrus.Fields{
		"event":    "offer_decided",
		"buyer":    e.BuyerEmail,
		"accepted": e.Accepted,
	}).Info("notification")
}

func (n *LogNotifier) PaymentConfirmed(e PaymentConfirmedEvent) {
	n.log.WithFields(logrus.Fields{
		"event": "payment_confirmed",
		"to":    e.Email,
		"order": e.OrderId,
	}).Info("notification")
}

func (n *LogNotifier) DailyDigest(e DailyDigestEvent) {
	n.log.WithFields(logrus.Fields{
		"event":    "daily_digest",
		"hospital": e.HospitalEmail,
		"listings": len(e.Listings),
	}).Info("notification")
}
