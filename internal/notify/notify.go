// Package notify emails a customer their estimate.
package notify

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/pkg/emailjs"
)

// Notifier delivers a finished estimate to the person who asked for it.
type Notifier interface {
	Notify(ctx context.Context, to model.ContactProfile, est model.PricedEstimate) error
}

// Mailer sends estimates through an EmailJS template.
type Mailer struct {
	client emailjs.Client
	format *pricing.Formatter
}

// NewMailer creates a Mailer. A nil formatter renders prices as plain numbers.
func NewMailer(client emailjs.Client, format *pricing.Formatter) *Mailer {
	return &Mailer{client: client, format: format}
}

// Notify implements Notifier. The send is attempted once; a failed send fails
// the submission and the user resubmits.
func (m *Mailer) Notify(ctx context.Context, to model.ContactProfile, est model.PricedEstimate) error {
	if err := m.client.Send(ctx, Params(to, est, m.format)); err != nil {
		return eris.Wrap(err, "notify: send estimate")
	}
	return nil
}

// Params builds the template parameters. Unknown values render as "".
func Params(to model.ContactProfile, est model.PricedEstimate, format *pricing.Formatter) map[string]string {
	p := map[string]string{
		"to_name":   to.Name,
		"to_email":  to.Email,
		"phone":     to.Phone,
		"address":   to.Address,
		"area":      est.AreaLabel,
		"length":    est.LengthBucket,
		"condition": est.ConditionBucket,
		"price":     "",
	}
	if est.Price != nil {
		if format != nil {
			p["price"] = format.Format(est.Price)
		} else {
			p["price"] = strconv.FormatFloat(*est.Price, 'f', 2, 64)
		}
	}
	return p
}
