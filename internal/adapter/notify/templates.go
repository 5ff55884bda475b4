package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"gas-booking-service/internal/domain/booking"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[booking.Event]emailTemplate{
	booking.EventConfirmed: {
		subject: "Gas Booking Confirmation",
		body: template.Must(template.New("confirmed").Parse(
			`<h3>Booking Confirmed</h3><p>Your gas booking is confirmed for {{.Date}} at {{.TimeSlot}}.</p>`)),
	},
	booking.EventUpdated: {
		subject: "Gas Booking Updated",
		body: template.Must(template.New("updated").Parse(
			`<h3>Booking Updated</h3><p>Your gas booking has been updated to {{.Date}} at {{.TimeSlot}}.</p>`)),
	},
	booking.EventCancelled: {
		subject: "Gas Booking Cancelled",
		body: template.Must(template.New("cancelled").Parse(
			`<h3>Booking Cancelled</h3><p>Your gas booking scheduled for {{.Date}} at {{.TimeSlot}} has been cancelled.</p>`)),
	},
}

// Render returns the subject and HTML body for event. Booking fields are
// HTML-escaped.
func Render(event booking.Event, b *booking.Booking) (subject, html string, err error) {
	tpl, ok := templates[event]
	if !ok {
		return "", "", fmt.Errorf("no template for event %q", event)
	}

	var buf bytes.Buffer
	data := struct {
		Date     string
		TimeSlot string
	}{
		Date:     booking.FormatDate(b.Date),
		TimeSlot: b.TimeSlot,
	}
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", event, err)
	}
	return tpl.subject, buf.String(), nil
}
