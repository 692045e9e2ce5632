package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/slot"
)

// BookingNotifier emails patient and doctor after booking events.
// Delivery is best effort: every failure is logged and swallowed, the
// appointment is already committed by the time this runs.
type BookingNotifier struct {
	sender EmailSender
	log    zerolog.Logger
}

func NewBookingNotifier(sender EmailSender, log zerolog.Logger) *BookingNotifier {
	return &BookingNotifier{sender: sender, log: log}
}

func (b *BookingNotifier) BookingConfirmed(ctx context.Context, n booking.Notification) {
	subject := fmt.Sprintf("Appointment confirmed for %s at %s", n.Date, n.StartTime)

	b.send(ctx, n.PatientEmail, n.PatientName, subject, fmt.Sprintf(
		"Hi %s,\n\nYour %s with Dr. %s is confirmed for %s at %s.\nConsultation fee: %.2f\n",
		n.PatientName, typeLabel(n.Type), n.DoctorName, n.Date, n.StartTime, n.Fee,
	))
	b.send(ctx, n.DoctorEmail, n.DoctorName, subject, fmt.Sprintf(
		"Hi Dr. %s,\n\nA new %s with %s is booked for %s at %s.\n",
		n.DoctorName, typeLabel(n.Type), n.PatientName, n.Date, n.StartTime,
	))
}

func (b *BookingNotifier) BookingCancelled(ctx context.Context, n booking.Notification) {
	subject := fmt.Sprintf("Appointment on %s at %s cancelled", n.Date, n.StartTime)

	reason := n.Reason
	if reason == "" {
		reason = "no reason given"
	}

	b.send(ctx, n.PatientEmail, n.PatientName, subject, fmt.Sprintf(
		"Hi %s,\n\nYour appointment with Dr. %s on %s at %s was cancelled (%s).\nThe slot is open again if you want to rebook.\n",
		n.PatientName, n.DoctorName, n.Date, n.StartTime, reason,
	))
	b.send(ctx, n.DoctorEmail, n.DoctorName, subject, fmt.Sprintf(
		"Hi Dr. %s,\n\nThe appointment with %s on %s at %s was cancelled (%s).\n",
		n.DoctorName, n.PatientName, n.Date, n.StartTime, reason,
	))
}

func (b *BookingNotifier) send(ctx context.Context, to, toName, subject, body string) {
	if to == "" {
		return
	}
	err := b.sender.Send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		b.log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("notification delivery failed")
	}
}

func typeLabel(t slot.BookingType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
