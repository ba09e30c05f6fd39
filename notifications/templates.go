package notifications

import (
	"fmt"
	"html"
	"strconv"
)

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func BidAccepted(teacherName, title string, amount float64) (subject, body string) {
	subject = "Your bid was accepted"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your bid of <strong>%s</strong> on <em>%s</em> was accepted. You can start working on the assignment now.</p>",
		html.EscapeString(teacherName), money(amount), html.EscapeString(title),
	)
	return subject, body
}

func WorkSubmitted(studentName, title string) (subject, body string) {
	subject = "Your assignment is ready"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>The work for <em>%s</em> has been submitted. Review the preview and complete payment to download it.</p>",
		html.EscapeString(studentName), html.EscapeString(title),
	)
	return subject, body
}

func PaymentReceived(teacherName, title string, amount float64) (subject, body string) {
	subject = "Payment received"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>The student paid <strong>%s</strong> for <em>%s</em>.</p>",
		html.EscapeString(teacherName), money(amount), html.EscapeString(title),
	)
	return subject, body
}

func UnpaidReminder(studentName, title string, amount float64) (subject, body string) {
	subject = "Your completed assignment is waiting"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p><em>%s</em> was completed and is waiting for payment of <strong>%s</strong>.</p>",
		html.EscapeString(studentName), html.EscapeString(title), money(amount),
	)
	return subject, body
}
