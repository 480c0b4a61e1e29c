package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payment-alerts/backend/internal/payment/domain"
)

// PaymentAlertMessage builds the default WhatsApp body for a payment record.
func PaymentAlertMessage(p domain.Payment) string {
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf(
		"💰 Payment Alert!\n\n"+
			"Payment ID: %s\n"+
			"Customer: %s\n"+
			"Amount: %s %s\n"+
			"Time: %s\n\n"+
			"Thank you for your payment!",
		p.PaymentID, p.CustomerName, currency, FormatAmount(p.Amount),
		time.Now().UTC().Format("02/01/2006, 15:04:05"),
	)
}

// InvoiceCreatedMessage builds the WhatsApp body for a new Zoho Books invoice.
// Organization info is always included, with N/A placeholders when absent.
func InvoiceCreatedMessage(p domain.Payment) string {
	invNum := p.InvoiceNumber
	if invNum == "" {
		invNum = p.InvoiceID
	}
	if invNum == "" {
		invNum = p.PaymentID
	}
	if invNum == "" {
		invNum = "N/A"
	}
	custName := p.CustomerName
	if custName == "" {
		custName = domain.UnknownCustomer
	}
	orgName := p.OrgName
	if orgName == "" {
		orgName = "N/A"
	}
	orgID := p.OrgID
	if orgID == "" {
		orgID = "N/A"
	}
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}

	formattedDate := p.InvoiceDate
	if t, ok := domain.ParseTimestamp(p.InvoiceDate); ok {
		formattedDate = t.Format("2 Jan 2006")
	}

	return fmt.Sprintf(
		"🧾 *New Invoice Created*\n"+
			"• *Organization*: %s (ID: %s)\n"+
			"• *Invoice No*: %s\n"+
			"• *Customer*: %s\n"+
			"• *Amount*: %s %s\n"+
			"• *Date*: %s\n"+
			"• *Time*: %s\n\n"+
			"✅ Invoice has been created in Zoho Books.",
		orgName, orgID, invNum, custName, currency, FormatAmount(p.Amount),
		formattedDate, time.Now().UTC().Format("02/01/2006, 15:04:05"),
	)
}

// FormatAmount renders a decimal with Indian digit grouping (12,34,567.89),
// matching the en-IN formatting of the alerts this replaces.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	grouped := intPart
	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		grouped = strings.Join(append(groups, tail), ",")
	}

	out := grouped
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
