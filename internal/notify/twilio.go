package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"payment-alerts/backend/internal/payment/domain"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioSender delivers WhatsApp messages through the Twilio REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	to         string
	baseURL    string
	client     *http.Client
}

// NewTwilioSender returns a sender posting to the Twilio API with the given
// credentials. from and to are bare phone numbers; the whatsapp: prefix is
// added on send.
func NewTwilioSender(accountSID, authToken, from, to string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		baseURL:    twilioBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// twilioMessageResponse holds the fields we read from the Messages API reply.
type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error detail on non-2xx
}

// Send posts the message to the Twilio Messages endpoint and returns the
// delivery outcome. A non-2xx reply is an error carrying Twilio's detail.
func (s *TwilioSender) Send(ctx context.Context, p domain.Payment, customMessage string) (DeliveryResult, error) {
	body := customMessage
	if body == "" {
		body = PaymentAlertMessage(p)
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+s.to)
	form.Set("Body", body)

	endpoint := strings.TrimSuffix(s.baseURL, "/") + "/2010-04-01/Accounts/" + s.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return failed(err), err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		err = fmt.Errorf("whatsapp alert failed: %w", err)
		return failed(err), err
	}
	defer resp.Body.Close()

	var msg twilioMessageResponse
	_ = json.NewDecoder(resp.Body).Decode(&msg)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := msg.Message
		if detail == "" {
			detail = resp.Status
		}
		err = fmt.Errorf("whatsapp alert failed: %s", detail)
		return failed(err), err
	}

	return DeliveryResult{
		Success:    true,
		MessageSID: msg.SID,
		Status:     msg.Status,
		Timestamp:  domain.NowISO(),
	}, nil
}

func failed(err error) DeliveryResult {
	return DeliveryResult{Success: false, Error: err.Error(), Timestamp: domain.NowISO()}
}
