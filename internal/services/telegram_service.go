package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TelegramService sends operator alerts to the admin chat. Every Notify
// method is fire-and-forget: delivery happens on a goroutine and failures are
// only logged.
type TelegramService struct {
	botToken    string
	adminChatID string
	client      *http.Client
}

func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts a message to the given chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[telegram] bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[telegram] failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[telegram] unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *TelegramService) sendToAdmin(text string) {
	if s.adminChatID == "" {
		return
	}
	go func() {
		if err := s.SendMessage(s.adminChatID, strings.TrimSpace(text)); err != nil {
			log.Printf("[telegram] admin notification failed: %v", err)
		}
	}()
}

// NotifyManualIntervention alerts operators about a reconciliation outcome
// the system cannot resolve alone.
func (s *TelegramService) NotifyManualIntervention(paymentCode, reason string) {
	s.sendToAdmin(fmt.Sprintf(`<b>⚠️ MANUAL INTERVENTION</b>
<b>Payment:</b> %s
<b>Reason:</b> %s`, paymentCode, reason))
}

// NotifyPaymentReceived reports a successfully reconciled bank transfer.
func (s *TelegramService) NotifyPaymentReceived(paymentCode string, amount float64) {
	s.sendToAdmin(fmt.Sprintf(`<b>✅ PAYMENT RECEIVED</b>
<b>Payment:</b> %s
<b>Amount:</b> %s`, paymentCode, FormatAmount(amount)))
}

// NotifyDeliveryFailed reports a failed delivery attempt.
func (s *TelegramService) NotifyDeliveryFailed(orderID uuid.UUID, reason string) {
	s.sendToAdmin(fmt.Sprintf(`<b>📦 DELIVERY FAILED</b>
<b>Order:</b> %s
<b>Reason:</b> %s`, orderID, reason))
}

// FormatAmount renders a VND amount with thousand separators.
func FormatAmount(amount float64) string {
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " VND"
}
