package telegram

import (
	"context"
	"fmt"
	"time"

	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
)

const apiBase = "https://api.telegram.org"

// Sender delivers rendered signal messages through the Telegram Bot API.
// Messages are sent with HTML parse mode; callers are responsible for
// escaping upstream text.
type Sender struct {
	token  string
	chatID string
	http   *xhttp.Client
	guard  Guard
	l      *applogger.Logger
}

func NewSender(token, chatID string, timeout time.Duration, guard Guard, l *applogger.Logger) *Sender {
	return &Sender{
		token:  token,
		chatID: chatID,
		http:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		guard:  guard,
		l:      l,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers text for the given signal, at most once per signal per day.
func (s *Sender) Send(ctx context.Context, signalID, text string) error {
	if s.guard != nil && !s.guard.Claim(signalID) {
		if s.l != nil {
			s.l.Debug("telegram dispatch suppressed", applogger.String("signal_id", signalID))
		}
		return nil
	}

	var resp sendMessageResponse
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", apiBase, s.token),
		Body: sendMessageRequest{
			ChatID:                s.chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		},
	}, &resp)
	if err != nil {
		if s.guard != nil {
			s.guard.Release(signalID)
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		if s.guard != nil {
			s.guard.Release(signalID)
		}
		return fmt.Errorf("telegram send: %s", resp.Description)
	}
	if s.l != nil {
		s.l.Info("telegram message sent", applogger.String("signal_id", signalID))
	}
	return nil
}
