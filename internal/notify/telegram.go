package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mintwatch/internal/model"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram sends notifications through the Telegram Bot API.
type Telegram struct {
	apiURL      string
	token       string
	chatID      string
	explorerURL string
	client      *http.Client
	logger      *zap.Logger
}

// NewTelegram builds a Telegram notifier for a bot token and chat.
func NewTelegram(token, chatID, explorerURL string, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		apiURL:      defaultTelegramAPI,
		token:       token,
		chatID:      chatID,
		explorerURL: explorerURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// WithAPIURL points the notifier at a different API host. Used by tests.
func (t *Telegram) WithAPIURL(apiURL string) *Telegram {
	t.apiURL = apiURL
	return t
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Notify formats and posts the notification as a single Markdown message.
func (t *Telegram) Notify(ctx context.Context, n model.Notification) error {
	payload := sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  Format(n, t.explorerURL),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}

	if _, err := t.post(ctx, "sendMessage", payload); err != nil {
		return &model.DispatchError{Channel: "telegram", Err: err}
	}

	t.logger.Info("notification sent",
		zap.String("kind", n.Kind),
		zap.String("token", n.Token),
		zap.String("tx", n.TxHash),
	)
	return nil
}

// Verify checks the bot credential by calling getMe. Used during startup;
// a failure here is fatal for the process.
func (t *Telegram) Verify(ctx context.Context) error {
	resp, err := t.post(ctx, "getMe", struct{}{})
	if err != nil {
		return fmt.Errorf("verify telegram credential: %w", err)
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(resp.Result, &me); err == nil && me.Username != "" {
		t.logger.Info("telegram bot verified", zap.String("username", me.Username))
	}
	return nil
}

func (t *Telegram) post(ctx context.Context, method string, payload interface{}) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(data, &api); err != nil {
		return nil, fmt.Errorf("parse %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s rejected (status %d): %s", method, resp.StatusCode, api.Description)
	}
	return &api, nil
}
