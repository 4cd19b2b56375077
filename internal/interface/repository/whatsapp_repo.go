package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/pkg/logger"
)

// WhatsappRepository sends messages through the WhatsApp Business Cloud API
type WhatsappRepository struct {
	logger        logger.Logger
	baseURL       string
	phoneNumberID string
	accessToken   string
	client        *http.Client
}

// NewWhatsappRepository creates a new WhatsApp repository for the given
// Graph API base URL and sender phone number id
func NewWhatsappRepository(baseURL, phoneNumberID, accessToken string, logger logger.Logger) *WhatsappRepository {
	return &WhatsappRepository{
		logger:        logger,
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

var _ repository.WhatsappRepository = (*WhatsappRepository)(nil)

// Configured reports whether credentials for the Cloud API are present
func (r *WhatsappRepository) Configured() bool {
	return r.phoneNumberID != "" && r.accessToken != ""
}

// SendTemplate sends a pre-approved template message and returns the
// message id
func (r *WhatsappRepository) SendTemplate(ctx context.Context, to string, template entity.MessageTemplate) (string, error) {
	msg := entity.SendTemplateMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         template,
	}
	return r.send(ctx, to, msg)
}

// SendText sends a free-form text message and returns the message id
func (r *WhatsappRepository) SendText(ctx context.Context, to, body string) (string, error) {
	msg := entity.SendTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             entity.TextMessage{Body: body},
	}
	return r.send(ctx, to, msg)
}

func (r *WhatsappRepository) send(ctx context.Context, to string, msg interface{}) (string, error) {
	if !r.Configured() {
		return "", fmt.Errorf("WhatsApp credentials not configured")
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", r.baseURL, r.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &errorBody) == nil && errorBody.Error.Message != "" {
			return "", fmt.Errorf("WhatsApp API returned status %d: %s (code %d)", resp.StatusCode, errorBody.Error.Message, errorBody.Error.Code)
		}
		return "", fmt.Errorf("WhatsApp API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var response entity.SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var messageID string
	if len(response.Messages) > 0 {
		messageID = response.Messages[0].ID
	}

	r.logger.Info("WhatsApp message sent", "to", to, "messageId", messageID)
	return messageID, nil
}
