package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yellowpin/yellowpin-backend/internal/logger"
)

// Client is the external bot-and-knowledge-search service. GenerateReply runs
// a similarity search over the bot's indexed knowledge and a language
// generation call; both are opaque to this backend.
type Client interface {
	GenerateReply(ctx context.Context, botID uuid.UUID, question string, conversationID string) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("ASSIST_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing ASSIST_BASE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	apiKey := strings.TrimSpace(os.Getenv("ASSIST_API_KEY"))

	return &client{
		log:     log.With("client", "AssistClient"),
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxRetries: 2,
	}, nil
}

// NewUnavailableClient is the stand-in used when no assist service is
// configured. Every call fails, which callers degrade from.
func NewUnavailableClient(log *logger.Logger) Client {
	return unavailableClient{log: log.With("client", "AssistClient")}
}

type unavailableClient struct {
	log *logger.Logger
}

func (c unavailableClient) GenerateReply(ctx context.Context, botID uuid.UUID, question string, conversationID string) (string, error) {
	return "", fmt.Errorf("assist service not configured")
}

type replyRequest struct {
	BotID          string `json:"bot_id"`
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
}

type replyResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (c *client) GenerateReply(ctx context.Context, botID uuid.UUID, question string, conversationID string) (string, error) {
	payload, err := json.Marshal(replyRequest{
		BotID:          botID.String(),
		Question:       question,
		ConversationID: conversationID,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/replies", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("assist service returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("assist service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var out replyResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("decode assist reply: %w", err)
		}
		if out.Error != "" {
			return "", fmt.Errorf("assist service error: %s", out.Error)
		}
		return out.Text, nil
	}
	return "", lastErr
}
