package chatbotsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/chat"
)

const completionsPath = "/v1/chat/completions"

// httpService proxies prompts to an OpenAI-compatible chat completions API.
type httpService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  core.Logger
}

var _ chat.Service = (*httpService)(nil)

func NewHTTPService(conf *core.Config, logger core.Logger) *httpService {
	return &httpService{
		baseURL: conf.Chatbot.BaseURL,
		apiKey:  conf.Chatbot.ApiKey,
		model:   conf.Chatbot.Model,
		client:  &http.Client{Timeout: conf.Chatbot.Timeout},
		logger:  logger,
	}
}

type (
	completionMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	completionRequest struct {
		Model    string              `json:"model"`
		Messages []completionMessage `json:"messages"`
	}

	completionResponse struct {
		Choices []struct {
			Message completionMessage `json:"message"`
		} `json:"choices"`
	}
)

// Complete forwards the prompt upstream and relays the first reply.
// Upstream failures are logged and surfaced uniformly as chat.ErrUnavailable.
func (svc *httpService) Complete(ctx context.Context, prompt string) (string, error) {
	if svc.baseURL == "" {
		return "", chat.ErrUnavailable
	}

	payload, err := json.Marshal(completionRequest{
		Model:    svc.model,
		Messages: []completionMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshalling prompt")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	if svc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+svc.apiKey)
	}

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("chatbot upstream: %v", err), err)
		return "", chat.ErrUnavailable
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		svc.logger.Error(fmt.Sprintf("chatbot upstream - status: %d", res.StatusCode))
		return "", chat.ErrUnavailable
	}

	var cr completionResponse
	if err = json.NewDecoder(res.Body).Decode(&cr); err != nil {
		svc.logger.Error(fmt.Sprintf("chatbot upstream: decoding reply: %v", err), err)
		return "", chat.ErrUnavailable
	}
	if len(cr.Choices) == 0 {
		return "", chat.ErrUnavailable
	}
	return cr.Choices[0].Message.Content, nil
}
