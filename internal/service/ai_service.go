package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learning_system_backend/internal/config"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	ProviderStub   = "stub"
	ProviderOpenAI = "openai"

	stubMessageLimit = 300
	systemPrompt     = "You are a concise educational assistant."
)

// AIService answers student questions through an OpenAI compatible endpoint, or a
// deterministic stub when no API key is configured. Settings can be swapped at runtime.
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	s := &AIService{}
	s.Update(cfg)
	return s
}

// Update replaces the provider settings; in-flight requests keep the old ones.
func (s *AIService) Update(cfg config.AIConfig) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: timeout}
}

func (s *AIService) settings() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StubReply is what the assistant answers when no provider is configured.
func StubReply(message string, syllabusContext []string) string {
	var b strings.Builder
	b.WriteString("[AI stub] ")
	if len(syllabusContext) > 0 {
		fmt.Fprintf(&b, "Context: %s. ", strings.Join(syllabusContext, " | "))
	}
	if r := []rune(message); len(r) > stubMessageLimit {
		message = string(r[:stubMessageLimit])
	}
	b.WriteString("Answering briefly: ")
	b.WriteString(message)
	return b.String()
}

// Ask returns the reply and the provider that produced it.
func (s *AIService) Ask(ctx context.Context, message string, syllabusContext []string) (string, string, error) {
	cfg, client := s.settings()
	if cfg.APIKey == "" {
		return StubReply(message, syllabusContext), ProviderStub, nil
	}

	system := systemPrompt
	if len(syllabusContext) > 0 {
		system += "\nCurrent syllabus topics: " + strings.Join(syllabusContext, ", ")
	}

	jsonData, err := json.Marshal(ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return "", "", err
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", err
	}
	if result.Error != nil {
		return "", "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", "", fmt.Errorf("AI returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), ProviderOpenAI, nil
}
