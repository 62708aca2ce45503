package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/itsnaaur/OpenLine/internal/models"
)

// defaultModels is the fallback order of Gemini model names. Different API
// tiers expose different names; a 404 on one just means try the next.
var defaultModels = []string{
	"gemini-2.5-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// GeminiClassifier calls the Gemini generateContent REST endpoint.
type GeminiClassifier struct {
	baseURL string
	apiKey  string
	models  []string
	client  *http.Client
	log     zerolog.Logger
}

func NewGeminiClassifier(baseURL, apiKey string, log zerolog.Logger) *GeminiClassifier {
	return &GeminiClassifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		models:  defaultModels,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClassifier) Check(ctx context.Context, description string, category models.Category, urgency models.Urgency) (*models.Advisory, error) {
	prompt := buildPrompt(description, category, urgency)

	for _, model := range g.models {
		text, err := g.generate(ctx, model, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.log.Warn().Err(err).Str("model", model).Msg("advisory model call failed")
			continue
		}

		raw, ok := extractJSON(text)
		if !ok {
			g.log.Warn().Str("model", model).Msg("advisory reply had no JSON object")
			continue
		}
		var w wireResult
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			g.log.Warn().Err(err).Str("model", model).Msg("advisory reply not valid JSON")
			continue
		}
		adv, err := toAdvisory(w, category, urgency)
		if err != nil {
			g.log.Warn().Err(err).Str("model", model).Msg("advisory reply failed validation")
			continue
		}
		return adv, nil
	}
	return nil, ErrUnavailable
}

func (g *GeminiClassifier) generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("gemini %s: status %d: %s", model, resp.StatusCode, bytes.TrimSpace(b))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini %s: empty response", model)
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}
