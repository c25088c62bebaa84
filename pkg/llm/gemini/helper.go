package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"snaptour/pkg/llm"
	"snaptour/pkg/model"
)

// identifySchema constrains the identify response at the API boundary.
func identifySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_landmark": {Type: genai.TypeBoolean},
			"name":        {Type: genai.TypeString},
			"city":        {Type: genai.TypeString},
			"country":     {Type: genai.TypeString},
			"latitude":    {Type: genai.TypeNumber},
			"longitude":   {Type: genai.TypeNumber},
		},
		Required: []string{"is_landmark"},
	}
}

func getResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// firstInlineData returns the first binary payload in the response, if any.
func firstInlineData(resp *genai.GenerateContentResponse) []byte {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// extractSources collects well-formed web citations from grounding metadata.
func extractSources(resp *genai.GenerateContentResponse) []model.GroundingSource {
	if len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var raw []model.GroundingSource
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		raw = append(raw, model.GroundingSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return model.FilterSources(raw)
}

// logGroundingUsage logs whether the search tool was actually used.
func logGroundingUsage(op string, resp *genai.GenerateContentResponse) {
	if len(resp.Candidates) == 0 {
		return
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		slog.Warn("Gemini: Google Search tool configured but NOT used by model", "intent", op)
		return
	}

	query := ""
	if len(meta.WebSearchQueries) > 0 {
		query = meta.WebSearchQueries[0]
	}
	slog.Info("Gemini: Google Search used",
		"intent", op,
		"snippets", len(meta.GroundingChunks),
		"search_query", query)
}

// classify converts a raw backend error into the capability taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	// Already classified (e.g. validation inside this package)
	if ce, ok := llm.AsCapabilityError(err); ok {
		return ce
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := llm.ClassifyStatus(apiErr.Code)
		return llm.NewCapabilityError(kind, op, apiErr.Message, err)
	}

	// Fallback sniffing for transport-wrapped errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key not valid"), strings.Contains(msg, "api_key_invalid"), strings.Contains(msg, "permission_denied"):
		return llm.NewCapabilityError(llm.KindInvalidCredential, op, "credential rejected by backend", err)
	case strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "quota"):
		return llm.NewCapabilityError(llm.KindQuotaExhausted, op, "capability quota exhausted", err)
	default:
		return llm.NewCapabilityError(llm.KindTransient, op, "", err)
	}
}

// logPrompt appends a prompt/response pair to the history log.
func (c *Client) logPrompt(name, prompt, response string) {
	if c.logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return
	}

	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] PROMPT: %s\nPROMPT_TEXT:\n%s\n\nRESPONSE:\n%s\n%s\n",
		timestamp, name, prompt, llm.WordWrap(response, 80), strings.Repeat("-", 80))

	_, _ = f.WriteString(entry)
}

// validateModel checks if the configured model is available for the API key.
// Must be called with c.mu held.
func (c *Client) validateModel(ctx context.Context) error {
	name := c.modelName
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	// Try to get the specific model (1 API call)
	_, err := c.genaiClient.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Gemini model validation success", "model", c.modelName)
		return nil
	}

	slog.Warn("Gemini model validation failed, fetching available models...", "model", c.modelName, "error", err)

	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	if listErr != nil {
		slog.Warn("Failed to list models for recovery", "error", listErr)
		return nil // Proceed anyway
	}

	var availableModels []string
	for {
		resp, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(resp.Name), "gemini") {
			availableModels = append(availableModels, resp.Name)
		}
	}

	slog.Error("Configured model not found", "configured", c.modelName)
	for _, m := range availableModels {
		slog.Error("Available model: " + m)
	}

	return nil // Proceed anyway (lazy validation on generation)
}
