// Package gemini implements llm.Provider against the Google Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"snaptour/pkg/config"
	"snaptour/pkg/llm"
	"snaptour/pkg/model"
	"snaptour/pkg/prompt"
	"snaptour/pkg/tracker"
)

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	modelName   string
	profiles    map[string]string // Map intent -> modelName
	voice       string
	tracker     *tracker.Tracker
	logPath     string

	mu sync.RWMutex
}

// NewClient creates a new Gemini client. The key may be empty at startup;
// the user supplies one through the UI before the first capability call.
func NewClient(cfg config.LLMConfig, voice, logPath string, t *tracker.Tracker) (*Client, error) {
	c := &Client{tracker: t, logPath: logPath, voice: voice}
	if err := c.Configure(cfg.Key, cfg.Model, cfg.Profiles); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings. Called again whenever the
// user enters a new credential.
func (c *Client) Configure(key, modelName string, profiles map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = key
	c.modelName = modelName
	c.profiles = profiles

	if c.modelName == "" {
		c.modelName = "gemini-2.5-flash"
	}

	if c.apiKey == "" {
		// Can't initialize without key.
		c.genaiClient = nil
		return nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client

	// Validate model availability. We do NOT fail here, to allow startup even
	// if the API is flaky or rate-limited; a truly bad key surfaces on the
	// first capability call.
	if err := c.validateModel(context.Background()); err != nil {
		slog.Warn("Gemini model validation failed (proceeding anyway)", "error", err)
	}

	return nil
}

// ClearCredential drops the stored key and the backing client. Called when
// the backend rejects the credential.
func (c *Client) ClearCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = ""
	c.genaiClient = nil
}

// Configured reports whether a credential is currently set.
func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genaiClient != nil
}

// Close cleans up resources.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genaiClient = nil
}

func (c *Client) client(op string) (*genai.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.genaiClient == nil {
		return nil, llm.NewCapabilityError(llm.KindInvalidCredential, op, "no credential configured", nil)
	}
	return c.genaiClient, nil
}

// resolveModel returns the model for an intent, falling back to the default.
func (c *Client) resolveModel(intent string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.profiles[intent]; ok && m != "" {
		return m
	}
	return c.modelName
}

// identifyResponse is the schema-constrained shape of the identify call.
type identifyResponse struct {
	IsLandmark bool    `json:"is_landmark"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Identify recognizes the landmark in an image.
func (c *Client) Identify(ctx context.Context, image []byte, mime string) (*model.LandmarkInfo, error) {
	const op = "identify"
	client, err := c.client(op)
	if err != nil {
		return nil, err
	}

	p := prompt.Identify()
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: p},
			{InlineData: &genai.Blob{MIMEType: mime, Data: image}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   identifySchema(),
	}

	resp, err := client.Models.GenerateContent(ctx, c.resolveModel(op), contents, cfg)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("ERROR: %v", err))
		return nil, c.fail(op, err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("TEXT_PARSE_ERROR: %v", err))
		return nil, c.fail(op, err)
	}
	c.logPrompt(op, p, text)

	var ir identifyResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(text)), &ir); err != nil {
		c.trackFailure()
		return nil, llm.NewCapabilityError(llm.KindTransient, op, "malformed identify response", err)
	}

	info, err := ir.toLandmarkInfo()
	if err != nil {
		c.trackFailure()
		return nil, err
	}

	c.trackSuccess()
	return info, nil
}

// toLandmarkInfo validates the raw response. A negative flag or any missing
// required field classifies as NotALandmark.
func (ir identifyResponse) toLandmarkInfo() (*model.LandmarkInfo, error) {
	const op = "identify"
	if !ir.IsLandmark {
		return nil, llm.NewCapabilityError(llm.KindNotALandmark, op, "no landmark recognized in photo", nil)
	}
	if ir.Name == "" || ir.City == "" || ir.Country == "" {
		return nil, llm.NewCapabilityError(llm.KindNotALandmark, op, "identification incomplete", nil)
	}
	return &model.LandmarkInfo{
		Name:      ir.Name,
		City:      ir.City,
		Country:   ir.Country,
		Latitude:  ir.Latitude,
		Longitude: ir.Longitude,
	}, nil
}

// Narrate returns a web-grounded history for a landmark.
func (c *Client) Narrate(ctx context.Context, landmarkName, audienceLevel string) (string, []model.GroundingSource, error) {
	const op = "narrate"
	client, err := c.client(op)
	if err != nil {
		return "", nil, err
	}

	p := prompt.Narrate(landmarkName, audienceLevel)
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := client.Models.GenerateContent(ctx, c.resolveModel(op), genai.Text(p), cfg)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("ERROR: %v", err))
		return "", nil, c.fail(op, err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("TEXT_PARSE_ERROR: %v", err))
		return "", nil, c.fail(op, err)
	}
	c.logPrompt(op, p, text)

	sources := extractSources(resp)
	logGroundingUsage(op, resp)

	c.trackSuccess()
	return llm.SanitizeMarkup(text), sources, nil
}

// Speak synthesizes speech and returns a base64-encoded PCM payload.
func (c *Client) Speak(ctx context.Context, text string) (string, error) {
	const op = "speak"
	client, err := c.client(op)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, c.resolveModel(op), genai.Text(text), cfg)
	if err != nil {
		c.logPrompt(op, text, fmt.Sprintf("ERROR: %v", err))
		return "", c.fail(op, err)
	}

	data := firstInlineData(resp)
	if len(data) == 0 {
		c.trackFailure()
		c.logPrompt(op, text, "NO_AUDIO")
		return "", llm.NewCapabilityError(llm.KindNoAudioProduced, op, "backend returned no audio data", nil)
	}

	c.logPrompt(op, text, fmt.Sprintf("AUDIO: %d bytes", len(data)))
	c.trackSuccess()
	return base64.StdEncoding.EncodeToString(data), nil
}

// Answer responds to a chat question about a landmark.
func (c *Client) Answer(ctx context.Context, landmarkName, knownHistory, question, audienceLevel string) (string, error) {
	return c.generateText(ctx, "chat", prompt.Answer(landmarkName, knownHistory, question, audienceLevel))
}

// FunFact returns a single surprising fact about a landmark.
func (c *Client) FunFact(ctx context.Context, landmarkName, audienceLevel string) (string, error) {
	return c.generateText(ctx, "funfact", prompt.FunFact(landmarkName, audienceLevel))
}

// EmojiTag returns a single decorative emoji for a landmark.
func (c *Client) EmojiTag(ctx context.Context, landmarkName string) (string, error) {
	return c.generateText(ctx, "emoji", prompt.EmojiTag(landmarkName))
}

// Illustrate restyles the original photo and returns the image bytes.
func (c *Client) Illustrate(ctx context.Context, image []byte, mime, stylePrompt string) ([]byte, error) {
	const op = "illustrate"
	client, err := c.client(op)
	if err != nil {
		return nil, err
	}

	p := prompt.Illustrate(stylePrompt)
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mime, Data: image}},
			{Text: p},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := client.Models.GenerateContent(ctx, c.resolveModel(op), contents, cfg)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("ERROR: %v", err))
		return nil, c.fail(op, err)
	}

	data := firstInlineData(resp)
	if len(data) == 0 {
		c.trackFailure()
		c.logPrompt(op, p, "NO_IMAGE")
		return nil, llm.NewCapabilityError(llm.KindNoImageProduced, op, "backend returned no image data", nil)
	}

	c.logPrompt(op, p, fmt.Sprintf("IMAGE: %d bytes", len(data)))
	c.trackSuccess()
	return data, nil
}

// generateText is the shared path for plain text capabilities.
func (c *Client) generateText(ctx context.Context, op, p string) (string, error) {
	client, err := c.client(op)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.resolveModel(op), genai.Text(p), nil)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("ERROR: %v", err))
		return "", c.fail(op, err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		c.logPrompt(op, p, fmt.Sprintf("TEXT_PARSE_ERROR: %v", err))
		return "", c.fail(op, err)
	}

	c.logPrompt(op, p, text)
	c.trackSuccess()
	return llm.SanitizeMarkup(text), nil
}

// fail tracks the failure and converts a raw backend error into a classified
// CapabilityError.
func (c *Client) fail(op string, err error) error {
	c.trackFailure()
	return classify(op, err)
}

func (c *Client) trackSuccess() {
	if c.tracker != nil {
		c.tracker.TrackAPISuccess("gemini")
	}
}

func (c *Client) trackFailure() {
	if c.tracker != nil {
		c.tracker.TrackAPIFailure("gemini")
	}
}
