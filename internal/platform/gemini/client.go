package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"memory-companion/internal/assistant"
)

type Config struct {
	APIKey      string
	TextModel   string
	VisionModel string
}

// Client wraps the Gemini SDK for the assistant's text and vision calls.
// Construct once at startup; safe for concurrent reuse.
type Client struct {
	client      *genai.Client
	textModel   string
	visionModel string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	genClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:      genClient,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
	}, nil
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini text call: %w", err)
	}
	return firstText(res)
}

// GenerateVision sends the images in order (uploaded photo first, references
// after) followed by the prompt text, mirroring how the prompt numbers them.
func (c *Client) GenerateVision(ctx context.Context, prompt string, images []assistant.Image) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.visionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision call: %w", err)
	}
	return firstText(res)
}

func firstText(res *genai.GenerateContentResponse) (string, error) {
	// Safety filters can leave an empty candidate list.
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}
