package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the XTTS voice-cloning sidecar. The sidecar downloads the
// speaker sample itself and returns raw WAV bytes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Cloning a voice for a paragraph of text takes a while.
			Timeout: 120 * time.Second,
		},
	}
}

type synthesizeRequest struct {
	Text          string `json:"text"`
	SpeakerWavURL string `json:"speaker_wav_url"`
	Language      string `json:"language"`
}

func (c *Client) Synthesize(ctx context.Context, text, speakerSampleURL string) ([]byte, error) {
	reqBody := synthesizeRequest{
		Text:          text,
		SpeakerWavURL: speakerSampleURL,
		Language:      "en",
	}

	jsonBody, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/synthesize", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("voice API error: %s - %s", resp.Status, string(body))
	}

	return io.ReadAll(resp.Body)
}
