package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wrapstudio/internal/infra"
)

type QwenOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Watermark  bool
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// QwenClient edits the trailer reference render through DashScope's
// qwen-image-edit model.
type QwenClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
	watermark  bool
	logger     *infra.Logger
}

func NewQwenClient(opts QwenOptions) *QwenClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "qwen-image-edit"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &QwenClient{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      model,
		watermark:  opts.Watermark,
		logger:     logger,
	}
}

type qwenContent struct {
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

type qwenMessage struct {
	Role    string        `json:"role"`
	Content []qwenContent `json:"content"`
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []qwenMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		NegativePrompt string `json:"negative_prompt,omitempty"`
		Watermark      bool   `json:"watermark"`
	} `json:"parameters"`
}

type qwenResp struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []map[string]string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// HasCredentials reports whether the client can perform remote calls.
func (c *QwenClient) HasCredentials() bool {
	return c != nil && c.token != ""
}

func (c *QwenClient) String() string {
	return "qwen:" + c.model
}

// Generate edits the reference image once and downloads the result.
func (c *QwenClient) Generate(ctx context.Context, req Request) (Image, error) {
	if c == nil {
		return Image{}, errors.New("qwen client not configured")
	}
	if c.token == "" {
		return Image{}, ErrMissingAPIKey
	}
	source := strings.TrimSpace(firstNonEmpty(req.ReferenceImageURL, req.FallbackImageURL))
	if source == "" {
		return Image{}, errors.New("qwen: reference image url required")
	}

	var payload qwenRequest
	payload.Model = c.model
	content := []qwenContent{{Image: source}}
	if req.Logo != nil && len(req.Logo.Data) > 0 {
		content = append(content, qwenContent{
			Image: "data:" + normalizeFormat(req.Logo.MIMEType) + ";base64," + base64.StdEncoding.EncodeToString(req.Logo.Data),
		})
	}
	content = append(content, qwenContent{Text: req.Prompt})
	payload.Input.Messages = []qwenMessage{{Role: "user", Content: content}}
	payload.Parameters.Watermark = c.watermark

	body, err := json.Marshal(payload)
	if err != nil {
		return Image{}, fmt.Errorf("qwen: encode request: %w", err)
	}
	endpoint := c.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Image{}, fmt.Errorf("qwen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Image{}, fmt.Errorf("qwen: http request: %w", err)
	}
	defer resp.Body.Close()

	var out qwenResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return Image{}, fmt.Errorf("qwen: http %d", resp.StatusCode)
		}
		return Image{}, fmt.Errorf("qwen: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return Image{}, fmt.Errorf("qwen error: %s (%s)", out.Message, out.Code)
		}
		return Image{}, fmt.Errorf("qwen: http %d", resp.StatusCode)
	}
	if out.Code != "" {
		return Image{}, fmt.Errorf("qwen error: %s (%s)", out.Message, out.Code)
	}

	imageURL := firstImageURL(out)
	if imageURL == "" {
		c.logger.Warn().Str("request_id", out.RequestID).Msg("qwen: response carried no image url")
		return Image{}, nil
	}
	data, mime, err := fetch(ctx, c.httpClient, imageURL)
	if err != nil {
		return Image{}, fmt.Errorf("qwen: %w", err)
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", out.RequestID).
		Str("url", imageURL).
		Msg("qwen: generated image")
	return Image{Data: data, MIMEType: normalizeFormat(mime)}, nil
}

func firstImageURL(resp qwenResp) string {
	for _, choice := range resp.Output.Choices {
		for _, content := range choice.Message.Content {
			if url := strings.TrimSpace(content["image"]); url != "" {
				return url
			}
		}
	}
	return ""
}

var (
	_ Generator    = (*QwenClient)(nil)
	_ Credentialed = (*QwenClient)(nil)
)
