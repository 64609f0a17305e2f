package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wrapstudio/internal/infra"
)

// ErrMissingAPIKey indicates that a remote client was configured without credentials.
var ErrMissingAPIKey = errors.New("imagegen: api key is required")

// GeminiOptions controls how the Gemini client is configured.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// GeminiClient sends the composed prompt, the trailer reference image and the
// optional logo to a Gemini image model and returns the first image part.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewGeminiClient constructs a Gemini client with sane defaults. Callers may
// provide a nil HTTP client; one with a generous timeout is created.
func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	return &GeminiClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured Gemini model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *GeminiClient) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

func (c *GeminiClient) String() string {
	return "gemini:" + c.model
}

// Generate performs one generateContent call.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (Image, error) {
	if !c.HasCredentials() {
		return Image{}, ErrMissingAPIKey
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	parts := []geminiPart{{Text: req.Prompt}}
	if ref := c.referencePart(ctx, req); ref != nil {
		parts = append(parts, *ref)
	}
	if req.Logo != nil && len(req.Logo.Data) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: normalizeFormat(req.Logo.MIMEType),
			Data:     base64.StdEncoding.EncodeToString(req.Logo.Data),
		}})
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response); err != nil {
		return Image{}, err
	}
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return Image{}, fmt.Errorf("gemini blocked the prompt: %s", response.PromptFeedback.BlockReason)
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			img, err := c.decodePart(ctx, part)
			if err != nil {
				c.logger.Debug().Err(err).Str("request_id", req.RequestID).Msg("gemini: skipping undecodable part")
				continue
			}
			if img.IsEmpty() {
				continue
			}
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.model).
				Int("bytes", len(img.Data)).
				Msg("gemini: generated image")
			return img, nil
		}
	}

	c.logger.Warn().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Int("candidates", len(response.Candidates)).
		Msg("gemini: response carried no image part")
	return Image{}, nil
}

// referencePart inlines the reference render, trying the fallback image when
// the official one cannot be fetched. When neither loads the prompt still
// names both URLs, so the call proceeds text-only.
func (c *GeminiClient) referencePart(ctx context.Context, req Request) *geminiPart {
	for _, candidate := range []string{req.ReferenceImageURL, req.FallbackImageURL} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		data, mime, err := c.download(ctx, candidate)
		if err != nil {
			c.logger.Warn().Err(err).Str("url", candidate).Msg("gemini: reference image unavailable")
			continue
		}
		return &geminiPart{InlineData: &geminiInlineData{
			MimeType: normalizeFormat(mime),
			Data:     base64.StdEncoding.EncodeToString(data),
		}}
	}
	return nil
}

func (c *GeminiClient) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *GeminiClient) decodePart(ctx context.Context, part geminiPart) (Image, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return Image{}, fmt.Errorf("decode inline data: %w", err)
		}
		return Image{Data: data, MIMEType: normalizeFormat(part.InlineData.MimeType)}, nil
	}

	if part.FileData != nil && part.FileData.FileURI != "" {
		data, mime, err := c.download(ctx, c.resolveFileURI(part.FileData.FileURI))
		if err != nil {
			return Image{}, err
		}
		return Image{Data: data, MIMEType: normalizeFormat(firstNonEmpty(part.FileData.MimeType, mime))}, nil
	}

	return Image{}, nil
}

func (c *GeminiClient) resolveFileURI(uri string) string {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	target := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(uri, "/")
	if parsed, err := url.Parse(target); err == nil {
		q := parsed.Query()
		q.Set("key", c.apiKey)
		parsed.RawQuery = q.Encode()
		return parsed.String()
	}
	return target
}

func (c *GeminiClient) download(ctx context.Context, target string) ([]byte, string, error) {
	return fetch(ctx, c.httpClient, target)
}

// fetch downloads a remote image and returns its bytes and content type.
func fetch(ctx context.Context, client *http.Client, target string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil || parsed.Scheme == "" {
		return nil, "", fmt.Errorf("invalid image url: %s", target)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("download status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

var (
	_ Generator    = (*GeminiClient)(nil)
	_ Credentialed = (*GeminiClient)(nil)
)
