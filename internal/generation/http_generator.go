package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/nft-minting-service/internal/config"
)

// pngMagic is the fixed 8-byte PNG signature
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// HTTPGenerator calls a generative image API over HTTP. Any failure, from a
// transport error to a malformed payload, collapses into ErrGenerationFailed
// so the saga's abort path stays uniform.
type HTTPGenerator struct {
	baseURL   string
	apiKey    string
	model     string
	imageSize string
	client    *http.Client
	logger    *slog.Logger
}

// NewHTTPGenerator creates a generator backed by the configured provider.
// The client timeout doubles as the per-generation deadline.
func NewHTTPGenerator(logger *slog.Logger, cfg *config.GeneratorConfig) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		imageSize: cfg.ImageSize,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate renders artwork for the given style parameters and returns raw PNG
// bytes. Every failure mode wraps ErrGenerationFailed.
func (g *HTTPGenerator) Generate(ctx context.Context, params StyleParams) ([]byte, error) {
	payload := generationRequest{
		Model:  g.model,
		Prompt: buildPrompt(params),
		Size:   g.imageSize,
		N:      1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("Generation request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.Error("Generation provider returned non-200 status",
			"status_code", resp.StatusCode,
			"body", string(respBody),
		)
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrGenerationFailed, resp.StatusCode)
	}

	var genResp generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		g.logger.Error("Failed to decode generation response", "error", err)
		return nil, fmt.Errorf("%w: decoding response: %v", ErrGenerationFailed, err)
	}

	if len(genResp.Data) == 0 || genResp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: provider returned no image data", ErrGenerationFailed)
	}

	image, err := base64.StdEncoding.DecodeString(genResp.Data[0].B64JSON)
	if err != nil {
		g.logger.Error("Failed to decode image payload", "error", err)
		return nil, fmt.Errorf("%w: decoding image payload: %v", ErrGenerationFailed, err)
	}

	if !bytes.HasPrefix(image, pngMagic) {
		return nil, fmt.Errorf("%w: provider returned non-PNG payload", ErrGenerationFailed)
	}

	return image, nil
}

// buildPrompt flattens the style parameters into a single prompt string.
// Traits are sorted so the prompt is deterministic for a fixed input.
func buildPrompt(params StyleParams) string {
	var sb strings.Builder
	sb.WriteString(params.Concept)
	if params.Theme != "" {
		sb.WriteString(", in the style of ")
		sb.WriteString(params.Theme)
	}

	traits := make([]string, 0, len(params.Attributes))
	for trait := range params.Attributes {
		traits = append(traits, trait)
	}
	sort.Strings(traits)

	for _, trait := range traits {
		sb.WriteString(", ")
		sb.WriteString(trait)
		sb.WriteString(": ")
		sb.WriteString(params.Attributes[trait])
	}
	return sb.String()
}
