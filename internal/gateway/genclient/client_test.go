package genclient

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// fakeGenerator returns errs in order, then resp.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []generateCall
	errs  []error
	resp  *genai.GenerateContentResponse
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	if len(f.calls) <= len(f.errs) {
		return nil, f.errs[len(f.calls)-1]
	}
	return f.resp, nil
}

func imageResponse(text string, img []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{Text: text},
					{InlineData: &genai.Blob{Data: img, MIMEType: "image/png"}},
				},
			},
		}},
	}
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{
		Enabled:      true,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
		Timeout:      5 * time.Second,
	}
}

func ptr[T any](v T) *T { return &v }

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", resilience.DefaultPolicy())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateImage(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse("a cat", []byte("img"))}
	c := NewWithGenerator(gen, fastPolicy())

	res, err := c.GenerateImage(context.Background(), ImageRequest{
		Prompt:          "draw a cat",
		Model:           "pro",
		AspectRatio:     ptr("16:9"),
		Resolution:      ptr("2K"),
		Seed:            ptr[int64](42),
		SafetyThreshold: ptr("block_high"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Text)
	assert.Equal(t, "a cat", *res.Text)
	assert.Equal(t, []byte("img"), res.ImageData)
	assert.Equal(t, "image/png", res.MIMEType)

	require.Len(t, gen.calls, 1)
	call := gen.calls[0]
	assert.Equal(t, params.ModelPro, call.model)
	assert.Equal(t, "draw a cat", call.contents[0].Parts[0].Text)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, call.config.ResponseModalities)
	assert.Equal(t, "16:9", call.config.ImageConfig.AspectRatio)
	assert.Equal(t, "2K", call.config.ImageConfig.ImageSize)
	require.NotNil(t, call.config.Seed)
	assert.EqualValues(t, 42, *call.config.Seed)
	assert.Len(t, call.config.SafetySettings, 4)
	assert.Nil(t, call.config.Tools)
}

func TestGenerateImageDefaults(t *testing.T) {
	gen := &fakeGenerator{resp: imageResponse("", []byte("img"))}
	c := NewWithGenerator(gen, fastPolicy())

	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", Model: "flash"})
	require.NoError(t, err)
	cfg := gen.calls[0].config
	assert.Equal(t, params.ModelFlash, gen.calls[0].model)
	assert.Equal(t, "1:1", cfg.ImageConfig.AspectRatio)
	assert.Empty(t, cfg.ImageConfig.ImageSize)
	assert.Nil(t, cfg.SafetySettings)
	assert.Nil(t, cfg.Seed)
}

func TestGenerateImageValidation(t *testing.T) {
	gen := &fakeGenerator{}
	c := NewWithGenerator(gen, fastPolicy())

	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", AspectRatio: ptr("2:1")})
	assert.ErrorIs(t, err, params.ErrInvalidAspectRatio)
	_, err = c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", Model: "dall-e"})
	assert.ErrorIs(t, err, params.ErrInvalidModel)
	_, err = c.GenerateImage(context.Background(), ImageRequest{Prompt: "p", Seed: ptr[int64](-5)})
	assert.ErrorIs(t, err, params.ErrInvalidSeed)
	assert.Empty(t, gen.calls)
}

func TestGenerateImageRetries(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		resp: imageResponse("ok", []byte("img")),
	}
	c := NewWithGenerator(gen, fastPolicy())
	res, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.True(t, res.HasImage())
	assert.Len(t, gen.calls, 2)
}

func TestGenerateImageTerminalError(t *testing.T) {
	want := genai.APIError{Code: http.StatusBadRequest, Message: "prompt blocked"}
	gen := &fakeGenerator{errs: []error{want}}
	c := NewWithGenerator(gen, fastPolicy())
	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "p"})
	assert.Equal(t, want, err)
	assert.Len(t, gen.calls, 1)
}

func TestEditImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.jpg")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	gen := &fakeGenerator{resp: imageResponse("edited", []byte("out"))}
	c := NewWithGenerator(gen, fastPolicy())
	_, err := c.EditImage(context.Background(), ImageRequest{Prompt: "make it blue"}, path)
	require.NoError(t, err)

	parts := gen.calls[0].contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "make it blue", parts[0].Text)
	assert.Equal(t, pngHeader, parts[1].InlineData.Data)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
}

func TestEditImageMissingFile(t *testing.T) {
	gen := &fakeGenerator{}
	c := NewWithGenerator(gen, fastPolicy())
	_, err := c.EditImage(context.Background(), ImageRequest{Prompt: "p"}, filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrReadImage)
	assert.Empty(t, gen.calls)
}

func TestComposeImages(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.png", "b.png", "c.webp"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("raw"), 0o600))
		paths = append(paths, p)
	}

	gen := &fakeGenerator{resp: imageResponse("", []byte("out"))}
	c := NewWithGenerator(gen, fastPolicy())
	_, err := c.ComposeImages(context.Background(), ImageRequest{Prompt: "combine", Resolution: ptr("2K")}, paths)
	require.NoError(t, err)
	parts := gen.calls[0].contents[0].Parts
	require.Len(t, parts, 4)
	assert.Equal(t, "image/webp", parts[3].InlineData.MIMEType)

	tooMany := make([]string, MaxComposeImages+1)
	_, err = c.ComposeImages(context.Background(), ImageRequest{Prompt: "combine"}, tooMany)
	assert.ErrorIs(t, err, ErrTooManyImages)
	assert.Contains(t, err.Error(), "maximum 14 images supported, got 15")
}

func TestSearchGroundedImage(t *testing.T) {
	resp := imageResponse("weather map", []byte("img"))
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{WebSearchQueries: []string{"weather today"}}
	gen := &fakeGenerator{resp: resp}
	c := NewWithGenerator(gen, fastPolicy())

	res, err := c.SearchGroundedImage(context.Background(), ImageRequest{Prompt: "today's weather", Model: "flash", AspectRatio: ptr("16:9")})
	require.NoError(t, err)
	require.NotNil(t, res.GroundingMetadata)
	assert.Equal(t, []string{"weather today"}, res.GroundingMetadata.WebSearchQueries)

	call := gen.calls[0]
	assert.Equal(t, params.ModelPro, call.model)
	require.Len(t, call.config.Tools, 1)
	assert.NotNil(t, call.config.Tools[0].GoogleSearch)
}

func TestGenerateInterleaved(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "step 1"},
				{InlineData: &genai.Blob{Data: []byte("one"), MIMEType: "image/png"}},
				{Text: "step 2"},
				{InlineData: &genai.Blob{Data: []byte("two"), MIMEType: "image/jpeg"}},
			}},
		}},
	}}
	c := NewWithGenerator(gen, fastPolicy())
	parts, err := c.GenerateInterleaved(context.Background(), ImageRequest{Prompt: "recipe"})
	require.NoError(t, err)
	require.Len(t, parts, 4)
	assert.Equal(t, PartText, parts[0].Kind)
	assert.Equal(t, "step 2", parts[2].Text)
	assert.Equal(t, PartImage, parts[3].Kind)
	assert.Equal(t, "image/jpeg", parts[3].MIMEType)
}
