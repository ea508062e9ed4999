// Package genclient issues single-shot image requests to the Gemini API.
// Every request is validated, built with the full configuration the model
// supports, and sent through the resilience retry loop.
package genclient

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/resilience"
)

// MaxComposeImages is the most reference images one composition may use.
const MaxComposeImages = 14

// ResponseModalities requests interleaved text and image output.
var ResponseModalities = []string{"TEXT", "IMAGE"}

// Generator is the single-shot generation call. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps a Generator with validation and retries.
type Client struct {
	gen      Generator
	policy   resilience.Policy
	readFile func(string) ([]byte, error)
}

// New creates a client backed by the Gemini API.
func New(ctx context.Context, apiKey string, policy resilience.Policy) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, ErrClientInit.MsgErr(fmt.Sprintf("unable to create genai client: %v", err), err)
	}
	return NewWithGenerator(gc.Models, policy), nil
}

// NewWithGenerator creates a client around an existing Generator.
func NewWithGenerator(gen Generator, policy resilience.Policy) *Client {
	return &Client{gen: gen, policy: policy, readFile: os.ReadFile}
}

// Generator returns the underlying generation call, for use by chat channels.
func (c *Client) Generator() Generator {
	return c.gen
}

// Policy returns the retry policy applied to every call.
func (c *Client) Policy() resilience.Policy {
	return c.policy
}

// ImageRequest holds the options shared by all single-shot tools. Nil
// pointers select the defaults.
type ImageRequest struct {
	Prompt          string
	Model           string
	AspectRatio     *string
	Resolution      *string
	Seed            *int64
	SafetyThreshold *string
}

// GenerateImage creates an image from a text prompt.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*Result, error) {
	model, cfg, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, model.ID, textContents(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}
	return FromResponse(resp), nil
}

// EditImage applies a text instruction to the image at imagePath.
func (c *Client) EditImage(ctx context.Context, req ImageRequest, imagePath string) (*Result, error) {
	model, cfg, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	contents, err := c.imageContents(req.Prompt, []string{imagePath})
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, model.ID, contents, cfg)
	if err != nil {
		return nil, err
	}
	return FromResponse(resp), nil
}

// ComposeImages creates a new image from up to MaxComposeImages references.
func (c *Client) ComposeImages(ctx context.Context, req ImageRequest, imagePaths []string) (*Result, error) {
	model, cfg, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	if len(imagePaths) > MaxComposeImages {
		return nil, ErrTooManyImages.Msg(fmt.Sprintf("maximum %d images supported, got %d", MaxComposeImages, len(imagePaths)))
	}
	contents, err := c.imageContents(req.Prompt, imagePaths)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, model.ID, contents, cfg)
	if err != nil {
		return nil, err
	}
	return FromResponse(resp), nil
}

// SearchGroundedImage generates with Google Search grounding. It always uses
// the search-capable pro model, whatever req.Model says.
func (c *Client) SearchGroundedImage(ctx context.Context, req ImageRequest) (*Result, error) {
	req.Model = params.ModelPro
	model, cfg, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	cfg.Tools = SearchTools(model)
	resp, err := c.generate(ctx, model.ID, textContents(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}
	return FromResponse(resp), nil
}

// GenerateInterleaved returns every text and image part of the response, for
// prompts that ask for illustrated sequences.
func (c *Client) GenerateInterleaved(ctx context.Context, req ImageRequest) ([]Part, error) {
	model, cfg, err := buildConfig(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, model.ID, textContents(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}
	return AllParts(resp), nil
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	log.Ctx(ctx).Debug().Str("model", model).Int("contents", len(contents)).Msg("generate content")
	return resilience.WithRetry(ctx, c.policy, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return c.gen.GenerateContent(ctx, model, contents, cfg)
	})
}

func (c *Client) imageContents(prompt string, paths []string) ([]*genai.Content, error) {
	parts := []*genai.Part{{Text: prompt}}
	for _, p := range paths {
		data, err := c.readFile(p)
		if err != nil {
			return nil, ErrReadImage.MsgErr(fmt.Sprintf("unable to read input image %s: %v", p, err), err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: data, MIMEType: params.DetectMIMEType(p, data)},
		})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}, nil
}

func textContents(prompt string) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
}

// SearchTools returns the grounding tool list for model, or nil if the model
// cannot use search.
func SearchTools(model params.Model) []*genai.Tool {
	if !model.SupportsSearch {
		return nil
	}
	return []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
}

func buildConfig(req ImageRequest) (params.Model, *genai.GenerateContentConfig, error) {
	name := req.Model
	if name == "" {
		name = params.DefaultModel
	}
	model, err := params.ValidateModel(name)
	if err != nil {
		return params.Model{}, nil, err
	}
	aspectRatio, err := params.ValidateAspectRatio(req.AspectRatio)
	if err != nil {
		return params.Model{}, nil, err
	}
	resolution, err := params.ValidateResolution(req.Resolution)
	if err != nil {
		return params.Model{}, nil, err
	}
	seed, err := params.ValidateSeed(req.Seed)
	if err != nil {
		return params.Model{}, nil, err
	}
	threshold, err := params.ValidateSafetyThreshold(req.SafetyThreshold)
	if err != nil {
		return params.Model{}, nil, err
	}
	return model, &genai.GenerateContentConfig{
		ResponseModalities: ResponseModalities,
		ImageConfig:        params.ImageConfig(model, aspectRatio, resolution),
		SafetySettings:     params.SafetySettings(threshold),
		Seed:               seed,
	}, nil
}
