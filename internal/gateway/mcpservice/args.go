package mcpservice

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/tansive/nanobanana/internal/common/schemavalidator"
	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/params"
)

// ImageArgs are the options shared by the single-shot tools.
type ImageArgs struct {
	Prompt          string   `mapstructure:"prompt" validate:"required,notBlank"`
	Model           *string  `mapstructure:"model"`
	AspectRatio     *string  `mapstructure:"aspect_ratio"`
	Resolution      *string  `mapstructure:"resolution"`
	OutputPath      string   `mapstructure:"output_path"`
	Seed            *float64 `mapstructure:"seed"`
	SafetyThreshold *string  `mapstructure:"safety_threshold"`
}

type editArgs struct {
	ImageArgs `mapstructure:",squash"`
	ImagePath string `mapstructure:"image_path" validate:"required,notBlank"`
}

type composeArgs struct {
	ImageArgs  `mapstructure:",squash"`
	ImagePaths []string `mapstructure:"image_paths" validate:"required,min=1,dive,required"`
}

type interleavedArgs struct {
	ImageArgs `mapstructure:",squash"`
	Prefix    string `mapstructure:"prefix" validate:"omitempty,noSpaces"`
}

type startChatArgs struct {
	InitialPrompt string   `mapstructure:"initial_prompt" validate:"required,notBlank"`
	Model         *string  `mapstructure:"model"`
	OutputPath    string   `mapstructure:"output_path"`
	Seed          *float64 `mapstructure:"seed"`
}

type continueChatArgs struct {
	SessionID   string  `mapstructure:"session_id" validate:"required"`
	Prompt      string  `mapstructure:"prompt" validate:"required,notBlank"`
	AspectRatio *string `mapstructure:"aspect_ratio"`
	Resolution  *string `mapstructure:"resolution"`
	OutputPath  string  `mapstructure:"output_path"`
}

type endChatArgs struct {
	SessionID string `mapstructure:"session_id" validate:"required"`
}

type validateDigestArgs struct {
	Document string `mapstructure:"document" validate:"required"`
}

// decodeArgs decodes loose tool arguments into out and validates it.
// Unknown keys are ignored and logged.
func decodeArgs(logger *zerolog.Logger, args map[string]any, out any) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   out,
		Metadata: &md,
		TagName:  "mapstructure",
	})
	if err != nil {
		return ErrMCPServiceError.MsgErr("unable to create argument decoder", err)
	}
	if err := dec.Decode(args); err != nil {
		return ErrInvalidArguments.Err(err)
	}
	if len(md.Unused) > 0 {
		logger.Debug().Strs("unused", md.Unused).Msg("ignoring unknown tool arguments")
	}
	if err := schemavalidator.V().Struct(out); err != nil {
		if ves := schemavalidator.ValidationErrors(err); len(ves) > 0 {
			return ErrInvalidArguments.Err(ves)
		}
		return ErrInvalidArguments.Err(err)
	}
	return nil
}

// seedValue converts a JSON number to a seed. Range checks are left to
// params.ValidateSeed.
func seedValue(f *float64) (*int64, error) {
	if f == nil {
		return nil, nil
	}
	v := *f
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return nil, params.ErrInvalidSeed.Msg(fmt.Sprintf("seed must be an integer, got %v", v))
	}
	switch {
	case v > params.MaxSeed:
		v = params.MaxSeed + 1
	case v < 0:
		v = -1
	}
	seed := int64(v)
	if _, err := params.ValidateSeed(&seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func withDefault(p *string, def string) *string {
	if p == nil || *p == "" {
		return &def
	}
	return p
}

// request builds the client request, filling unset options with the tool's
// defaults.
func (a *ImageArgs) request(defaultModel, defaultRatio, defaultResolution string) (genclient.ImageRequest, error) {
	seed, err := seedValue(a.Seed)
	if err != nil {
		return genclient.ImageRequest{}, err
	}
	return genclient.ImageRequest{
		Prompt:          a.Prompt,
		Model:           *withDefault(a.Model, defaultModel),
		AspectRatio:     withDefault(a.AspectRatio, defaultRatio),
		Resolution:      withDefault(a.Resolution, defaultResolution),
		Seed:            seed,
		SafetyThreshold: a.SafetyThreshold,
	}, nil
}
