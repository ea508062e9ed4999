// Package params holds the value domains accepted by the image tools and the
// helpers that turn validated values into genai request configuration.
// Validators return the value to use (applying defaults for nil inputs) and
// an error whose message lists the accepted values.
package params

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"google.golang.org/genai"
)

var ValidAspectRatios = []string{
	"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9",
}

var ValidResolutions = []string{"1K", "2K", "4K"}

const (
	DefaultAspectRatio = "1:1"
	DefaultResolution  = "1K"

	// MaxSeed is the largest seed the API accepts (2^31 - 1).
	MaxSeed = 2147483647
)

// ValidateAspectRatio returns ratio, or the default when ratio is nil.
func ValidateAspectRatio(ratio *string) (string, error) {
	if ratio == nil {
		return DefaultAspectRatio, nil
	}
	if !slices.Contains(ValidAspectRatios, *ratio) {
		return "", ErrInvalidAspectRatio.Msg(fmt.Sprintf("invalid aspect ratio: %s. Must be one of: %s",
			*ratio, strings.Join(ValidAspectRatios, ", ")))
	}
	return *ratio, nil
}

// ValidateResolution returns resolution, or the default when resolution is nil.
// Whether the model honors the value is decided by ImageConfig.
func ValidateResolution(resolution *string) (string, error) {
	if resolution == nil {
		return DefaultResolution, nil
	}
	if !slices.Contains(ValidResolutions, *resolution) {
		return "", ErrInvalidResolution.Msg(fmt.Sprintf("invalid resolution: %s. Must be one of: %s",
			*resolution, strings.Join(ValidResolutions, ", ")))
	}
	return *resolution, nil
}

// ValidateSeed accepts nil or an integer in [0, MaxSeed].
func ValidateSeed(seed *int64) (*int32, error) {
	if seed == nil {
		return nil, nil
	}
	if *seed < 0 {
		return nil, ErrInvalidSeed.Msg("seed must be non-negative")
	}
	if *seed > MaxSeed {
		return nil, ErrInvalidSeed.Msg(fmt.Sprintf("seed must not exceed %d", MaxSeed))
	}
	v := int32(*seed)
	return &v, nil
}

var safetyThresholds = map[string]genai.HarmBlockThreshold{
	"block_none":   genai.HarmBlockThresholdBlockNone,
	"block_low":    genai.HarmBlockThresholdBlockLowAndAbove,
	"block_medium": genai.HarmBlockThresholdBlockMediumAndAbove,
	"block_high":   genai.HarmBlockThresholdBlockOnlyHigh,
}

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// SafetyThresholdNames lists the accepted threshold names in a stable order.
func SafetyThresholdNames() []string {
	names := make([]string, 0, len(safetyThresholds))
	for name := range safetyThresholds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateSafetyThreshold maps a threshold name to the API value. A nil
// threshold leaves the API default in place and returns "".
func ValidateSafetyThreshold(threshold *string) (genai.HarmBlockThreshold, error) {
	if threshold == nil {
		return "", nil
	}
	t, ok := safetyThresholds[*threshold]
	if !ok {
		return "", ErrInvalidSafetyThreshold.Msg(fmt.Sprintf("invalid safety threshold: %s. Must be one of: %s",
			*threshold, strings.Join(SafetyThresholdNames(), ", ")))
	}
	return t, nil
}

// SafetySettings applies threshold to every harm category. It returns nil
// for an empty threshold so the API defaults apply.
func SafetySettings(threshold genai.HarmBlockThreshold) []*genai.SafetySetting {
	if threshold == "" {
		return nil
	}
	settings := make([]*genai.SafetySetting, 0, len(harmCategories))
	for _, c := range harmCategories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: threshold})
	}
	return settings
}

// ImageConfig builds the image sizing block for model. Models without
// resolution control get no ImageSize.
func ImageConfig(model Model, aspectRatio, resolution string) *genai.ImageConfig {
	cfg := &genai.ImageConfig{AspectRatio: aspectRatio}
	if model.SupportsImageSize {
		cfg.ImageSize = resolution
	}
	return cfg
}

// fold normalizes case for alias lookups. Casers are stateful, so one is
// created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
