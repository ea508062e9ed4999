package params

import (
	"fmt"
	"strings"
)

// Model describes an image model and the request features it accepts.
type Model struct {
	ID                string
	SupportsImageSize bool // honors ImageConfig.ImageSize
	SupportsSearch    bool // accepts the Google Search grounding tool
}

const (
	ModelPro   = "gemini-3-pro-image-preview"
	ModelFlash = "gemini-2.5-flash-image"

	DefaultModel = ModelPro
)

var models = map[string]Model{
	ModelPro:   {ID: ModelPro, SupportsImageSize: true, SupportsSearch: true},
	ModelFlash: {ID: ModelFlash},
}

// modelAliases are matched case-insensitively.
var modelAliases = map[string]string{
	"pro":             ModelPro,
	"nano-banana-pro": ModelPro,
	"flash":           ModelFlash,
	"nano-banana":     ModelFlash,
}

// ValidModels lists the accepted full model ids.
var ValidModels = []string{ModelPro, ModelFlash}

// ValidateModel resolves an alias or full model id. Aliases are matched
// without regard to case; full ids must match exactly.
func ValidateModel(name string) (Model, error) {
	if id, ok := modelAliases[fold(name)]; ok {
		return models[id], nil
	}
	if m, ok := models[name]; ok {
		return m, nil
	}
	return Model{}, ErrInvalidModel.Msg(fmt.Sprintf("invalid model: %s. Must be one of: %s or aliases: %s",
		name, strings.Join(ValidModels, ", "), strings.Join(aliasNames(), ", ")))
}

// LookupModel returns the capabilities of an already validated model id.
func LookupModel(id string) (Model, bool) {
	m, ok := models[id]
	return m, ok
}

func aliasNames() []string {
	return []string{"pro", "nano-banana-pro", "flash", "nano-banana"}
}
