package mcpservice

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/params"
)

// Tool names.
const (
	ToolGenerateImage       = "generate_image"
	ToolEditImage           = "edit_image"
	ToolComposeImages       = "compose_images"
	ToolSearchGroundedImage = "search_grounded_image"
	ToolGenerateInterleaved = "generate_interleaved"
	ToolStartImageChat      = "start_image_chat"
	ToolContinueImageChat   = "continue_image_chat"
	ToolEndImageChat        = "end_image_chat"
	ToolListChatSessions    = "list_chat_sessions"
	ToolValidateDigest      = "validate_digest"
)

var (
	aspectRatioList = strings.Join(params.ValidAspectRatios, ", ")
	resolutionList  = strings.Join(params.ValidResolutions, ", ")
)

func promptOpt(desc string) mcp.ToolOption {
	return mcp.WithString("prompt", mcp.Required(), mcp.Description(desc))
}

func modelOpt(def string) mcp.ToolOption {
	return mcp.WithString("model",
		mcp.Description(fmt.Sprintf(`Model to use: "pro", "nano-banana-pro", "flash", "nano-banana", or a full model name (default %s)`, def)))
}

func aspectRatioOpt(def string) mcp.ToolOption {
	desc := "Output aspect ratio, one of " + aspectRatioList
	if def != "" {
		desc += " (default " + def + ")"
	}
	return mcp.WithString("aspect_ratio", mcp.Description(desc), mcp.Enum(params.ValidAspectRatios...))
}

func resolutionOpt(def string) mcp.ToolOption {
	desc := "Output resolution, one of " + resolutionList + "; ignored by models without size control"
	if def != "" {
		desc += " (default " + def + ")"
	}
	return mcp.WithString("resolution", mcp.Description(desc), mcp.Enum(params.ValidResolutions...))
}

func outputPathOpt() mcp.ToolOption {
	return mcp.WithString("output_path",
		mcp.Description("Path to save the image (default: <output_dir>/image_TIMESTAMP.png)"))
}

func seedOpt(desc string) mcp.ToolOption {
	return mcp.WithNumber("seed", mcp.Description(desc), mcp.Min(0), mcp.Max(params.MaxSeed))
}

func safetyOpt() mcp.ToolOption {
	return mcp.WithString("safety_threshold",
		mcp.Description("Safety filter threshold, one of "+strings.Join(params.SafetyThresholdNames(), ", ")),
		mcp.Enum(params.SafetyThresholdNames()...))
}

// toolDefinitions returns the tool schemas announced to clients.
func toolDefinitions(defaultModel string) []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolGenerateImage,
			mcp.WithDescription("Generate an image from a text prompt."),
			promptOpt("Text description of the image to generate"),
			modelOpt(defaultModel),
			aspectRatioOpt("1:1"),
			resolutionOpt("1K"),
			outputPathOpt(),
			seedOpt("Optional seed for reproducible generation (0 to 2147483647)"),
			safetyOpt(),
		),
		mcp.NewTool(ToolEditImage,
			mcp.WithDescription("Edit an existing image using a text prompt."),
			promptOpt("Instructions for editing the image"),
			mcp.WithString("image_path", mcp.Required(), mcp.Description("Path to the input image file")),
			modelOpt(defaultModel),
			aspectRatioOpt("1:1"),
			resolutionOpt("1K"),
			outputPathOpt(),
			seedOpt("Optional seed for reproducible generation"),
			safetyOpt(),
		),
		mcp.NewTool(ToolComposeImages,
			mcp.WithDescription(fmt.Sprintf("Compose a new image from multiple reference images (max %d).", genclient.MaxComposeImages)),
			promptOpt("Instructions for composing the images"),
			mcp.WithArray("image_paths", mcp.Required(),
				mcp.Description(fmt.Sprintf("List of paths to input images (max %d)", genclient.MaxComposeImages)),
				mcp.Items(map[string]any{"type": "string"})),
			modelOpt(defaultModel),
			aspectRatioOpt("1:1"),
			resolutionOpt("2K"),
			outputPathOpt(),
			seedOpt("Optional seed for reproducible generation"),
			safetyOpt(),
		),
		mcp.NewTool(ToolSearchGroundedImage,
			mcp.WithDescription("Generate an image grounded with Google Search data (pro model only)."),
			promptOpt("Description incorporating real-time data needs"),
			aspectRatioOpt("16:9"),
			resolutionOpt("2K"),
			outputPathOpt(),
			seedOpt("Optional seed for reproducible generation"),
			safetyOpt(),
		),
		mcp.NewTool(ToolGenerateInterleaved,
			mcp.WithDescription("Generate interleaved text and images, such as an illustrated step-by-step sequence. Every image is saved."),
			promptOpt("Description of the sequence to generate"),
			modelOpt(defaultModel),
			aspectRatioOpt("1:1"),
			resolutionOpt("1K"),
			mcp.WithString("prefix", mcp.Description("File name prefix for saved images (default image)")),
			seedOpt("Optional seed for reproducible generation"),
			safetyOpt(),
		),
		mcp.NewTool(ToolStartImageChat,
			mcp.WithDescription("Start a new multi-turn image editing session."),
			mcp.WithString("initial_prompt", mcp.Required(), mcp.Description("First prompt to generate the initial image")),
			modelOpt(defaultModel),
			outputPathOpt(),
			seedOpt("Optional seed (currently ignored in chat sessions)"),
		),
		mcp.NewTool(ToolContinueImageChat,
			mcp.WithDescription("Continue an existing image chat session."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("ID of the session to continue")),
			promptOpt("Next instruction for image modification"),
			aspectRatioOpt(""),
			resolutionOpt(""),
			outputPathOpt(),
		),
		mcp.NewTool(ToolEndImageChat,
			mcp.WithDescription("End and clean up an image chat session."),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("ID of the session to end")),
		),
		mcp.NewTool(ToolListChatSessions,
			mcp.WithDescription("List all active chat sessions."),
		),
		mcp.NewTool(ToolValidateDigest,
			mcp.WithDescription("Validate a story digest document (JSON or YAML) before planning images from it."),
			mcp.WithString("document", mcp.Required(), mcp.Description("The digest document as JSON or YAML text")),
		),
	}
}
