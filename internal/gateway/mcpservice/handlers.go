package mcpservice

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"

	"github.com/tansive/nanobanana/internal/common/apperrors"
	"github.com/tansive/nanobanana/internal/gateway/digest"
	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/params"
)

// toolFunc handles one tool call and returns the JSON document to send back.
type toolFunc func(ctx context.Context, args map[string]any) ([]byte, error)

// handle adapts fn to an mcp-go handler. Failures are reported to the
// client as tool errors rather than protocol errors.
func (s *Service) handle(name string, fn toolFunc) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := log.Ctx(ctx).With().Str("tool", name).Logger()
		ctx = logger.WithContext(ctx)
		logger.Info().Msg("tool call")

		out, err := fn(ctx, req.GetArguments())
		if err != nil {
			logger.Error().Err(err).Msg("tool call failed")
			return mcp.NewToolResultError(errorText(err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func errorText(err error) string {
	var ae apperrors.Error
	if errors.As(err, &ae) {
		return ae.ErrorAll()
	}
	return err.Error()
}

func (s *Service) generateImage(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args ImageArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request(s.defaultModel, "1:1", "1K")
	if err != nil {
		return nil, err
	}
	result, err := s.client.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.saveResult(result, args.OutputPath)
}

func (s *Service) editImage(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args editArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request(s.defaultModel, "1:1", "1K")
	if err != nil {
		return nil, err
	}
	result, err := s.client.EditImage(ctx, req, args.ImagePath)
	if err != nil {
		return nil, err
	}
	return s.saveResult(result, args.OutputPath)
}

func (s *Service) composeImages(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args composeArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request(s.defaultModel, "1:1", "2K")
	if err != nil {
		return nil, err
	}
	result, err := s.client.ComposeImages(ctx, req, args.ImagePaths)
	if err != nil {
		return nil, err
	}
	return s.saveResult(result, args.OutputPath)
}

func (s *Service) searchGroundedImage(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args ImageArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request(params.ModelPro, "16:9", "2K")
	if err != nil {
		return nil, err
	}
	result, err := s.client.SearchGroundedImage(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.saveResult(result, args.OutputPath)
}

func (s *Service) generateInterleaved(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args interleavedArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	req, err := args.request(s.defaultModel, "1:1", "1K")
	if err != nil {
		return nil, err
	}
	parts, err := s.client.GenerateInterleaved(ctx, req)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.SaveParts(parts, args.Prefix)
	if err != nil {
		return nil, err
	}
	return marshal(map[string]any{"parts": saved, "count": len(saved)})
}

func (s *Service) startImageChat(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args startChatArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	// validated for the caller's benefit; chat channels take no seed
	if _, err := seedValue(args.Seed); err != nil {
		return nil, err
	}

	id, err := s.sessions.CreateSession(ctx, *withDefault(args.Model, s.defaultModel))
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		return nil, err
	}
	result, err := sess.Send(ctx, args.InitialPrompt, nil, nil)
	if err != nil {
		// the caller never learns the id of a session whose first turn failed
		_ = s.sessions.DeleteSession(id)
		return nil, err
	}
	out, err := s.saveResult(result, args.OutputPath)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "session_id", id)
}

func (s *Service) continueImageChat(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args continueChatArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetSession(args.SessionID)
	if err != nil {
		return nil, err
	}
	result, err := sess.Send(ctx, args.Prompt, args.AspectRatio, args.Resolution)
	if err != nil {
		return nil, err
	}
	out, err := s.saveResult(result, args.OutputPath)
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "session_id", args.SessionID); err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "turn_count", sess.TurnCount())
}

func (s *Service) endImageChat(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args endChatArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetSession(args.SessionID)
	if err != nil {
		return nil, err
	}
	turns := sess.TurnCount()
	if err := s.sessions.DeleteSession(args.SessionID); err != nil {
		return nil, err
	}
	return marshal(map[string]any{
		"status":      "ended",
		"session_id":  args.SessionID,
		"total_turns": turns,
	})
}

func (s *Service) listChatSessions(ctx context.Context, _ map[string]any) ([]byte, error) {
	ids := s.sessions.ListSessions()
	return marshal(map[string]any{"sessions": ids, "count": len(ids)})
}

type violation struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (s *Service) validateDigest(ctx context.Context, raw map[string]any) ([]byte, error) {
	var args validateDigestArgs
	if err := decodeArgs(log.Ctx(ctx), raw, &args); err != nil {
		return nil, err
	}
	summary, err := digest.Validate([]byte(args.Document))
	if err == nil {
		return marshal(map[string]any{"valid": true, "summary": summary})
	}
	ves := digest.Violations(err)
	if ves == nil {
		return nil, err
	}
	out := make([]violation, 0, len(ves))
	for _, ve := range ves {
		out = append(out, violation{Field: ve.Field, Error: ve.ErrStr})
	}
	return marshal(map[string]any{"valid": false, "errors": out})
}

func (s *Service) saveResult(result *genclient.Result, outputPath string) ([]byte, error) {
	resp, err := s.store.Save(result, outputPath)
	if err != nil {
		return nil, err
	}
	return marshal(resp)
}
