// Package artifact writes generated images to disk and builds the response
// document returned to tool callers.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/genclient"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "outputs"

// DefaultPrefix names auto-generated files.
const DefaultPrefix = "image"

// maxNameAttempts bounds how often a taken generated name is redrawn.
const maxNameAttempts = 100

// Response is the tool-facing form of a generation result. SavedPath is nil
// when the model returned no image.
type Response struct {
	Text              *string                  `json:"text"`
	MIMEType          *string                  `json:"mime_type"`
	SavedPath         *string                  `json:"saved_path"`
	GroundingMetadata *genai.GroundingMetadata `json:"grounding_metadata,omitempty"`
}

// Store saves images under OutputDir.
type Store struct {
	OutputDir string

	now   func() time.Time
	randN func(n int) int
}

// NewStore returns a store rooted at dir, or DefaultOutputDir if dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultOutputDir
	}
	return &Store{OutputDir: dir, now: time.Now, randN: rand.IntN}
}

// GenerateOutputPath returns a fresh path of the form
// <dir>/<prefix>_YYYYMMDD_HHMMSS_mmmRRR.png, where mmm is the millisecond
// and RRR a random suffix. The output directory is created if needed.
func (s *Store) GenerateOutputPath(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return "", ErrCreateDir.MsgErr(fmt.Sprintf("unable to create %s", s.OutputDir), err)
	}
	t := s.now()
	name := fmt.Sprintf("%s_%s_%03d%03d.png", prefix, t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond), s.randN(1000))
	return filepath.Join(s.OutputDir, name), nil
}

// Save writes the image in r, if any, to outputPath or to a generated path
// when outputPath is empty, and returns the response document.
func (s *Store) Save(r *genclient.Result, outputPath string) (*Response, error) {
	return s.save(r, outputPath, DefaultPrefix)
}

func (s *Store) save(r *genclient.Result, outputPath, prefix string) (*Response, error) {
	resp := &Response{}
	if r == nil {
		return resp, nil
	}
	resp.Text = r.Text
	resp.GroundingMetadata = r.GroundingMetadata
	if r.MIMEType != "" {
		mt := r.MIMEType
		resp.MIMEType = &mt
	}
	if !r.HasImage() {
		return resp, nil
	}

	var path string
	var err error
	if outputPath == "" {
		path, err = s.writeNew(prefix, r.ImageData)
	} else {
		path, err = writeAt(outputPath, r.ImageData)
	}
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	resp.SavedPath = &abs
	log.Debug().Str("path", abs).Int("bytes", len(r.ImageData)).Msg("image saved")
	return resp, nil
}

// writeNew writes data to a freshly generated path. Generated names are
// created exclusively, so an image never replaces one saved earlier; a name
// that is already taken is redrawn.
func (s *Store) writeNew(prefix string, data []byte) (string, error) {
	for range maxNameAttempts {
		path, err := s.GenerateOutputPath(prefix)
		if err != nil {
			return "", err
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", ErrWriteImage.MsgErr(fmt.Sprintf("unable to create %s", path), err)
		}
		_, werr := f.Write(data)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return "", ErrWriteImage.MsgErr(fmt.Sprintf("unable to write %s", path), werr)
		}
		return path, nil
	}
	return "", ErrWriteImage.Msg(fmt.Sprintf("unable to find a free file name in %s", s.OutputDir))
}

// writeAt writes data to a caller-chosen path, replacing any existing file.
func writeAt(path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", ErrCreateDir.MsgErr(fmt.Sprintf("unable to create directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", ErrWriteImage.MsgErr(fmt.Sprintf("unable to write %s", path), err)
	}
	return path, nil
}

// PartResponse is one entry of an interleaved response. Image parts carry
// the path they were saved to instead of their bytes.
type PartResponse struct {
	Type      string  `json:"type"`
	Text      *string `json:"text,omitempty"`
	MIMEType  *string `json:"mime_type,omitempty"`
	SavedPath *string `json:"saved_path,omitempty"`
}

// SaveParts saves every image part under a generated path and returns the
// parts in their original order.
func (s *Store) SaveParts(parts []genclient.Part, prefix string) ([]PartResponse, error) {
	out := make([]PartResponse, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case genclient.PartText:
			text := p.Text
			out = append(out, PartResponse{Type: string(genclient.PartText), Text: &text})
		case genclient.PartImage:
			resp, err := s.save(&genclient.Result{ImageData: p.Data, MIMEType: p.MIMEType}, "", prefix)
			if err != nil {
				return nil, err
			}
			out = append(out, PartResponse{Type: string(genclient.PartImage), MIMEType: resp.MIMEType, SavedPath: resp.SavedPath})
		}
	}
	return out, nil
}
