package artifact

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/tansive/nanobanana/internal/gateway/genclient"
)

func fixedStore(dir string) *Store {
	s := NewStore(dir)
	s.now = func() time.Time { return time.Date(2026, 1, 26, 14, 30, 52, 7*int(time.Millisecond), time.Local) }
	s.randN = func(int) int { return 42 }
	return s
}

func TestGenerateOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := fixedStore(dir)

	p, err := s.GenerateOutputPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "image_20260126_143052_007042.png"), p)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	p, err = s.GenerateOutputPath("chat")
	require.NoError(t, err)
	assert.Equal(t, "chat_20260126_143052_007042.png", filepath.Base(p))
}

func TestGenerateOutputPathFormat(t *testing.T) {
	s := NewStore(t.TempDir())
	p, err := s.GenerateOutputPath("image")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^image_\d{8}_\d{6}_\d{6}\.png$`), filepath.Base(p))
}

func TestNewStoreDefaultDir(t *testing.T) {
	assert.Equal(t, DefaultOutputDir, NewStore("").OutputDir)
}

func TestSaveWithImage(t *testing.T) {
	dir := t.TempDir()
	s := fixedStore(dir)
	text := "a cat"
	r := &genclient.Result{
		Text:              &text,
		ImageData:         []byte("PNGDATA"),
		MIMEType:          "image/png",
		GroundingMetadata: &genai.GroundingMetadata{WebSearchQueries: []string{"weather"}},
	}

	resp, err := s.Save(r, "")
	require.NoError(t, err)
	require.NotNil(t, resp.SavedPath)
	assert.True(t, filepath.IsAbs(*resp.SavedPath))
	assert.Equal(t, "a cat", *resp.Text)
	assert.Equal(t, "image/png", *resp.MIMEType)
	assert.Equal(t, []string{"weather"}, resp.GroundingMetadata.WebSearchQueries)

	data, err := os.ReadFile(*resp.SavedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), data)
}

func TestSaveExplicitPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out.png")
	resp, err := NewStore(t.TempDir()).Save(&genclient.Result{ImageData: []byte{1, 2, 3}, MIMEType: "image/png"}, target)
	require.NoError(t, err)
	require.NotNil(t, resp.SavedPath)
	assert.Equal(t, target, *resp.SavedPath)
	assert.FileExists(t, target)
}

func TestSaveTextOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	text := "no image this time"
	resp, err := NewStore(dir).Save(&genclient.Result{Text: &text}, "")
	require.NoError(t, err)
	assert.Nil(t, resp.SavedPath)
	assert.Nil(t, resp.MIMEType)
	assert.Equal(t, text, *resp.Text)
	assert.NoDirExists(t, dir)
}

func TestSaveUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewStore(dir).Save(&genclient.Result{ImageData: []byte{1}}, filepath.Join(blocker, "x.png"))
	assert.ErrorIs(t, err, ErrArtifactError)
}

func TestSaveParts(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	n := 0
	s.randN = func(int) int { n++; return n }

	out, err := s.SaveParts([]genclient.Part{
		{Kind: genclient.PartText, Text: "step one"},
		{Kind: genclient.PartImage, Data: []byte{1}, MIMEType: "image/png"},
		{Kind: genclient.PartText, Text: "step two"},
		{Kind: genclient.PartImage, Data: []byte{2}, MIMEType: "image/jpeg"},
	}, "story")
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "text", out[0].Type)
	assert.Equal(t, "step one", *out[0].Text)
	assert.Equal(t, "image", out[1].Type)
	assert.Equal(t, "image/png", *out[1].MIMEType)
	assert.Equal(t, "image/jpeg", *out[3].MIMEType)
	assert.NotEqual(t, *out[1].SavedPath, *out[3].SavedPath)

	data, err := os.ReadFile(*out[3].SavedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data)
}

func TestSavePartsSameMillisecondCollision(t *testing.T) {
	dir := t.TempDir()
	s := fixedStore(dir)
	draws := []int{7, 7, 7, 8}
	s.randN = func(int) int {
		v := draws[0]
		if len(draws) > 1 {
			draws = draws[1:]
		}
		return v
	}

	out, err := s.SaveParts([]genclient.Part{
		{Kind: genclient.PartImage, Data: []byte{1}, MIMEType: "image/png"},
		{Kind: genclient.PartImage, Data: []byte{2}, MIMEType: "image/png"},
	}, "story")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "story_20260126_143052_007007.png", filepath.Base(*out[0].SavedPath))
	assert.Equal(t, "story_20260126_143052_007008.png", filepath.Base(*out[1].SavedPath))

	first, err := os.ReadFile(*out[0].SavedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, first)
	second, err := os.ReadFile(*out[1].SavedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, second)
}

func TestSaveGeneratedNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := fixedStore(dir)
	taken := filepath.Join(dir, "image_20260126_143052_007042.png")
	require.NoError(t, os.WriteFile(taken, []byte("old"), 0o644))

	_, err := s.Save(&genclient.Result{ImageData: []byte("new"), MIMEType: "image/png"}, "")
	assert.ErrorIs(t, err, ErrWriteImage)

	data, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)
}
