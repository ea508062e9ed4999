package genclient

import "google.golang.org/genai"

// Result is the normalized form of a generation response: the text the model
// returned, at most one image, and any search grounding metadata.
type Result struct {
	Text              *string
	ImageData         []byte
	MIMEType          string
	GroundingMetadata *genai.GroundingMetadata
}

// HasImage reports whether the response carried an image.
func (r *Result) HasImage() bool {
	return r != nil && len(r.ImageData) > 0
}

// FromResponse normalizes the first candidate of resp. When the candidate has
// several text or image parts the last of each kind wins.
func FromResponse(resp *genai.GenerateContentResponse) *Result {
	r := &Result{}
	cand := firstCandidate(resp)
	if cand == nil {
		return r
	}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			switch {
			case part.Text != "":
				text := part.Text
				r.Text = &text
			case part.InlineData != nil:
				r.ImageData = part.InlineData.Data
				r.MIMEType = part.InlineData.MIMEType
			}
		}
	}
	r.GroundingMetadata = cand.GroundingMetadata
	return r
}

// PartKind distinguishes entries returned by AllParts.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is one text or image entry of an interleaved response.
type Part struct {
	Kind     PartKind
	Text     string
	Data     []byte
	MIMEType string
}

// AllParts returns every text and image part of the first candidate in order.
// Parts of other kinds are skipped.
func AllParts(resp *genai.GenerateContentResponse) []Part {
	cand := firstCandidate(resp)
	if cand == nil || cand.Content == nil {
		return nil
	}
	var parts []Part
	for _, p := range cand.Content.Parts {
		switch {
		case p == nil:
		case p.Text != "":
			parts = append(parts, Part{Kind: PartText, Text: p.Text})
		case p.InlineData != nil:
			parts = append(parts, Part{Kind: PartImage, Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType})
		}
	}
	return parts
}

func firstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}
