package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

const validDigest = `{
  "meta": {
    "confidence": "high",
    "source_type": "known_ip",
    "source_reference": "The Witcher 3",
    "extraction_notes": "Synthesized from training data"
  },
  "extracted": {
    "emotional_core": "grim determination",
    "emotional_arc": {
      "start_emotion": "uneasy calm",
      "end_emotion": "desperate resolve",
      "arc_type": "building"
    },
    "genre": ["dark fantasy", "action"],
    "locations": [
      {"name": "Kaer Morhen", "description": "ancient fortress in mountains"}
    ],
    "characters": [
      {"name": "Geralt", "role": "protagonist", "archetype_function": "hero", "narrative_qualifier": "lone", "is_non_human": false},
      {"name": "Yennefer", "role": "ally", "archetype_function": "mentor", "narrative_qualifier": null, "is_non_human": false}
    ],
    "total_duration_seconds": 30,
    "aspect_ratio": "16:9"
  },
  "needs_interview": [
    {"field": "sonic_direction", "reason": "Multiple valid interpretations"}
  ],
  "ambiguities": [
    {"topic": "ending", "detail": "two endings exist", "options": ["good", "bad"]}
  ]
}`

const yamlDigest = `
meta:
  confidence: low
  source_type: minimal
  source_reference: null
  extraction_notes: ""
extracted:
  genre: noir
needs_interview: []
ambiguities: []
`

func TestSchemaCompiles(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotEmpty(t, RawSchema())
}

func TestValidateJSON(t *testing.T) {
	sum, err := Validate([]byte(validDigest))
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		Confidence:     "high",
		SourceType:     "known_ip",
		Characters:     2,
		Locations:      1,
		NeedsInterview: 1,
		Ambiguities:    1,
	}, sum)
}

func TestValidateYAML(t *testing.T) {
	sum, err := Validate([]byte(yamlDigest))
	require.NoError(t, err)
	assert.Equal(t, "low", sum.Confidence)
	assert.Equal(t, 0, sum.Characters)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
		field string
	}{
		{"bad confidence", "meta.confidence", "certain", "/meta/confidence"},
		{"bad source type", "meta.source_type", "rumor", "/meta/source_type"},
		{"bad arc type", "extracted.emotional_arc.arc_type", "spiral", "/extracted/emotional_arc/arc_type"},
		{"empty character name", "extracted.characters.0.name", "", "/extracted/characters/0/name"},
		{"non-boolean is_non_human", "extracted.characters.1.is_non_human", "no", "/extracted/characters/1/is_non_human"},
		{"zero duration", "extracted.total_duration_seconds", 0, "/extracted/total_duration_seconds"},
		{"fractional duration", "extracted.total_duration_seconds", 1.5, "/extracted/total_duration_seconds"},
		{"one option", "ambiguities.0.options", []string{"only"}, "/ambiguities/0/options"},
		{"five options", "ambiguities.0.options", []string{"a", "b", "c", "d", "e"}, "/ambiguities/0/options"},
		{"empty interview reason", "needs_interview.0.reason", "", "/needs_interview/0/reason"},
		{"numeric genre", "extracted.genre", 7, "/extracted/genre"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := sjson.Set(validDigest, tt.path, tt.value)
			require.NoError(t, err)
			_, err = Validate([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDigest)
			ves := Violations(err)
			require.NotEmpty(t, ves)
			fields := make([]string, 0, len(ves))
			for _, ve := range ves {
				fields = append(fields, ve.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateMissingSections(t *testing.T) {
	for _, key := range []string{"meta", "extracted", "needs_interview", "ambiguities"} {
		doc, err := sjson.Delete(validDigest, key)
		require.NoError(t, err)
		_, err = Validate([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidDigest, key)
	}
}

func TestValidateExtraKeysAllowed(t *testing.T) {
	doc, err := sjson.Set(validDigest, "extracted.mood_board", "sketches")
	require.NoError(t, err)
	_, err = Validate([]byte(doc))
	assert.NoError(t, err)
}

func TestValidateMalformed(t *testing.T) {
	for _, in := range []string{"{not json", "- just\n- a list\n", "42"} {
		_, err := Validate([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidFormat, in)
		assert.Nil(t, Violations(err))
	}
}
