package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/ytassist/internal/models"
	"github.com/desertthunder/ytassist/internal/shared"
)

const fence = "```"

// Parse extracts a [models.PlaylistSpec] from raw model output.
//
// One layer of code fencing (an opening fence with an optional language tag and a closing fence) is
// stripped before decoding. It returns [shared.ErrMalformedOutput] when the text is not a JSON object and
// [shared.ErrSchemaViolation] when playlist_name, description or songs is missing or mistyped.
// An empty songs list is not an error.
func Parse(raw string) (*models.PlaylistSpec, error) {
	text := stripFence(strings.TrimSpace(raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedOutput, err)
	}

	spec := &models.PlaylistSpec{}
	if err := requireField(fields, "playlist_name", &spec.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("%w: playlist_name is empty", shared.ErrSchemaViolation)
	}
	if err := requireField(fields, "description", &spec.Description); err != nil {
		return nil, err
	}

	var songs []json.RawMessage
	if err := requireField(fields, "songs", &songs); err != nil {
		return nil, err
	}
	if songs == nil {
		return nil, fmt.Errorf("%w: songs is null", shared.ErrSchemaViolation)
	}

	spec.Songs = make([]models.SongRequest, len(songs))
	for i, item := range songs {
		spec.Songs[i] = decodeSong(item)
	}

	return spec, nil
}

func requireField(fields map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: missing %s", shared.ErrSchemaViolation, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s has wrong type: %v", shared.ErrSchemaViolation, key, err)
	}
	return nil
}

// decodeSong reads title and artist leniently. Anything that is not an object of strings
// yields blank fields, which the resolver later marks as invalid.
func decodeSong(raw json.RawMessage) models.SongRequest {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return models.SongRequest{}
	}

	var song models.SongRequest
	_ = json.Unmarshal(obj["title"], &song.Title)
	_ = json.Unmarshal(obj["artist"], &song.Artist)
	return song
}

// stripFence removes a single surrounding code fence, if any.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) || !strings.HasSuffix(s, fence) || len(s) < 2*len(fence) {
		return s
	}

	inner := s[len(fence) : len(s)-len(fence)]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && isLangTag(inner[:nl]) {
		inner = inner[nl+1:]
	} else if isLangTag(inner) {
		return ""
	} else {
		inner = strings.TrimLeftFunc(inner, isLetter)
	}
	return strings.TrimSpace(inner)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
