package putio

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SubtitleFormat is a subtitle file format.
type SubtitleFormat string

const (
	// SubtitleSRT is the default format.
	SubtitleSRT SubtitleFormat = "srt"
	// SubtitleWebVTT is needed by players such as Chromecast.
	SubtitleWebVTT SubtitleFormat = "webvtt"
)

// SubtitleSource tells where a subtitle was obtained from.
type SubtitleSource int

const (
	// SourceFolder is an SRT next to the video with the same name.
	SourceFolder SubtitleSource = iota
	// SourceMKV was extracted from an MKV container.
	SourceMKV
	// SourceOpenSubtitles was fetched from OpenSubtitles.
	SourceOpenSubtitles
)

func (s SubtitleSource) String() string {
	switch s {
	case SourceMKV:
		return "mkv"
	case SourceOpenSubtitles:
		return "opensubtitles"
	default:
		return "folder"
	}
}

// ParseSubtitleSource maps the server's source string, defaulting to SourceFolder.
func ParseSubtitleSource(s string) SubtitleSource {
	switch s {
	case "mkv":
		return SourceMKV
	case "opensubtitles":
		return SourceOpenSubtitles
	default:
		return SourceFolder
	}
}

// Subtitle belongs to a specific file.
type Subtitle struct {
	Key      string
	Language *string
	Name     string
	FileID   int64
	Source   SubtitleSource

	router Router
}

// Subtitles is the decoded subtitle listing of a file.
type Subtitles struct {
	List    []Subtitle
	Default *Subtitle
}

var errBadSubtitleURL = errors.New("not a subtitle url")

// DecodeSubtitle builds a Subtitle. The payload never carries the owning file,
// so the caller supplies fileID.
func DecodeSubtitle(m map[string]any, fileID int64) Subtitle {
	return decodeSubtitle(m, fileID, DefaultRouter)
}

func decodeSubtitle(m map[string]any, fileID int64, router Router) Subtitle {
	return Subtitle{
		Key:      stringField(m, "key", ""),
		Language: optionalString(m, "language"),
		Name:     stringField(m, "name", "Unknown"),
		FileID:   fileID,
		Source:   ParseSubtitleSource(stringField(m, "source", "")),
		router:   router,
	}
}

// URL returns the download URL for the requested format. An empty format
// means SRT.
func (s Subtitle) URL(format SubtitleFormat) string {
	if format == "" {
		format = SubtitleSRT
	}
	path := fmt.Sprintf("/files/%d/subtitles/%s", s.FileID, url.PathEscape(s.Key))
	return s.router.Resolve(path, Params{}.Add("format", string(format)))
}

// ParseSubtitleURL extracts the file id, key and format from a URL produced by
// Subtitle.URL.
func ParseSubtitleURL(raw string) (int64, string, SubtitleFormat, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, "", "", fmt.Errorf("parse subtitle url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if len(parts) < 4 {
		return 0, "", "", errBadSubtitleURL
	}
	parts = parts[len(parts)-4:]
	if parts[0] != "files" || parts[2] != "subtitles" {
		return 0, "", "", errBadSubtitleURL
	}

	fileID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("subtitle file id: %w", err)
	}
	key, err := url.PathUnescape(parts[3])
	if err != nil {
		return 0, "", "", fmt.Errorf("subtitle key: %w", err)
	}

	format := SubtitleFormat(u.Query().Get("format"))
	if format == "" {
		format = SubtitleSRT
	}
	return fileID, key, format, nil
}

func decodeSubtitles(m map[string]any, fileID int64, router Router) Subtitles {
	values := arrayField(m, "subtitles")
	result := Subtitles{List: make([]Subtitle, 0, len(values))}
	for _, v := range values {
		if obj, ok := asObject(v); ok {
			result.List = append(result.List, decodeSubtitle(obj, fileID, router))
		}
	}

	defaultKey := stringField(m, "default", "")
	if defaultKey == "" {
		return result
	}
	for i := range result.List {
		if result.List[i].Key == defaultKey {
			result.Default = &result.List[i]
			break
		}
	}
	return result
}
