package putio

import (
	"fmt"
	"strconv"
	"strings"
)

const folderContentType = "application/x-directory"

// File is a file or folder stored on put.io.
type File struct {
	ID          int64
	Name        string
	IsShared    bool
	HasMP4      bool
	ParentID    int64
	Size        int64
	ContentType string
	FileType    string
	Accessed    bool
	CreatedAt   string
	Screenshot  *string

	client *Client
}

// DecodeFile builds a File from a JSON object. Missing or mistyped fields take
// their zero value. The client, which may be nil, backs the per-file
// operations and the HLS playlist.
func DecodeFile(m map[string]any, client *Client) *File {
	if m == nil {
		m = map[string]any{}
	}
	return &File{
		ID:          intField(m, "id"),
		Name:        stringField(m, "name", ""),
		IsShared:    boolField(m, "is_shared"),
		HasMP4:      boolField(m, "is_mp4_available"),
		ParentID:    intField(m, "parent_id"),
		Size:        intField(m, "size"),
		ContentType: stringField(m, "content_type", ""),
		FileType:    stringField(m, "file_type", ""),
		Accessed:    present(m, "first_accessed_at"),
		CreatedAt:   stringField(m, "created_at", ""),
		Screenshot:  optionalString(m, "screenshot"),
		client:      client,
	}
}

// IsFolder reports whether the file is a directory.
func (f *File) IsFolder() bool {
	return f.ContentType == folderContentType || strings.EqualFold(f.FileType, "FOLDER")
}

// HLSPlaylist returns the streaming playlist URL. It embeds the session token,
// so it is only available while one is set.
func (f *File) HLSPlaylist() (string, bool) {
	if f.client == nil {
		return "", false
	}
	token, ok := f.client.session.Token()
	if !ok {
		return "", false
	}
	query := Params{}.
		Add("oauth_token", token).
		Add("subtitle_key", "all")
	return f.client.session.Router().Resolve(f.path("/hls/media.m3u8"), query), true
}

func (f *File) String() string {
	return fmt.Sprintf("[%d: %s]", f.ID, f.Name)
}

func (f *File) path(suffix string) string {
	return "/files/" + strconv.FormatInt(f.ID, 10) + suffix
}

// FileIDs collects the IDs of files.
func FileIDs(files []*File) []int64 {
	ids := make([]int64, 0, len(files))
	for _, f := range files {
		if f != nil {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func decodeFiles(values []any, client *Client) []*File {
	files := make([]*File, 0, len(values))
	for _, v := range values {
		m, ok := asObject(v)
		if !ok {
			continue
		}
		files = append(files, DecodeFile(m, client))
	}
	return files
}
