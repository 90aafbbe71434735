package putio

import (
	"context"
	"net/http"
	"strconv"
)

// Rename gives the file a new name.
func (f *File) Rename(ctx context.Context, name string) <-chan bool {
	return f.exec(ctx, call{
		method: http.MethodPost,
		path:   "/files/rename",
		params: Params{}.Add("file_id", formatID(f.ID)).Add("name", name),
	})
}

// Progress returns the stored resume offset in seconds, 0 when there is none
// or the request fails.
func (f *File) Progress(ctx context.Context) <-chan int {
	return goValue(func() int {
		if f.client == nil {
			return 0
		}
		body, err := f.client.fetch(ctx, call{
			method: http.MethodGet,
			path:   f.path(""),
			params: Params{}.Add("start_from", "1"),
		})
		if err != nil {
			return 0
		}
		return int(intField(objectField(body, "file"), "start_from"))
	})
}

// ConvertToMP4 asks put.io to prepare an MP4 version of the file.
func (f *File) ConvertToMP4(ctx context.Context) <-chan bool {
	return f.exec(ctx, call{method: http.MethodPost, path: f.path("/mp4")})
}

// MP4Status reports the conversion state as the server sees it. Nothing is
// cached between calls; callers poll until MP4.Done.
func (f *File) MP4Status(ctx context.Context) <-chan Result[MP4] {
	return goResult(func() (MP4, error) {
		unknown := MP4{Status: MP4Unknown}
		if f.client == nil {
			return unknown, ErrUnboundFile
		}
		body, err := f.client.fetch(ctx, call{method: http.MethodGet, path: f.path("/mp4")})
		if err != nil {
			return unknown, err
		}
		return DecodeMP4(objectField(body, "mp4")), nil
	})
}

// SharedWith lists the friends the file is shared with.
func (f *File) SharedWith(ctx context.Context) <-chan Result[[]Friend] {
	return goResult(func() ([]Friend, error) {
		if f.client == nil {
			return []Friend{}, ErrUnboundFile
		}
		body, err := f.client.fetch(ctx, call{method: http.MethodGet, path: f.path("/shared-with")})
		if err != nil {
			return []Friend{}, err
		}
		return decodeFriends(arrayField(body, "shared-with")), nil
	})
}

// Unshare revokes the shares of friends. With no friends the file is unshared
// from everyone.
func (f *File) Unshare(ctx context.Context, friends []Friend) <-chan bool {
	params := Params{}.Add("file_id", formatID(f.ID))
	if len(friends) == 0 {
		params = params.Add("shares", "everyone")
	}
	for _, friend := range friends {
		params = params.Add("shares", strconv.FormatInt(friend.ShareID, 10))
	}
	return f.exec(ctx, call{method: http.MethodPost, path: "/files/unshare", params: params})
}

// Subtitles lists the file's subtitles in server order and resolves the
// default one.
func (f *File) Subtitles(ctx context.Context) <-chan Result[Subtitles] {
	return goResult(func() (Subtitles, error) {
		empty := Subtitles{List: []Subtitle{}}
		if f.client == nil {
			return empty, ErrUnboundFile
		}
		body, err := f.client.fetch(ctx, call{method: http.MethodGet, path: f.path("/subtitles")})
		if err != nil {
			return empty, err
		}
		return decodeSubtitles(body, f.ID, f.client.session.Router()), nil
	})
}

// SetVideoPosition stores the playback position in seconds.
func (f *File) SetVideoPosition(ctx context.Context, seconds int) <-chan bool {
	return f.exec(ctx, call{
		method: http.MethodPost,
		path:   "/files/set-video-position",
		params: Params{}.Add("file_id", formatID(f.ID)).Add("time", strconv.Itoa(seconds)),
	})
}

// DeleteVideoPosition clears the stored playback position.
func (f *File) DeleteVideoPosition(ctx context.Context) <-chan bool {
	return f.exec(ctx, call{
		method: http.MethodPost,
		path:   "/files/delete-video-position",
		params: Params{}.Add("file_id", formatID(f.ID)),
	})
}

func (f *File) exec(ctx context.Context, cl call) <-chan bool {
	return goBool(func() bool {
		if f.client == nil {
			return false
		}
		return f.client.exec(ctx, cl)
	})
}
