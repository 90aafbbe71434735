package putio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ochronus/goputiokit/internal/fakeapi"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// setupFakeAPI starts the fake put.io server and returns a client talking to it.
func setupFakeAPI(t *testing.T, token string) (*Client, *fakeapi.Store) {
	t.Helper()

	store := fakeapi.NewStore()
	server := fakeapi.NewServer(fakeapi.Config{Token: "secret", Username: "tester"}, store, quietLogger())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	session := NewSession(
		WithToken(token),
		WithRouter(Router{Base: ts.URL + "/v2", UploadBase: ts.URL + "/v2"}),
		WithTransport(NewLiveTransport(LiveConfig{HTTPClient: ts.Client(), Timeout: 5 * time.Second})),
	)
	return NewClient(session, WithLogger(quietLogger())), store
}

func TestLiveTransportAgainstFakeAPI(t *testing.T) {
	client, store := setupFakeAPI(t, "secret")
	ctx := context.Background()

	folderID := store.AddFile(fakeapi.FileRecord{Name: "Movies", ContentType: "application/x-directory", FileType: "FOLDER"})
	movieID := store.AddFile(fakeapi.FileRecord{Name: "movie.mkv", ParentID: folderID, Size: 2048, ContentType: "video/x-matroska"})

	t.Run("account info", func(t *testing.T) {
		res := receive(t, client.AccountInfo(ctx))
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Value.Username != "tester" || !res.Value.AccountActive {
			t.Errorf("unexpected account: %+v", res.Value)
		}
	})

	t.Run("list root and folder", func(t *testing.T) {
		res := receive(t, client.ListFiles(ctx, nil))
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if len(res.Value) != 1 || !res.Value[0].IsFolder() {
			t.Fatalf("expected the Movies folder, got %v", res.Value)
		}

		res = receive(t, client.ListFiles(ctx, &folderID))
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if len(res.Value) != 1 || res.Value[0].ID != movieID || res.Value[0].Size != 2048 {
			t.Fatalf("unexpected folder listing: %v", res.Value)
		}
		if res.Value[0].Screenshot != nil || res.Value[0].Accessed {
			t.Errorf("expected defaults for null fields, got %+v", res.Value[0])
		}
	})

	t.Run("rename", func(t *testing.T) {
		file := receive(t, client.GetFile(ctx, movieID)).Value
		if !receive(t, file.Rename(ctx, "renamed.mkv")) {
			t.Fatal("expected rename to succeed")
		}
		rec, _ := store.File(movieID)
		if rec.Name != "renamed.mkv" {
			t.Errorf("expected renamed file, got %q", rec.Name)
		}
	})

	t.Run("video position", func(t *testing.T) {
		file := receive(t, client.GetFile(ctx, movieID)).Value
		if !receive(t, file.SetVideoPosition(ctx, 321)) {
			t.Fatal("expected set position to succeed")
		}
		if got := receive(t, file.Progress(ctx)); got != 321 {
			t.Errorf("expected progress 321, got %d", got)
		}
		if !receive(t, file.DeleteVideoPosition(ctx)) {
			t.Fatal("expected delete position to succeed")
		}
		if got := receive(t, file.Progress(ctx)); got != 0 {
			t.Errorf("expected progress 0, got %d", got)
		}
	})

	t.Run("sharing", func(t *testing.T) {
		if !receive(t, client.ShareFiles(ctx, []int64{movieID}, []string{"steve", "kyle"})) {
			t.Fatal("expected share to succeed")
		}
		file := receive(t, client.GetFile(ctx, movieID)).Value
		if !file.IsShared {
			t.Error("expected file to be shared")
		}

		friends := receive(t, file.SharedWith(ctx))
		if friends.Err != nil || len(friends.Value) != 2 {
			t.Fatalf("expected 2 friends, got %+v", friends)
		}
		if !receive(t, file.Unshare(ctx, friends.Value[:1])) {
			t.Fatal("expected unshare to succeed")
		}
		remaining := receive(t, file.SharedWith(ctx)).Value
		if len(remaining) != 1 || remaining[0].Username != "kyle" {
			t.Errorf("unexpected remaining friends: %+v", remaining)
		}
	})

	t.Run("mp4 conversion", func(t *testing.T) {
		file := receive(t, client.GetFile(ctx, movieID)).Value
		first := receive(t, file.MP4Status(ctx))
		if first.Err != nil || first.Value.Status != MP4NotAvailable {
			t.Fatalf("expected NOT_AVAILABLE, got %+v", first)
		}
		if !receive(t, file.ConvertToMP4(ctx)) {
			t.Fatal("expected conversion request to succeed")
		}

		var last MP4
		for i := 0; i < 10 && !last.Done(); i++ {
			last = receive(t, file.MP4Status(ctx)).Value
		}
		if last.Status != MP4Completed || last.PercentDone != 100 {
			t.Errorf("expected completed conversion, got %+v", last)
		}
	})

	t.Run("subtitles", func(t *testing.T) {
		english := "English"
		store.SetSubtitles(movieID, "b", []fakeapi.SubtitleRecord{
			{Key: "a", Language: &english, Name: "one.srt", Source: "mkv"},
			{Key: "b", Name: "two.srt", Source: "folder"},
		})
		file := receive(t, client.GetFile(ctx, movieID)).Value
		res := receive(t, file.Subtitles(ctx))
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if len(res.Value.List) != 2 || res.Value.Default == nil || res.Value.Default.Name != "two.srt" {
			t.Fatalf("unexpected subtitles: %+v", res.Value)
		}

		req, _ := http.NewRequest(http.MethodGet, res.Value.Default.URL(SubtitleWebVTT), nil)
		req.Header.Set("Authorization", "Bearer secret")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("failed to fetch subtitle: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 for subtitle download, got %d", resp.StatusCode)
		}
	})

	t.Run("upload, create, move and delete", func(t *testing.T) {
		uploaded := receive(t, client.UploadFile(ctx, "notes.txt", strings.NewReader("hello"), folderID))
		if uploaded.Err != nil {
			t.Fatalf("unexpected upload error: %v", uploaded.Err)
		}
		if uploaded.Value.Name != "notes.txt" || uploaded.Value.ParentID != folderID || uploaded.Value.Size != 5 {
			t.Errorf("unexpected uploaded file: %+v", uploaded.Value)
		}

		if !receive(t, client.CreateFolder(ctx, "Archive", 0)) {
			t.Fatal("expected create folder to succeed")
		}
		var archiveID int64
		for _, f := range receive(t, client.ListFiles(ctx, nil)).Value {
			if f.Name == "Archive" {
				archiveID = f.ID
			}
		}
		if archiveID == 0 {
			t.Fatal("expected Archive folder to be listed")
		}

		if !receive(t, client.MoveFiles(ctx, []int64{uploaded.Value.ID}, archiveID)) {
			t.Fatal("expected move to succeed")
		}
		if rec, _ := store.File(uploaded.Value.ID); rec.ParentID != archiveID {
			t.Errorf("expected file in Archive, parent is %d", rec.ParentID)
		}
		if receive(t, client.MoveFiles(ctx, []int64{999999}, archiveID)) {
			t.Error("expected move of an unknown file to fail")
		}

		if !receive(t, client.DeleteFiles(ctx, []int64{uploaded.Value.ID, archiveID})) {
			t.Fatal("expected delete to succeed")
		}
		if _, found := store.File(archiveID); found {
			t.Error("expected Archive to be deleted")
		}
	})
}

func TestLiveTransportRejectsBadToken(t *testing.T) {
	client, store := setupFakeAPI(t, "wrong")
	store.AddFile(fakeapi.FileRecord{Name: "a"})

	res := receive(t, client.ListFiles(context.Background(), nil))
	var apiErr *APIError
	if !errors.As(res.Err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", res.Err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
	if receive(t, client.DeleteFiles(context.Background(), []int64{1})) {
		t.Error("expected delete to fail without a valid token")
	}
}

func TestLiveTransportOOBWithoutToken(t *testing.T) {
	client, store := setupFakeAPI(t, "")
	ctx := context.Background()

	code := receive(t, client.OOBCode(ctx, "1"))
	if code.Err != nil || code.Value == "" {
		t.Fatalf("unexpected code result: %+v", code)
	}
	if res := receive(t, client.CheckOOB(ctx, code.Value)); res.Err == nil {
		t.Error("expected an error before the code is linked")
	}

	store.LinkOOB(code.Value, "linked-token")
	res := receive(t, client.CheckOOB(ctx, code.Value))
	if res.Err != nil || res.Value != "linked-token" {
		t.Errorf("unexpected token result: %+v", res)
	}
}

func TestLiveTransportRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected a request id header")
		}
		switch r.URL.Path {
		case "/v2/files/list":
			if r.URL.Query().Get("parent_id") != "5" {
				t.Errorf("expected parent_id query, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"files":[],"status":"OK"}`))
		case "/v2/files/delete":
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse form: %v", err)
				return
			}
			if ids := r.PostForm["file_ids"]; len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
				t.Errorf("unexpected file_ids: %v", ids)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	transport := NewLiveTransport(LiveConfig{HTTPClient: server.Client()})
	ctx := context.Background()

	resp, err := transport.Perform(ctx, "test-token", &Request{
		Method: http.MethodGet,
		URL:    server.URL + "/v2/files/list",
		Params: Params{}.Add("parent_id", "5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() || resp.Object()["status"] != "OK" {
		t.Errorf("unexpected response: %+v", resp)
	}

	resp, err = transport.Perform(ctx, "test-token", &Request{
		Method: http.MethodPost,
		URL:    server.URL + "/v2/files/delete",
		Params: Params{}.Add("file_ids", "1").Add("file_ids", "2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent || resp.Body != nil || !resp.OK() {
		t.Errorf("expected empty successful response, got %+v", resp)
	}
}

func TestLiveTransportNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken") {
			w.WriteHeader(http.StatusBadGateway)
		}
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	transport := NewLiveTransport(LiveConfig{HTTPClient: server.Client()})

	resp, err := transport.Perform(context.Background(), "", &Request{Method: http.MethodGet, URL: server.URL + "/ok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != nil || !resp.OK() {
		t.Errorf("expected nil body with success, got %+v", resp)
	}

	resp, err = transport.Perform(context.Background(), "", &Request{Method: http.MethodGet, URL: server.URL + "/broken"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway || resp.OK() {
		t.Errorf("expected failing 502, got %+v", resp)
	}
}

func TestLiveTransportConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	transport := NewLiveTransport(LiveConfig{Timeout: time.Second})
	if _, err := transport.Perform(context.Background(), "", &Request{Method: http.MethodGet, URL: url}); err == nil {
		t.Error("expected an error for a closed server")
	}
}
