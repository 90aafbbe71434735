package putio

import (
	"context"
	"errors"
	"io"
	"net/http"
)

const defaultAppID = "6487"

// ListFiles lists files, optionally scoped to a parent folder.
func (c *Client) ListFiles(ctx context.Context, parentID *int64) <-chan Result[[]*File] {
	return goResult(func() ([]*File, error) {
		var params Params
		if parentID != nil {
			params = params.Add("parent_id", formatID(*parentID))
		}

		body, err := c.fetch(ctx, call{method: http.MethodGet, path: "/files/list", params: params})
		if err != nil {
			return []*File{}, err
		}
		return decodeFiles(arrayField(body, "files"), c), nil
	})
}

// GetFile fetches a single file.
func (c *Client) GetFile(ctx context.Context, id int64) <-chan Result[*File] {
	return goResult(func() (*File, error) {
		body, err := c.fetch(ctx, call{method: http.MethodGet, path: "/files/" + formatID(id)})
		if err != nil {
			return nil, err
		}
		return c.DecodeFile(objectField(body, "file")), nil
	})
}

// DeleteFiles deletes files and folders by id.
func (c *Client) DeleteFiles(ctx context.Context, ids []int64) <-chan bool {
	return goBool(func() bool {
		return c.exec(ctx, call{
			method: http.MethodPost,
			path:   "/files/delete",
			params: idParams("file_ids", ids),
		})
	})
}

// MoveFiles moves files into the folder parentID.
func (c *Client) MoveFiles(ctx context.Context, ids []int64, parentID int64) <-chan bool {
	return goBool(func() bool {
		params := idParams("file_ids", ids).Add("parent_id", formatID(parentID))
		return c.exec(ctx, call{method: http.MethodPost, path: "/files/move", params: params})
	})
}

// CreateFolder creates a folder named name inside parentID.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID int64) <-chan bool {
	return goBool(func() bool {
		params := Params{}.
			Add("name", name).
			Add("parent_id", formatID(parentID))
		return c.exec(ctx, call{method: http.MethodPost, path: "/files/create-folder", params: params})
	})
}

// ShareFiles shares files with the given usernames.
func (c *Client) ShareFiles(ctx context.Context, ids []int64, usernames []string) <-chan bool {
	return goBool(func() bool {
		params := idParams("file_ids", ids)
		for _, name := range usernames {
			params = params.Add("friends", name)
		}
		return c.exec(ctx, call{method: http.MethodPost, path: "/files/share", params: params})
	})
}

// UploadFile streams r to put.io as name inside parentID.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader, parentID int64) <-chan Result[*File] {
	return goResult(func() (*File, error) {
		if r == nil {
			return nil, errors.New("putio: upload needs a reader")
		}
		params := Params{}.
			Add("filename", name).
			Add("parent_id", formatID(parentID))

		body, err := c.fetch(ctx, call{
			method: http.MethodPost,
			path:   "/files/upload",
			params: params,
			upload: &Upload{FieldName: "file", FileName: name, Reader: r},
		})
		if err != nil {
			return nil, err
		}
		return c.DecodeFile(objectField(body, "file")), nil
	})
}

// AccountInfo fetches the authenticated user's account.
func (c *Client) AccountInfo(ctx context.Context) <-chan Result[AccountInfo] {
	return goResult(func() (AccountInfo, error) {
		body, err := c.fetch(ctx, call{method: http.MethodGet, path: "/account/info"})
		if err != nil {
			return AccountInfo{}, err
		}
		return DecodeAccountInfo(objectField(body, "info")), nil
	})
}

// OOBCode requests an out-of-band code the user enters at put.io/link. An
// empty appID uses the library's registered app.
func (c *Client) OOBCode(ctx context.Context, appID string) <-chan Result[string] {
	return goResult(func() (string, error) {
		if appID == "" {
			appID = defaultAppID
		}
		body, err := c.fetch(ctx, call{
			method: http.MethodGet,
			path:   "/oauth2/oob/code",
			params: Params{}.Add("app_id", appID),
		})
		if err != nil {
			return "", err
		}
		code := stringField(body, "code", "")
		if code == "" {
			return "", errors.New("putio: OOB code not found in response")
		}
		return code, nil
	})
}

// CheckOOB returns the OAuth token once the code has been linked.
func (c *Client) CheckOOB(ctx context.Context, code string) <-chan Result[string] {
	return goResult(func() (string, error) {
		body, err := c.fetch(ctx, call{method: http.MethodGet, path: "/oauth2/oob/code/" + code})
		if err != nil {
			return "", err
		}
		token := stringField(body, "oauth_token", "")
		if token == "" {
			return "", errors.New("putio: OAuth token not found in response")
		}
		return token, nil
	})
}
