package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const folderContentType = "application/x-directory"

// Handler implements the fake put.io endpoints.
type Handler struct {
	config Config
	store  *Store
	logger *logrus.Logger
}

// NewHandler creates a new handler.
func NewHandler(cfg Config, store *Store, logger *logrus.Logger) *Handler {
	return &Handler{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

// Register mounts every endpoint on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	oauth := rg.Group("/oauth2")
	oauth.GET("/oob/code", h.OOBCode)
	oauth.GET("/oob/code/:code", h.CheckOOB)

	api := rg.Group("", h.authenticate)
	api.GET("/account/info", h.AccountInfo)

	api.GET("/files/list", h.ListFiles)
	api.GET("/files/:id", h.GetFile)
	api.POST("/files/delete", h.DeleteFiles)
	api.POST("/files/move", h.MoveFiles)
	api.POST("/files/create-folder", h.CreateFolder)
	api.POST("/files/share", h.ShareFiles)
	api.POST("/files/rename", h.Rename)
	api.POST("/files/unshare", h.Unshare)
	api.POST("/files/set-video-position", h.SetVideoPosition)
	api.POST("/files/delete-video-position", h.DeleteVideoPosition)
	api.POST("/files/upload", h.Upload)

	api.GET("/files/:id/mp4", h.MP4Status)
	api.POST("/files/:id/mp4", h.ConvertToMP4)
	api.GET("/files/:id/shared-with", h.SharedWith)
	api.GET("/files/:id/subtitles", h.Subtitles)
	api.GET("/files/:id/subtitles/:key", h.SubtitleContent)
}

// authenticate accepts a bearer header or an oauth_token query parameter.
func (h *Handler) authenticate(c *gin.Context) {
	if h.config.Token == "" {
		c.Next()
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" || token == c.GetHeader("Authorization") {
		token = c.Query("oauth_token")
	}
	if token != h.config.Token {
		fail(c, http.StatusUnauthorized, "invalid_grant", "invalid token")
		c.Abort()
		return
	}
	c.Next()
}

func ok(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["status"] = "OK"
	c.JSON(http.StatusOK, payload)
}

func fail(c *gin.Context, code int, errType, message string) {
	c.JSON(code, gin.H{
		"status":        "ERROR",
		"error_type":    errType,
		"error_message": message,
	})
}

func notFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "NotFound", "file not found")
}

func fileJSON(rec FileRecord) gin.H {
	return gin.H{
		"id":                rec.ID,
		"name":              rec.Name,
		"parent_id":         rec.ParentID,
		"size":              rec.Size,
		"content_type":      rec.ContentType,
		"file_type":         rec.FileType,
		"is_shared":         rec.IsShared,
		"is_mp4_available":  rec.HasMP4,
		"created_at":        rec.CreatedAt,
		"screenshot":        rec.Screenshot,
		"first_accessed_at": nil,
	}
}

// parseIDs accepts repeated fields as well as comma separated values.
func parseIDs(values []string) ([]int64, bool) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, len(ids) > 0
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

func formID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.PostForm(key), 10, 64)
	return id, err == nil
}

// AccountInfo handles GET /account/info.
func (h *Handler) AccountInfo(c *gin.Context) {
	username := h.config.Username
	if username == "" {
		username = "fake"
	}
	ok(c, gin.H{"info": gin.H{
		"username":       username,
		"mail":           username + "@example.com",
		"account_active": true,
	}})
}

// ListFiles handles GET /files/list.
func (h *Handler) ListFiles(c *gin.Context) {
	parentID := int64(0)
	if raw := c.Query("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "BadRequest", "invalid parent_id")
			return
		}
		parentID = id
	}

	files := make([]gin.H, 0)
	for _, rec := range h.store.Children(parentID) {
		files = append(files, fileJSON(rec))
	}

	parent := gin.H{"id": 0, "name": "Your Files", "content_type": folderContentType, "file_type": "FOLDER"}
	if rec, found := h.store.File(parentID); found {
		parent = fileJSON(rec)
	}
	ok(c, gin.H{"files": files, "parent": parent})
}

// GetFile handles GET /files/:id.
func (h *Handler) GetFile(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		notFound(c)
		return
	}
	rec, found := h.store.File(id)
	if !found {
		notFound(c)
		return
	}
	file := fileJSON(rec)
	if c.Query("start_from") == "1" && rec.StartFrom > 0 {
		file["start_from"] = rec.StartFrom
	}
	ok(c, gin.H{"file": file})
}

// DeleteFiles handles POST /files/delete.
func (h *Handler) DeleteFiles(c *gin.Context) {
	ids, valid := parseIDs(c.PostFormArray("file_ids"))
	if !valid {
		fail(c, http.StatusBadRequest, "BadRequest", "file_ids is required")
		return
	}
	h.store.Delete(ids)
	ok(c, nil)
}

// MoveFiles handles POST /files/move.
func (h *Handler) MoveFiles(c *gin.Context) {
	ids, valid := parseIDs(c.PostFormArray("file_ids"))
	parentID, parentValid := formID(c, "parent_id")
	if !valid || !parentValid {
		fail(c, http.StatusBadRequest, "BadRequest", "file_ids and parent_id are required")
		return
	}
	if !h.store.Move(ids, parentID) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// CreateFolder handles POST /files/create-folder.
func (h *Handler) CreateFolder(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		fail(c, http.StatusBadRequest, "BadRequest", "name is required")
		return
	}
	parentID, _ := formID(c, "parent_id")
	id := h.store.AddFile(FileRecord{
		Name:        name,
		ParentID:    parentID,
		ContentType: folderContentType,
		FileType:    "FOLDER",
	})
	rec, _ := h.store.File(id)
	ok(c, gin.H{"file": fileJSON(rec)})
}

// ShareFiles handles POST /files/share.
func (h *Handler) ShareFiles(c *gin.Context) {
	ids, valid := parseIDs(c.PostFormArray("file_ids"))
	friends := c.PostFormArray("friends")
	if !valid || len(friends) == 0 {
		fail(c, http.StatusBadRequest, "BadRequest", "file_ids and friends are required")
		return
	}
	if !h.store.Share(ids, friends) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// Rename handles POST /files/rename.
func (h *Handler) Rename(c *gin.Context) {
	id, valid := formID(c, "file_id")
	name := strings.TrimSpace(c.PostForm("name"))
	if !valid || name == "" {
		fail(c, http.StatusBadRequest, "BadRequest", "file_id and name are required")
		return
	}
	if !h.store.Rename(id, name) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// Unshare handles POST /files/unshare.
func (h *Handler) Unshare(c *gin.Context) {
	id, valid := formID(c, "file_id")
	if !valid {
		fail(c, http.StatusBadRequest, "BadRequest", "file_id is required")
		return
	}

	shares := c.PostFormArray("shares")
	all := len(shares) == 1 && shares[0] == "everyone"
	var shareIDs []int64
	if !all {
		var parsed bool
		shareIDs, parsed = parseIDs(shares)
		if !parsed {
			fail(c, http.StatusBadRequest, "BadRequest", "shares is required")
			return
		}
	}
	if !h.store.Unshare(id, shareIDs, all) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// SetVideoPosition handles POST /files/set-video-position.
func (h *Handler) SetVideoPosition(c *gin.Context) {
	id, valid := formID(c, "file_id")
	seconds, err := strconv.Atoi(c.PostForm("time"))
	if !valid || err != nil {
		fail(c, http.StatusBadRequest, "BadRequest", "file_id and time are required")
		return
	}
	if !h.store.SetPosition(id, seconds) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// DeleteVideoPosition handles POST /files/delete-video-position.
func (h *Handler) DeleteVideoPosition(c *gin.Context) {
	id, valid := formID(c, "file_id")
	if !valid {
		fail(c, http.StatusBadRequest, "BadRequest", "file_id is required")
		return
	}
	if !h.store.SetPosition(id, 0) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// Upload handles POST /files/upload.
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "BadRequest", "file is required")
		return
	}

	name := c.PostForm("filename")
	if name == "" {
		name = header.Filename
	}
	parentID, _ := formID(c, "parent_id")
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := h.store.AddFile(FileRecord{
		Name:        name,
		ParentID:    parentID,
		Size:        header.Size,
		ContentType: contentType,
		FileType:    "FILE",
	})
	rec, _ := h.store.File(id)
	h.logger.Infof("fake upload stored %q as file %d", name, id)
	ok(c, gin.H{"file": fileJSON(rec)})
}

// MP4Status handles GET /files/:id/mp4.
func (h *Handler) MP4Status(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		notFound(c)
		return
	}
	if _, found := h.store.File(id); !found {
		notFound(c)
		return
	}
	rec := h.store.PollMP4(id)
	ok(c, gin.H{"mp4": gin.H{"status": rec.Status, "percent_done": rec.PercentDone}})
}

// ConvertToMP4 handles POST /files/:id/mp4.
func (h *Handler) ConvertToMP4(c *gin.Context) {
	id, valid := pathID(c)
	if !valid || !h.store.RequestMP4(id) {
		notFound(c)
		return
	}
	ok(c, nil)
}

// SharedWith handles GET /files/:id/shared-with.
func (h *Handler) SharedWith(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		notFound(c)
		return
	}
	if _, found := h.store.File(id); !found {
		notFound(c)
		return
	}
	ok(c, gin.H{"shared-with": h.store.Shares(id)})
}

// Subtitles handles GET /files/:id/subtitles.
func (h *Handler) Subtitles(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		notFound(c)
		return
	}
	if _, found := h.store.File(id); !found {
		notFound(c)
		return
	}
	defaultKey, list := h.store.Subtitles(id)
	ok(c, gin.H{"default": defaultKey, "subtitles": list})
}

// SubtitleContent handles GET /files/:id/subtitles/:key.
func (h *Handler) SubtitleContent(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		notFound(c)
		return
	}
	_, list := h.store.Subtitles(id)
	for _, sub := range list {
		if sub.Key != c.Param("key") {
			continue
		}
		switch c.DefaultQuery("format", "srt") {
		case "webvtt":
			c.Data(http.StatusOK, "text/vtt", []byte("WEBVTT\n\n00:00:00.000 --> 00:00:01.000\n"+sub.Name+"\n"))
		default:
			c.Data(http.StatusOK, "application/x-subrip", []byte("1\n00:00:00,000 --> 00:00:01,000\n"+sub.Name+"\n"))
		}
		return
	}
	fail(c, http.StatusNotFound, "NotFound", "subtitle not found")
}

// OOBCode handles GET /oauth2/oob/code.
func (h *Handler) OOBCode(c *gin.Context) {
	if c.Query("app_id") == "" {
		fail(c, http.StatusBadRequest, "BadRequest", "app_id is required")
		return
	}
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		fail(c, http.StatusInternalServerError, "Internal", err.Error())
		return
	}
	code := strings.ToUpper(hex.EncodeToString(buf))
	h.store.IssueOOB(code)
	if h.config.AutoLink && h.config.Token != "" {
		h.store.LinkOOB(code, h.config.Token)
	}
	ok(c, gin.H{"code": code})
}

// CheckOOB handles GET /oauth2/oob/code/:code. Until linked the token is null.
func (h *Handler) CheckOOB(c *gin.Context) {
	token, linked := h.store.OOBToken(c.Param("code"))
	if !linked {
		ok(c, gin.H{"oauth_token": nil})
		return
	}
	ok(c, gin.H{"oauth_token": token})
}
