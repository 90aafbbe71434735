package fakeapi

import (
	"sort"
	"sync"
	"time"
)

// FileRecord is a file held by the fake server.
type FileRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ParentID    int64   `json:"parent_id"`
	Size        int64   `json:"size"`
	ContentType string  `json:"content_type"`
	FileType    string  `json:"file_type"`
	IsShared    bool    `json:"is_shared"`
	HasMP4      bool    `json:"is_mp4_available"`
	CreatedAt   string  `json:"created_at"`
	Screenshot  *string `json:"screenshot"`
	StartFrom   int     `json:"-"`
}

// SubtitleRecord is a subtitle attached to a file.
type SubtitleRecord struct {
	Key      string  `json:"key"`
	Language *string `json:"language"`
	Name     string  `json:"name"`
	Source   string  `json:"source"`
}

// ShareRecord is one share of a file.
type ShareRecord struct {
	ShareID   int64  `json:"share_id"`
	UserName  string `json:"user_name"`
	AvatarURL string `json:"user_avatar_url"`
}

// MP4Record is the conversion state of a file.
type MP4Record struct {
	Status      string `json:"status"`
	PercentDone int    `json:"percent_done"`
}

type subtitleSet struct {
	defaultKey string
	list       []SubtitleRecord
}

// Store is the in-memory state behind the fake server.
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	nextShare int64
	files     map[int64]*FileRecord
	mp4       map[int64]MP4Record
	shares    map[int64][]ShareRecord
	subtitles map[int64]subtitleSet
	oobCodes  map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nextID:    1,
		nextShare: 1,
		files:     make(map[int64]*FileRecord),
		mp4:       make(map[int64]MP4Record),
		shares:    make(map[int64][]ShareRecord),
		subtitles: make(map[int64]subtitleSet),
		oobCodes:  make(map[string]string),
	}
}

// AddFile stores rec, assigning an id when rec.ID is zero, and returns the id.
func (s *Store) AddFile(rec FileRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == 0 {
		rec.ID = s.nextID
	}
	if rec.ID >= s.nextID {
		s.nextID = rec.ID + 1
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format("2006-01-02T15:04:05")
	}
	s.files[rec.ID] = &rec
	return rec.ID
}

// File returns a copy of the file with id.
func (s *Store) File(id int64) (FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.files[id]
	if !ok {
		return FileRecord{}, false
	}
	return *rec, true
}

// Children lists files under parentID ordered by id.
func (s *Store) Children(parentID int64) []FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []FileRecord
	for _, rec := range s.files {
		if rec.ParentID == parentID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete removes files. Missing ids are ignored.
func (s *Store) Delete(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.files, id)
		delete(s.mp4, id)
		delete(s.shares, id)
		delete(s.subtitles, id)
	}
}

// Move reparents files. It fails when any id is unknown.
func (s *Store) Move(ids []int64, parentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.files[id]; !ok {
			return false
		}
	}
	for _, id := range ids {
		s.files[id].ParentID = parentID
	}
	return true
}

// Rename renames a file.
func (s *Store) Rename(id int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	if !ok {
		return false
	}
	rec.Name = name
	return true
}

// SetPosition stores a playback position. Zero clears it.
func (s *Store) SetPosition(id int64, seconds int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	if !ok {
		return false
	}
	if seconds < 0 {
		seconds = 0
	}
	rec.StartFrom = seconds
	return true
}

// SetMP4 overrides the conversion state of a file.
func (s *Store) SetMP4(id int64, rec MP4Record) {
	s.mu.Lock()
	s.mp4[id] = rec
	s.mu.Unlock()
}

// Share shares files with users and returns false for unknown files.
func (s *Store) Share(ids []int64, users []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.files[id]; !ok {
			return false
		}
	}
	for _, id := range ids {
		for _, user := range users {
			s.shares[id] = append(s.shares[id], ShareRecord{
				ShareID:   s.nextShare,
				UserName:  user,
				AvatarURL: "https://put.io/avatars/" + user + ".png",
			})
			s.nextShare++
		}
		s.files[id].IsShared = len(s.shares[id]) > 0
	}
	return true
}

// Shares lists the shares of a file.
func (s *Store) Shares(id int64) []ShareRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ShareRecord, len(s.shares[id]))
	copy(out, s.shares[id])
	return out
}

// Unshare revokes shares by id, or all of them when all is set.
func (s *Store) Unshare(id int64, shareIDs []int64, all bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	if !ok {
		return false
	}
	if all {
		delete(s.shares, id)
		rec.IsShared = false
		return true
	}

	revoke := make(map[int64]bool, len(shareIDs))
	for _, sid := range shareIDs {
		revoke[sid] = true
	}
	kept := s.shares[id][:0]
	for _, share := range s.shares[id] {
		if !revoke[share.ShareID] {
			kept = append(kept, share)
		}
	}
	s.shares[id] = kept
	rec.IsShared = len(kept) > 0
	return true
}

// SetSubtitles replaces the subtitles of a file.
func (s *Store) SetSubtitles(id int64, defaultKey string, list []SubtitleRecord) {
	s.mu.Lock()
	s.subtitles[id] = subtitleSet{defaultKey: defaultKey, list: list}
	s.mu.Unlock()
}

// Subtitles returns the default key and the subtitles of a file.
func (s *Store) Subtitles(id int64) (string, []SubtitleRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.subtitles[id]
	out := make([]SubtitleRecord, len(set.list))
	copy(out, set.list)
	return set.defaultKey, out
}

// IssueOOB registers an out-of-band code. It is linked once LinkOOB is called.
func (s *Store) IssueOOB(code string) {
	s.mu.Lock()
	s.oobCodes[code] = ""
	s.mu.Unlock()
}

// LinkOOB links code to token.
func (s *Store) LinkOOB(code, token string) {
	s.mu.Lock()
	s.oobCodes[code] = token
	s.mu.Unlock()
}

// OOBToken returns the token linked to code.
func (s *Store) OOBToken(code string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.oobCodes[code]
	return token, ok && token != ""
}

// RequestMP4 queues a conversion unless one exists already.
func (s *Store) RequestMP4(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return false
	}
	if _, exists := s.mp4[id]; exists || f.HasMP4 {
		return true
	}
	s.mp4[id] = MP4Record{Status: "IN_QUEUE"}
	return true
}

// PollMP4 returns the current conversion state and moves a running job one
// step forward.
func (s *Store) PollMP4(id int64) MP4Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.mp4[id]
	if !ok {
		if f, exists := s.files[id]; exists && f.HasMP4 {
			return MP4Record{Status: "COMPLETED", PercentDone: 100}
		}
		return MP4Record{Status: "NOT_AVAILABLE"}
	}

	next := rec
	switch rec.Status {
	case "IN_QUEUE":
		next = MP4Record{Status: "PREPARING"}
	case "PREPARING":
		next = MP4Record{Status: "CONVERTING", PercentDone: 50}
	case "CONVERTING":
		next = MP4Record{Status: "COMPLETED", PercentDone: 100}
		if f, exists := s.files[id]; exists {
			f.HasMP4 = true
		}
	}
	s.mp4[id] = next
	return rec
}
