package fakeapi

// SeedDemo fills the store with a small library for serve-fake.
func (s *Store) SeedDemo() {
	screenshot := "https://put.io/images/screenshot.png"
	english := "English"

	movies := s.AddFile(FileRecord{Name: "Movies", ContentType: folderContentType, FileType: "FOLDER"})
	shows := s.AddFile(FileRecord{Name: "Shows", ContentType: folderContentType, FileType: "FOLDER"})

	s.AddFile(FileRecord{
		Name:        "Big Buck Bunny.mp4",
		ParentID:    movies,
		Size:        276134947,
		ContentType: "video/mp4",
		FileType:    "VIDEO",
		HasMP4:      true,
		Screenshot:  &screenshot,
	})
	sintel := s.AddFile(FileRecord{
		Name:        "Sintel.mkv",
		ParentID:    movies,
		Size:        652862514,
		ContentType: "video/x-matroska",
		FileType:    "VIDEO",
		Screenshot:  &screenshot,
	})
	s.SetSubtitles(sintel, "sintel-en", []SubtitleRecord{
		{Key: "sintel-en", Language: &english, Name: "Sintel.en.srt", Source: "mkv"},
		{Key: "sintel-folder", Name: "Sintel.srt", Source: "folder"},
	})
	s.Share([]int64{sintel}, []string{"steve"})

	for _, name := range []string{"Episode 10.mkv", "Episode 2.mkv", "Episode 1.mkv"} {
		s.AddFile(FileRecord{Name: name, ParentID: shows, Size: 350000000, ContentType: "video/x-matroska", FileType: "VIDEO"})
	}

	s.AddFile(FileRecord{Name: "readme.txt", Size: 42, ContentType: "text/plain", FileType: "TEXT"})
}
