package library

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".mov": true,
	".avi": true, ".m4v": true, ".ts": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true, ".ogg": true,
	".m4a": true, ".aac": true, ".opus": true, ".dsf": true,
}

// KindForPath classifies a file by its extension.
func KindForPath(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExtensions[ext]:
		return KindVideo
	case audioExtensions[ext]:
		return KindAudio
	default:
		return KindUnknown
	}
}

// Service holds the in-memory library of picked files. Nothing is persisted;
// the library lives as long as the process.
type Service struct {
	mu     sync.RWMutex
	items  []MediaItem
	byID   map[string]int
	byPath map[string]string // path -> id, to dedupe re-picks
}

// NewService creates an empty library service.
func NewService() *Service {
	return &Service{
		byID:   make(map[string]int),
		byPath: make(map[string]string),
	}
}

// Add registers a picked file and returns its media item. Re-adding the
// same path returns the existing item. Unrecognized extensions are
// rejected.
func (s *Service) Add(path string) (MediaItem, error) {
	kind := KindForPath(path)
	if kind == KindUnknown {
		return MediaItem{}, fmt.Errorf("unsupported media file: %s", filepath.Base(path))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byPath[path]; exists {
		return s.items[s.byID[id]], nil
	}

	item := MediaItem{
		ID:   uuid.NewString(),
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
		URL:  fileURL(path),
		Kind: kind,
	}

	s.byID[item.ID] = len(s.items)
	s.byPath[path] = item.ID
	s.items = append(s.items, item)

	log.Debug().Str("name", item.Name).Str("kind", string(item.Kind)).Msg("Added media item")
	return item, nil
}

// ScanDirs walks the given directories and adds every recognized media
// file. Unreadable entries are skipped, not fatal.
func (s *Service) ScanDirs(dirs []string) int {
	added := 0
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if KindForPath(path) == KindUnknown {
				return nil
			}
			if _, err := s.Add(path); err == nil {
				added++
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Library scan failed")
		}
	}

	log.Info().Int("added", added).Msg("Library scan complete")
	return added
}

// Get returns the item with the given ID.
func (s *Service) Get(id string) (MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return MediaItem{}, false
	}
	return s.items[idx], true
}

// List returns items matching the request, sorted by name.
func (s *Service) List(req ListRequest) ListResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(req.Query)
	matched := make([]MediaItem, 0, len(s.items))
	for _, item := range s.items {
		if req.Kind != "" && item.Kind != req.Kind {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	total := len(matched)
	if req.Limit > 0 && len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}

	return ListResponse{Items: matched, TotalCount: total}
}

// IDs returns the IDs of all items of the given kind, in name order.
// Audio sessions build their playlist queue from this.
func (s *Service) IDs(kind MediaKind) []string {
	resp := s.List(ListRequest{Kind: kind})
	ids := make([]string, len(resp.Items))
	for i, item := range resp.Items {
		ids[i] = item.ID
	}
	return ids
}

// fileURL converts an absolute path to a file:// URL the player surface can
// load.
func fileURL(path string) string {
	return "file://" + (&url.URL{Path: path}).EscapedPath()
}
