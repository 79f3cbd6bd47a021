package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry describes a saved transcript file
type Entry struct {
	Name    string
	Path    string
	Format  ExportFormat
	ModTime time.Time
	Size    int64
}

// Store writes transcripts under <baseDir>/transcripts
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// NewStore creates a new transcript store
func NewStore(baseDir string) (*Store, error) {
	dir := filepath.Join(baseDir, "transcripts")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	return &Store{baseDir: dir}, nil
}

// Dir returns the transcripts directory
func (s *Store) Dir() string {
	return s.baseDir
}

// Save writes the transcript and returns the file path
func (s *Store) Save(t Transcript, format ExportFormat) (string, error) {
	data, err := Export(t, format)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	base := "companion_" + created.Format("20060102_150405")
	path := filepath.Join(s.baseDir, base+format.Extension())
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(s.baseDir, fmt.Sprintf("%s_%d%s", base, i, format.Extension()))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// List returns the saved transcripts, newest first
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var result []Entry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var format ExportFormat
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md":
			format = ExportFormatMarkdown
		case ".json":
			format = ExportFormatJSON
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // removed while listing
		}
		result = append(result, Entry{
			Name:    entry.Name(),
			Path:    filepath.Join(s.baseDir, entry.Name()),
			Format:  format,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ModTime.Equal(result[j].ModTime) {
			return result[i].Name > result[j].Name
		}
		return result[i].ModTime.After(result[j].ModTime)
	})

	return result, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
