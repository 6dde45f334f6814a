package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ai-travel-planner/internal/itinerary"
)

const versionLayout = "20060102T150405Z"

// ExportStore keeps versioned file exports of itineraries: a JSON snapshot
// plus rendered artifacts (text, calendar) sharing the same version stamp.
type ExportStore struct {
	basePath string
}

// NewExportStore creates a new ExportStore and ensures the base directory exists.
func NewExportStore(basePath string) (*ExportStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ExportStore{basePath: basePath}, nil
}

// Version formats a version stamp usable in file names.
func Version(t time.Time) string {
	return t.UTC().Format(versionLayout)
}

func (s *ExportStore) path(id, version, ext string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s_%s.%s", id, version, ext))
}

// SaveSnapshot stores the itinerary as indented JSON and returns the file path.
func (s *ExportStore) SaveSnapshot(it *itinerary.Itinerary, version string) (string, error) {
	if it.ID == "" {
		return "", fmt.Errorf("itinerary has no id")
	}
	data, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	return s.SaveArtifact(it.ID, version, "json", data)
}

// SaveArtifact writes a rendered export next to its snapshot.
func (s *ExportStore) SaveArtifact(id, version, ext string, data []byte) (string, error) {
	p := s.path(id, version, ext)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return p, nil
}

// Load retrieves the snapshot of a specific version.
func (s *ExportStore) Load(id, version string) (*itinerary.Itinerary, error) {
	data, err := os.ReadFile(s.path(id, version, "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read itinerary snapshot: %w", err)
	}

	var it itinerary.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal itinerary: %w", err)
	}
	return &it, nil
}

// Versions lists the snapshot versions of an itinerary, oldest first.
func (s *ExportStore) Versions(id string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, id+"_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshots: %w", err)
	}

	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		versions = append(versions, strings.TrimPrefix(name, id+"_"))
	}
	sort.Strings(versions)
	return versions, nil
}

// Exists checks if a specific snapshot version exists.
func (s *ExportStore) Exists(id, version string) bool {
	_, err := os.Stat(s.path(id, version, "json"))
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes every file of an itinerary except those of keep.
func (s *ExportStore) RemoveStaleVersions(id, keep string) error {
	matches, err := filepath.Glob(filepath.Join(s.basePath, id+"_*"))
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	prefix := fmt.Sprintf("%s_%s.", id, keep)
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), prefix) {
			continue
		}
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}
