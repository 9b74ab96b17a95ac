// Package backup snapshots and restores the carbonpath database: imported
// country histories, the technology catalog and saved paths.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/models"
	"github.com/allcarbonfree/carbonpath/internal/store"
)

// DirName is the snapshot directory inside the data directory.
const DirName = "backups"

// filePrefix starts every generated snapshot file name.
const filePrefix = "carbonpath-backup-"

// Snapshot is the full contents of a store.
type Snapshot struct {
	Version      int                       `json:"version"`
	CreatedAt    time.Time                 `json:"created_at"`
	Countries    []models.Country          `json:"countries"`
	Technologies []models.TechnologyRecord `json:"technologies"`
	Paths        []models.PathRecord       `json:"paths"`
}

// DefaultDir returns <dataDir>/backups.
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, DirName)
}

// GeneratePath creates a timestamped snapshot filename in dir.
func GeneratePath(dir string, now time.Time, compress bool) string {
	ext := ".json"
	if compress {
		ext = ".json.gz"
	}
	return filepath.Join(dir, filePrefix+now.UTC().Format("20060102-150405")+ext)
}

// Collect reads everything in s into a snapshot.
func Collect(ctx context.Context, s store.Store, now time.Time) (*Snapshot, error) {
	countries, err := s.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	technologies, err := s.ListTechnologies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list technologies: %w", err)
	}
	paths, err := s.ListPaths(ctx, store.PathFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}

	snap := &Snapshot{
		Version:      FormatV1,
		CreatedAt:    now,
		Countries:    countries,
		Technologies: technologies,
		Paths:        paths,
	}
	if snap.Countries == nil {
		snap.Countries = []models.Country{}
	}
	if snap.Technologies == nil {
		snap.Technologies = []models.TechnologyRecord{}
	}
	if snap.Paths == nil {
		snap.Paths = []models.PathRecord{}
	}
	return snap, nil
}

// Create writes a snapshot of s to outputPath. Compressed snapshots use the
// V2 format; uncompressed ones are plain V1 JSON.
func Create(ctx context.Context, s store.Store, outputPath string, compress bool) (*Snapshot, error) {
	snap, err := Collect(ctx, s, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if compress {
		err = WriteV2(outputPath, snap)
	} else {
		err = WriteV1(outputPath, snap)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Read loads a snapshot file of either format.
func Read(path string) (*Snapshot, error) {
	version, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if version == FormatV2 {
		return ReadV2(path)
	}
	return ReadV1(path)
}

// RestoreMode controls how restore handles records that already exist.
type RestoreMode string

const (
	// RestoreMerge keeps existing records and adds missing ones (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace overwrites existing records with the snapshot's.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult counts what a restore wrote and skipped.
type RestoreResult struct {
	CountriesRestored    int `json:"countries_restored"`
	CountriesSkipped     int `json:"countries_skipped"`
	TechnologiesRestored int `json:"technologies_restored"`
	TechnologiesSkipped  int `json:"technologies_skipped"`
	PathsRestored        int `json:"paths_restored"`
	PathsSkipped         int `json:"paths_skipped"`
}

// Restore writes a snapshot file's records into s.
func Restore(ctx context.Context, s store.Store, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	snap, err := Read(inputPath)
	if err != nil {
		return nil, err
	}
	return RestoreSnapshot(ctx, s, snap, mode)
}

// RestoreSnapshot writes snap into s. Countries and technologies go first so
// restored paths never reference missing records.
func RestoreSnapshot(ctx context.Context, s store.Store, snap *Snapshot, mode RestoreMode) (*RestoreResult, error) {
	result := &RestoreResult{}

	for _, c := range snap.Countries {
		skip, err := keepExisting(mode, func() error { _, err := s.GetCountry(ctx, c.Code); return err })
		if err != nil {
			return nil, fmt.Errorf("failed to check country %s: %w", c.Code, err)
		}
		if skip {
			result.CountriesSkipped++
			continue
		}
		if err := s.PutCountry(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to restore country %s: %w", c.Code, err)
		}
		result.CountriesRestored++
	}

	for _, t := range snap.Technologies {
		skip, err := keepExisting(mode, func() error { _, err := s.GetTechnology(ctx, t.ID); return err })
		if err != nil {
			return nil, fmt.Errorf("failed to check technology %s: %w", t.ID, err)
		}
		if skip {
			result.TechnologiesSkipped++
			continue
		}
		if err := s.PutTechnology(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to restore technology %s: %w", t.ID, err)
		}
		result.TechnologiesRestored++
	}

	for _, p := range snap.Paths {
		skip, err := keepExisting(mode, func() error { _, err := s.GetPath(ctx, p.ID); return err })
		if err != nil {
			return nil, fmt.Errorf("failed to check path %s: %w", p.ID, err)
		}
		if skip {
			result.PathsSkipped++
			continue
		}
		if err := s.SavePath(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to restore path %s: %w", p.ID, err)
		}
		result.PathsRestored++
	}

	return result, nil
}

// keepExisting reports whether a merge restore should skip a record that
// lookup finds.
func keepExisting(mode RestoreMode, lookup func() error) (bool, error) {
	if mode == RestoreReplace {
		return false, nil
	}
	err := lookup()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}
