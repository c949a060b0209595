package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// seedDocument is the on-disk shape of JSON and YAML seed files.
type seedDocument struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// LoadSeed reads the initial collection from path. The format follows the
// file extension: .json, .yaml/.yml, or a SQLite database (.db, .sqlite,
// .sqlite3). An empty path yields an empty collection.
func LoadSeed(ctx context.Context, path string) ([]Task, error) {
	if path == "" {
		return nil, nil
	}

	var (
		ts  []Task
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		ts, err = readSeedDocument(path, json.Unmarshal)
	case ".yaml", ".yml":
		ts, err = readSeedDocument(path, yaml.Unmarshal)
	case ".db", ".sqlite", ".sqlite3":
		ts, err = loadSQLiteSeed(ctx, path)
	default:
		return nil, fmt.Errorf("seed %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	if err := ValidateSeed(ts); err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return ts, nil
}

func readSeedDocument(path string, unmarshal func([]byte, any) error) ([]Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc seedDocument
	if err := unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// ValidateSeed checks every record against the Task field rules and rejects
// duplicate ids.
func ValidateSeed(ts []Task) error {
	seen := make(map[int64]struct{}, len(ts))
	for i, t := range ts {
		if err := validate.Struct(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("task %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
