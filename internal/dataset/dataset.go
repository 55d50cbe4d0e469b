// Package dataset persists and validates census snapshots. The dataset file
// is the sole contract between the fetcher and the dashboard: it is replaced
// atomically on a fully successful run and never modified in place.
package dataset

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/errm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Save writes the dataset to path atomically: the payload goes to a temp
// file in the same directory first and replaces the target with a rename.
// A failed run therefore never leaves a truncated dataset behind.
func Save(path string, dataset *model.Dataset) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return errm.Wrap(err, "marshal dataset")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".census-*.json")
	if err != nil {
		return errm.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errm.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errm.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errm.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errm.Wrap(err, "replace dataset file")
	}

	return nil
}

// Load reads a dataset file.
func Load(path string) (*model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errm.Wrap(err, "read dataset file")
	}
	return Parse(data)
}

// Parse decodes raw dataset JSON.
func Parse(data []byte) (*model.Dataset, error) {
	var dataset model.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, errm.Wrap(err, "unmarshal dataset")
	}
	return &dataset, nil
}
