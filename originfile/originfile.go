// Package originfile reads gazelle-style origin files sometimes left inside
// release directories by downloaders. When present, the recorded media and
// year are better signals than anything inferred from the path.
package originfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// https://github.com/x1ppy/gazelle-origin

var names = []string{"origin.yaml", "origin.yml"}

// Find returns the parsed origin file directly inside dir, or nil when
// there isn't one.
func Find(dir string) (*OriginFile, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		res, err := Parse(path)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return res, nil
	}
	return nil, nil
}

func Parse(path string) (*OriginFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var res OriginFile
	if err := yaml.NewDecoder(f).Decode(&res); err != nil {
		return nil, fmt.Errorf("parse origin file: %w", err)
	}
	return &res, nil
}

type OriginFile struct {
	Artist          string `yaml:"Artist"`
	Name            string `yaml:"Name"`
	Edition         any    `yaml:"Edition"`
	EditionYear     int    `yaml:"Edition year"`
	Media           string `yaml:"Media"`
	CatalogueNumber string `yaml:"Catalog number"`
	RecordLabel     string `yaml:"Record label"`
	OriginalYear    int    `yaml:"Original year"`
	Format          string `yaml:"Format"`
	Encoding        string `yaml:"Encoding"`
	Directory       string `yaml:"Directory"`
	Permalink       string `yaml:"Permalink"`
}

func (o *OriginFile) String() string {
	return fmt.Sprintf("%s - %s (%d) [%s #%s]", o.Artist, o.Name, o.EditionYear, o.RecordLabel, o.CatalogueNumber)
}
