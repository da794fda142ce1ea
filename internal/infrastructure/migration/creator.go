package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var skeleton = template.Must(template.New("migration").Parse(
	`-- {{if .Down}}Rollback{{else}}Migration{{end}}: {{.Name}}
-- Created: {{.Timestamp}}
{{- if and .Description (not .Down)}}
-- {{.Description}}
{{- end}}

`))

// MigrationFile describes a new up/down pair on disk.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty pair into dir, numbered after the newest
// migration already there.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	existing, err := ListMigrations(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}

	next := 1
	if n := len(existing); n > 0 {
		next = versionOf(existing[n-1]) + 1
	}
	version := fmt.Sprintf("%06d", next)
	stem := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      stem + ".up.sql",
		DownPath:    stem + ".down.sql",
	}

	if err := mf.write(mf.UpPath, false); err != nil {
		return nil, err
	}
	if err := mf.write(mf.DownPath, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func (mf *MigrationFile) write(path string, down bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return skeleton.Execute(f, struct {
		*MigrationFile
		Down bool
	}{mf, down})
}

// sanitizeName turns "Add cart-lines" into "add_cart_lines". Spaces, dashes
// and underscores separate words; other punctuation is dropped.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return ' '
		}
		return -1
	}, strings.ToLower(name))
	return strings.Join(strings.Fields(cleaned), "_")
}

// ListMigrations returns the up migration stems in dir, oldest first. A
// missing dir is an empty list.
func ListMigrations(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	stems := []string{}
	for _, e := range entries {
		if stem, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() {
			stems = append(stems, stem)
		}
	}
	slices.SortStableFunc(stems, func(a, b string) int { return cmp.Compare(versionOf(a), versionOf(b)) })
	return stems, nil
}

func versionOf(stem string) int {
	prefix, _, _ := strings.Cut(stem, "_")
	v, _ := strconv.Atoi(prefix)
	return v
}
