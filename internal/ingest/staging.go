package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// ParseStagingDirName splits a staging directory name of the form
// book-title_author-name into a display title and author. Hyphens
// separate words, the underscore separates title from author.
func ParseStagingDirName(dir string) (title, author string, err error) {
	base := filepath.Base(dir)
	parts := strings.Split(base, "_")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid directory name format: %s (expected book-title_author-name)", base)
	}

	return capitalizeWords(parts[0]), capitalizeWords(parts[1]), nil
}

func capitalizeWords(text string) string {
	words := strings.Split(text, "-")
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

var chapterFilePattern = regexp.MustCompile(`^(.*?)(\d+)\.(?i:mp3)$`)

// numberedFile is a chapter file carrying a sequence number in its name.
type numberedFile struct {
	name   string
	number int
}

// NormalizeChapterFiles renames files matching <anything><digits>.mp3 to
// <digits>.mp3, zero-padding each number to the width of the largest one
// so lexicographic order matches numeric order. With dryRun the planned
// renames are returned without touching the directory.
func NormalizeChapterFiles(dir string, dryRun bool) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	var files []numberedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := chapterFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		files = append(files, numberedFile{name: entry.Name(), number: n})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files matching <name><digits>.mp3 found in %s", dir)
	}

	maxDigits := 0
	for _, f := range files {
		if d := len(strconv.Itoa(f.number)); d > maxDigits {
			maxDigits = d
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].number < files[j].number })

	renames := make(map[string]string)
	for _, f := range files {
		newName := fmt.Sprintf("%0*d.mp3", maxDigits, f.number)
		if f.name == newName {
			continue
		}

		target := filepath.Join(dir, newName)
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("target file already exists: %s", newName)
		}

		renames[f.name] = newName
		if dryRun {
			continue
		}
		if err := os.Rename(filepath.Join(dir, f.name), target); err != nil {
			return nil, fmt.Errorf("failed to rename %s to %s: %w", f.name, newName, err)
		}
	}

	return renames, nil
}
