package core

import (
	"errors"
	"os"
	"sort"
	"strings"
)

// Subjects lists the subject identifiers in a BIDS dataset directory.
// Each sub-* folder yields one identifier taken from the folder name
// itself. Sorted for a stable submission order.
func Subjects(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var subjects []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "sub-") {
			subjects = append(subjects, entry.Name())
		}
	}
	if len(subjects) == 0 {
		return nil, errors.New("no sub-* directories found in " + dir)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Label strips the BIDS prefix from a subject identifier for use as a
// --participant-label argument.
func Label(subject string) string {
	return strings.TrimPrefix(subject, "sub-")
}
