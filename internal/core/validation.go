package core

import (
	"strings"
	"unicode/utf8"
)

// maxNameLength is in characters, matching the VARCHAR(120) columns.
const maxNameLength = 120

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationErrorf("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", validationErrorf("name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func validateVolume(volume int64) error {
	if volume < 0 {
		return validationErrorf("volume cannot be negative, got %d", volume)
	}
	return nil
}

func validateID(kind string, id int) error {
	if id <= 0 {
		return validationErrorf("%s id must be positive, got %d", kind, id)
	}
	return nil
}
