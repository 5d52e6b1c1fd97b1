// Package artifact defines the closed set of artifact roles produced during a
// correlation run and the registry that holds the latest artifact per role.
package artifact

import (
	"fmt"
	"strings"
)

// Tag identifies the role of an artifact.
type Tag int

const (
	TagDefault Tag = iota
	TagSource
	TagDestination
	TagCropped
	TagDetected
	TagRotated
	TagFound
	TagFoundAndCropped
	TagCorrelationMap

	tagCount
)

var tagNames = [tagCount]string{
	TagDefault:         "default image",
	TagSource:          "source image",
	TagDestination:     "destination image",
	TagCropped:         "source cropped image",
	TagDetected:        "destination detected image",
	TagRotated:         "destination rotated image",
	TagFound:           "destination found image",
	TagFoundAndCropped: "destination found and cropped image",
	TagCorrelationMap:  "correlation map",
}

// UnknownTagError reports a tag outside the closed set.
type UnknownTagError struct {
	Tag  Tag
	Name string
}

func (e *UnknownTagError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown artifact tag %q", e.Name)
	}
	return fmt.Sprintf("unknown artifact tag %d", int(e.Tag))
}

// Tags returns every tag in declaration order.
func Tags() []Tag {
	tags := make([]Tag, tagCount)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}

// Valid reports whether t belongs to the closed set.
func (t Tag) Valid() bool {
	return t >= 0 && t < tagCount
}

// Check returns an *UnknownTagError for invalid tags.
func (t Tag) Check() error {
	if !t.Valid() {
		return &UnknownTagError{Tag: t}
	}
	return nil
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return tagNames[t]
}

// Slug returns the name with spaces replaced by underscores, for file names.
func (t Tag) Slug() string {
	return strings.ReplaceAll(t.String(), " ", "_")
}

// ParseTag resolves a tag by its name, ignoring case.
func ParseTag(name string) (Tag, error) {
	for i, n := range tagNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Tag(i), nil
		}
	}
	return TagDefault, &UnknownTagError{Tag: -1, Name: name}
}
