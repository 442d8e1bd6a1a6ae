// Package id generates identifiers: random prefixed IDs for sessions and
// name-based UUIDs for indexed passages.
package id

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// passageNamespace scopes passage UUIDs so they never collide with other
// name-based UUIDs.
var passageNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cuepoint.app/passages"))

// Generate creates a prefixed NanoID, e.g. "ses-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Passage returns the stable ID of the index-th chunk of a video. Re-ingesting
// a video produces the same IDs, so index writes overwrite instead of duplicate.
func Passage(videoID string, index int) string {
	return uuid.NewSHA1(passageNamespace, []byte(videoID+"#"+strconv.Itoa(index))).String()
}
