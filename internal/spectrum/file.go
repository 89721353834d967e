// Package spectrum provides the spectrum-file registry and the foreground
// (file, sample selection) state the rest of the application keys on.
package spectrum

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SampleSet is a normalized (sorted, deduplicated) set of sample numbers.
type SampleSet []int

// NewSampleSet builds a normalized sample set.
func NewSampleSet(nums ...int) SampleSet {
	seen := make(map[int]struct{}, len(nums))
	out := make(SampleSet, 0, len(nums))
	for _, n := range nums {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Equal reports whether two sets hold the same sample numbers.
func (s SampleSet) Equal(o SampleSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i, n := range s {
		if o[i] != n {
			return false
		}
	}
	return true
}

// Contains reports whether n is in the set.
func (s SampleSet) Contains(n int) bool {
	i := sort.SearchInts(s, n)
	return i < len(s) && s[i] == n
}

// String returns the samples as a comma-separated list.
func (s SampleSet) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// File is a loaded spectrum file.
//
// The Token is a registry-issued opaque identity: collaborators that must
// refer to a file without extending its lifetime (undo history, the edit
// journal) hold the token, never the File.
type File struct {
	// Token is the stable opaque identity of this file.
	Token string

	// Path is the on-disk location (empty for synthetic spectra).
	Path string

	// Name is the display name.
	Name string

	// Detector is the detector-system name from the file metadata.
	Detector string

	// Samples are the sample numbers present in the file.
	Samples SampleSet
}

// NewFile creates a file record with a fresh identity token.
func NewFile(path, detector string, samples SampleSet) *File {
	name := filepath.Base(path)
	if path == "" {
		name = "unnamed"
	}
	return &File{
		Token:    uuid.NewString(),
		Path:     path,
		Name:     name,
		Detector: detector,
		Samples:  samples,
	}
}
