package release

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// versionGroup is the capture group name every artifact pattern must define
const versionGroup = "version"

// PatchResult reports whether applying a version modified a file
type PatchResult int

const (
	Unchanged PatchResult = iota
	Changed
)

func (r PatchResult) String() string {
	if r == Changed {
		return "changed"
	}
	return "unchanged"
}

// ArtifactFile is one file carrying an embedded version
type ArtifactFile struct {
	Path string
	// Optional files are skipped with a warning when missing
	Optional bool
}

// ArtifactSpec describes where a version lives inside one or more files.
// Pattern must contain a named group "version"; only that group is replaced.
type ArtifactSpec struct {
	Name    string
	Files   []ArtifactFile
	Pattern *regexp.Regexp
}

// Validate checks that the pattern exposes a version group
func (s ArtifactSpec) Validate() error {
	if s.Pattern == nil {
		return fmt.Errorf("artifact %s: pattern is required", s.Name)
	}
	if s.Pattern.SubexpIndex(versionGroup) < 0 {
		return fmt.Errorf("artifact %s: pattern must contain a (?P<%s>...) group", s.Name, versionGroup)
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("artifact %s: at least one file is required", s.Name)
	}
	return nil
}

// FileReport is the per-file outcome of a patch pass
type FileReport struct {
	Artifact string
	Path     string
	Result   PatchResult
	// Skipped is set for optional files that do not exist
	Skipped bool
}

// Patcher applies versions to artifact files relative to Root
type Patcher struct {
	Root string
	// DryRun computes results without writing
	DryRun bool
}

// resolve returns the absolute location of a root-relative path
func (p *Patcher) resolve(path string) string {
	if filepath.IsAbs(path) || p.Root == "" {
		return path
	}
	return filepath.Join(p.Root, path)
}

// Apply writes v into file using spec's pattern.
// The file is only rewritten when its content actually changes.
func (p *Patcher) Apply(spec ArtifactSpec, file ArtifactFile, v Version) (PatchResult, error) {
	if err := spec.Validate(); err != nil {
		return Unchanged, err
	}

	path := p.resolve(file.Path)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Unchanged, &PatchError{Artifact: spec.Name, Path: file.Path, Err: ErrFileNotFound}
	}
	if err != nil {
		return Unchanged, &PatchError{Artifact: spec.Name, Path: file.Path, Err: err}
	}

	updated, found := substituteVersion(spec.Pattern, content, v)
	if !found {
		return Unchanged, &PatchError{Artifact: spec.Name, Path: file.Path, Err: ErrPatternNotFound}
	}
	if bytes.Equal(updated, content) {
		return Unchanged, nil
	}
	if p.DryRun {
		return Changed, nil
	}
	if err := writeFileAtomic(path, updated, 0644); err != nil {
		return Unchanged, &PatchError{Artifact: spec.Name, Path: file.Path, Err: err}
	}
	return Changed, nil
}

// ApplyAll patches every file of every spec. Optional files that are missing
// are reported as skipped; any other failure stops the pass immediately.
// Reports for files handled before the failure are still returned.
func (p *Patcher) ApplyAll(specs []ArtifactSpec, v Version, warn func(string)) ([]FileReport, error) {
	var reports []FileReport
	for _, spec := range specs {
		for _, file := range spec.Files {
			result, err := p.Apply(spec, file, v)
			if err != nil {
				if file.Optional && errors.Is(err, ErrFileNotFound) {
					if warn != nil {
						warn(fmt.Sprintf("%s not found, skipping", file.Path))
					}
					reports = append(reports, FileReport{Artifact: spec.Name, Path: file.Path, Skipped: true})
					continue
				}
				return reports, err
			}
			reports = append(reports, FileReport{Artifact: spec.Name, Path: file.Path, Result: result})
		}
	}
	return reports, nil
}

// Inspect returns the version currently embedded in file, the first match wins
func (p *Patcher) Inspect(spec ArtifactSpec, file ArtifactFile) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(p.resolve(file.Path))
	if errors.Is(err, fs.ErrNotExist) {
		return "", &PatchError{Artifact: spec.Name, Path: file.Path, Err: ErrFileNotFound}
	}
	if err != nil {
		return "", &PatchError{Artifact: spec.Name, Path: file.Path, Err: err}
	}
	group := spec.Pattern.SubexpIndex(versionGroup)
	for _, m := range spec.Pattern.FindAllSubmatchIndex(content, -1) {
		if m[2*group] >= 0 {
			return string(content[m[2*group]:m[2*group+1]]), nil
		}
	}
	return "", &PatchError{Artifact: spec.Name, Path: file.Path, Err: ErrPatternNotFound}
}

// substituteVersion replaces the version group of every match of re in content.
// Bytes outside the version group are copied through untouched. It reports
// false when no match had a version group to replace.
func substituteVersion(re *regexp.Regexp, content []byte, v Version) ([]byte, bool) {
	group := re.SubexpIndex(versionGroup)
	matches := re.FindAllSubmatchIndex(content, -1)

	var buf bytes.Buffer
	buf.Grow(len(content))
	last, replaced := 0, 0
	for _, m := range matches {
		start, end := m[2*group], m[2*group+1]
		if start < 0 {
			// group did not participate in this match
			continue
		}
		buf.Write(content[last:start])
		buf.WriteString(string(v))
		last = end
		replaced++
	}
	if replaced == 0 {
		return content, false
	}
	buf.Write(content[last:])
	return buf.Bytes(), true
}
