package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ManifestName is the workspace manifest file name.
const ManifestName = "simple.yml"

// LockfileName is the lockfile written next to the manifest.
const LockfileName = "simple.lock"

// Manifest represents the parsed contents of simple.yml.
type Manifest struct {
	Path     string
	Name     string
	Programs []string
	Limits   Limits
	Sources  map[string]*SourceSpec
}

// SourceSpec describes where extra program documents come from: a local directory or a
// git repository pinned by rev, tag, or branch.
type SourceSpec struct {
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	// Dir selects a subdirectory of the source to collect programs from.
	Dir string
}

// Root returns the manifest's directory.
func (m *Manifest) Root() string {
	if m == nil || m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// SourceNames returns the source names in sorted order.
func (m *Manifest) SourceNames() []string {
	if m == nil {
		return nil
	}
	names := lo.Keys(m.Sources)
	slices.Sort(names)
	return names
}

// LoadManifest parses simple.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest, issues := raw.toManifest(absPath)
	if err := manifest.validate(issues); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for simple.yml.
func FindManifest(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (m *Manifest) validate(issues []string) error {
	errs := ValidationError{Subject: "manifest", Issues: issues}
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, pattern := range m.Programs {
		if pattern == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("programs[%d] must be a non-empty string", i))
			continue
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("programs[%d]: invalid pattern %q", i, pattern))
		}
	}
	if m.Limits.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "limits.max_steps must not be negative")
	}
	for _, name := range m.SourceNames() {
		for _, issue := range m.Sources[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SourceSpec) validate() []string {
	var errs []string
	if s == nil {
		return []string{"must specify git or path"}
	}
	if s.Path != "" && s.Git != "" {
		errs = append(errs, "path sources cannot also specify git")
	}
	if s.Path == "" && s.Git == "" {
		errs = append(errs, "must specify git or path")
	}
	pins := lo.Filter([]string{s.Rev, s.Tag, s.Branch}, func(pin string, _ int) bool { return pin != "" })
	if s.Git != "" && len(pins) == 0 {
		errs = append(errs, "git sources require rev, tag, or branch")
	}
	if len(pins) > 1 {
		errs = append(errs, "rev, tag, and branch are mutually exclusive")
	}
	if s.Path != "" && len(pins) > 0 {
		errs = append(errs, "path sources cannot be pinned")
	}
	if filepath.IsAbs(s.Dir) || strings.HasPrefix(filepath.Clean(s.Dir), "..") {
		errs = append(errs, fmt.Sprintf("dir %q must stay inside the source", s.Dir))
	}
	return errs
}

type manifestFile struct {
	Name     string     `yaml:"name"`
	Programs stringList `yaml:"programs"`
	Limits   limitsYAML `yaml:"limits"`
	Sources  sourceMap  `yaml:"sources"`
}

type sourceMap map[string]*SourceSpec

type stringList []string

func (mf manifestFile) toManifest(path string) (*Manifest, []string) {
	var issues []string
	result := &Manifest{
		Path:     path,
		Name:     sanitizeSegment(mf.Name),
		Programs: mf.Programs.Clone(),
		Limits:   Limits{MaxSteps: mf.Limits.MaxSteps},
		Sources:  make(map[string]*SourceSpec, len(mf.Sources)),
	}
	if timeout := strings.TrimSpace(mf.Limits.Timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			issues = append(issues, fmt.Sprintf("limits.timeout: %v", err))
		} else {
			result.Limits.Timeout = d
		}
	}
	for name, spec := range mf.Sources {
		if spec == nil {
			continue
		}
		copy := *spec
		result.Sources[sanitizeSegment(name)] = &copy
	}
	return result, issues
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	return lo.FilterMap(l, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (sm *sourceMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*sm = make(sourceMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: sources must be a mapping")
	}
	result := make(sourceMap, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: source names must be non-empty")
		}
		spec, err := decodeSourceSpec(value.Content[i+1])
		if err != nil {
			return fmt.Errorf("manifest: source %q: %w", key, err)
		}
		result[key] = spec
	}
	*sm = result
	return nil
}

func decodeSourceSpec(value *yaml.Node) (*SourceSpec, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		// A bare string is a local path.
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			return nil, fmt.Errorf("expected a path or a mapping")
		}
		return &SourceSpec{Path: strings.TrimSpace(value.Value)}, nil
	case yaml.MappingNode:
		var raw struct {
			Path   string `yaml:"path"`
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Dir    string `yaml:"dir"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		return &SourceSpec{
			Path:   strings.TrimSpace(raw.Path),
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Dir:    strings.TrimSpace(raw.Dir),
		}, nil
	case yaml.AliasNode:
		return decodeSourceSpec(value.Alias)
	default:
		return nil, fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
