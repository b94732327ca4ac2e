// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package skill

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/agentcore/pkg/coreerr"
)

// rawSkillYAML mirrors the on-disk skill.yaml keys consumed by the
// registry (spec.md §6). A permissive parser: deep nesting beyond these
// keys is ignored.
type rawSkillYAML struct {
	Name        string                 `yaml:"name"`
	Version     string                 `yaml:"version"`
	Description string                 `yaml:"description"`
	Tags        []string               `yaml:"tags"`
	Type        string                 `yaml:"type"`
	Kind        string                 `yaml:"kind"`

	InputSchema    map[string]interface{} `yaml:"input_schema"`
	OutputSchema   map[string]interface{} `yaml:"output_schema"`
	PromptTemplate string                 `yaml:"prompt_template"`
	Execution      *rawExecution          `yaml:"execution"`
}

type rawExecution struct {
	Handler  string `yaml:"handler"`
	Function string `yaml:"function"`
	Timeout  int64  `yaml:"timeout"`
}

func (r *rawSkillYAML) kind() Kind {
	k := r.Kind
	if k == "" {
		k = r.Type
	}
	return Kind(k)
}

// Registry discovers skill directories, parses their metadata, and loads
// full definitions on demand. It implements spec.md §4.1 exactly.
//
// Metadata lookup is a single map guarded by mu; unlike a generic
// registry type, the skill-specific duplicate-name and Kind-aware
// validation in Scan can live right next to the map it mutates instead
// of behind a separate Register/Remove API.
type Registry struct {
	skillsDir string
	logger    *slog.Logger

	scanOnce sync.Once

	mu       sync.RWMutex
	byName   map[string]*Metadata
	nameList []string // insertion order, for deterministic List()

	defsMu sync.Mutex
	defs    map[string]*Definition

	watcher *fsnotify.Watcher
	watchMu sync.Mutex
}

// New constructs a Registry rooted at skillsDir. Scan is not performed
// until the first List/LoadFull/explicit Scan call (idempotent-init).
func New(skillsDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		skillsDir: skillsDir,
		logger:    logger,
		byName:    make(map[string]*Metadata),
		defs:      make(map[string]*Definition),
	}
}

// Scan reads each direct subdirectory of skillsDir, parses its skill.yaml,
// and registers the resulting Metadata. It is idempotent: calling it again
// re-scans (matching the Reload contract for explicit calls), but the
// lazy first-scan used internally by List/LoadFull runs at most once.
func (r *Registry) Scan() ([]*Metadata, error) {
	entries, err := os.ReadDir(r.skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("skills directory does not exist", "dir", r.skillsDir)
			return nil, nil
		}
		return nil, coreerr.Wrap(coreerr.KindInternal, "reading skills directory", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.skillsDir, entry.Name())
		metaPath := filepath.Join(dir, "skill.yaml")

		raw, err := os.ReadFile(metaPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue // subdirectories without skill.yaml are skipped silently
			}
			r.logger.Warn("failed to read skill.yaml", "dir", dir, "error", err)
			continue
		}

		var parsed rawSkillYAML
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			r.logger.Warn("malformed skill.yaml, skipping", "dir", dir, "error", err)
			continue
		}
		if parsed.Name == "" {
			r.logger.Warn("skill.yaml missing name, skipping", "dir", dir)
			continue
		}

		meta := &Metadata{
			Name:        parsed.Name,
			Version:     parsed.Version,
			Description: parsed.Description,
			Tags:        parsed.Tags,
			Kind:        parsed.kind(),
			Path:        dir,
		}
		meta.tagSet = make(map[string]struct{}, len(meta.Tags))
		for _, t := range meta.Tags {
			meta.tagSet[t] = struct{}{}
		}

		def := &Definition{
			Metadata:       *meta,
			InputSchema:    parsed.InputSchema,
			OutputSchema:   parsed.OutputSchema,
			PromptTemplate: parsed.PromptTemplate,
			Checksum:       checksum(raw),
		}
		if parsed.Execution != nil {
			def.Execution = &ExecutionDescriptor{
				HandlerFile:  parsed.Execution.Handler,
				FunctionName: parsed.Execution.Function,
				TimeoutMs:    parsed.Execution.Timeout,
			}
		}

		if err := validateDefinition(def); err != nil {
			r.logger.Warn("invalid skill definition, skipping", "dir", dir, "error", err)
			continue
		}

		r.mu.Lock()
		if _, exists := r.byName[meta.Name]; exists {
			r.logger.Warn("duplicate skill name, last-scanned wins", "name", meta.Name, "dir", dir)
		}
		r.byName[meta.Name] = meta
		r.mu.Unlock()

		r.defsMu.Lock()
		r.defs[meta.Name] = def
		r.defsMu.Unlock()

		names = append(names, meta.Name)
	}

	r.mu.Lock()
	r.nameList = names
	all := make([]*Metadata, 0, len(r.byName))
	for _, m := range r.byName {
		all = append(all, m)
	}
	r.mu.Unlock()

	return all, nil
}

// ensureScanned performs the lazy first scan exactly once.
func (r *Registry) ensureScanned() {
	r.scanOnce.Do(func() {
		if _, err := r.Scan(); err != nil {
			r.logger.Error("initial skill scan failed", "error", err)
		}
	})
}

// List returns metadata for all known skills. If tagsFilter is non-empty,
// only entries whose tags intersect the filter are returned.
func (r *Registry) List(tagsFilter []string) []*Metadata {
	r.ensureScanned()

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Walk nameList rather than ranging the map directly so List() is
	// deterministic (scan order) across calls, which matters for PTC
	// prompts built from it.
	all := make([]*Metadata, 0, len(r.nameList))
	for _, name := range r.nameList {
		m, ok := r.byName[name]
		if !ok {
			continue
		}
		if len(tagsFilter) == 0 || m.hasAnyTag(tagsFilter) {
			all = append(all, m)
		}
	}
	return all
}

// LoadFull returns the Definition for name that Scan parsed and cached;
// it does not read the skill file itself. Fails with SkillNotFound if no
// metadata exists.
func (r *Registry) LoadFull(name string) (*Definition, error) {
	r.ensureScanned()

	r.mu.RLock()
	_, exists := r.byName[name]
	r.mu.RUnlock()
	if !exists {
		return nil, coreerr.Newf(coreerr.KindSkillNotFound, "skill %q not found", name)
	}

	r.defsMu.Lock()
	defer r.defsMu.Unlock()
	def, ok := r.defs[name]
	if !ok {
		return nil, coreerr.Newf(coreerr.KindSkillNotFound, "skill %q not found", name)
	}
	return def, nil
}

// Reload discards caches and re-scans skillsDir.
func (r *Registry) Reload() error {
	r.mu.Lock()
	r.byName = make(map[string]*Metadata)
	r.nameList = nil
	r.mu.Unlock()

	r.defsMu.Lock()
	r.defs = make(map[string]*Definition)
	r.defsMu.Unlock()

	_, err := r.Scan()
	return err
}

// Watch starts an fsnotify watch on skillsDir (dev-mode only) and calls
// Reload whenever the directory changes. Returns a stop function.
func (r *Registry) Watch() (stop func(), err error) {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindInternal, "creating skill watcher", err)
	}
	if err := w.Add(r.skillsDir); err != nil {
		w.Close()
		return nil, coreerr.Wrap(coreerr.KindInternal, "watching skills directory", err)
	}
	r.watcher = w

	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-w.Events:
				if !ok {
					return
				}
				if err := r.Reload(); err != nil {
					r.logger.Error("skill reload failed", "error", err)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}

func checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func validateDefinition(def *Definition) error {
	switch def.Metadata.Kind {
	case KindPurePrompt:
		if def.PromptTemplate == "" {
			return fmt.Errorf("pure-prompt skill %q missing prompt_template", def.Metadata.Name)
		}
	case KindPureScript, KindHybrid:
		if def.Execution == nil || def.Execution.HandlerFile == "" || def.Execution.FunctionName == "" {
			return fmt.Errorf("%s skill %q missing execution descriptor", def.Metadata.Kind, def.Metadata.Name)
		}
	default:
		return fmt.Errorf("skill %q has unknown kind %q", def.Metadata.Name, def.Metadata.Kind)
	}
	return nil
}
