package template

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"alphaforge/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig maps the templates section of the registry file.
type FileConfig struct {
	Templates map[string]Template `yaml:"templates"`
}

// Snapshot is an immutable view of the registered template set.
type Snapshot struct {
	Version   int64
	LoadedAt  time.Time
	Templates map[string]Template
}

// ChangeListener fires after a successful registry reload.
type ChangeListener func(Snapshot)

// Registry manages the template set. File-backed registries hot-reload on
// changes to the source file; static registries never change.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewRegistry reads templates from a YAML file and watches it for updates.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("template registry requires a path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read template registry failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("template registry reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// NewStaticRegistry builds a registry from an in-memory template set.
// Used for the built-in defaults and in tests.
func NewStaticRegistry(templates []Template) *Registry {
	set := make(map[string]Template, len(templates))
	for _, tpl := range templates {
		norm := normalizeTemplate(tpl.ID, tpl)
		set[norm.ID] = norm
	}
	return &Registry{snapshot: Snapshot{Version: 1, LoadedAt: time.Now(), Templates: set}}
}

// OnChange registers a listener invoked after every successful reload.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Snapshot returns a copy of the current template set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// Template returns the template with the given ID.
func (r *Registry) Template(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.snapshot.Templates[strings.TrimSpace(id)]
	return tpl, ok
}

// IDs returns all template IDs in sorted order. The ordering is the
// deterministic tie-break used by exploration.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.snapshot.Templates))
	for id := range r.snapshot.Templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ByRole returns the first template (by sorted ID) carrying the role.
func (r *Registry) ByRole(role string) (Template, bool) {
	role = strings.TrimSpace(role)
	if role == "" {
		return Template{}, false
	}
	for _, id := range r.IDs() {
		tpl, ok := r.Template(id)
		if ok && tpl.Role == role {
			return tpl, true
		}
	}
	return Template{}, false
}

// Simplest returns the first structurally simple template by sorted ID.
// It is the downgrade target for critical architecture-complexity issues.
func (r *Registry) Simplest() (Template, bool) {
	for _, id := range r.IDs() {
		tpl, ok := r.Template(id)
		if ok && tpl.Complexity == ComplexitySimple {
			return tpl, true
		}
	}
	return Template{}, false
}

// Validate checks params against the named template's schema.
func (r *Registry) Validate(id string, params map[string]any) error {
	tpl, ok := r.Template(id)
	if !ok {
		return fmt.Errorf("unknown template: %s", id)
	}
	return tpl.Validate(params)
}

func (r *Registry) reload() error {
	cfg, err := readRegistryFile(r.path)
	if err != nil {
		return err
	}
	templates := make(map[string]Template, len(cfg.Templates))
	for name, tpl := range cfg.Templates {
		norm := normalizeTemplate(name, tpl)
		templates[norm.ID] = norm
	}
	if len(templates) == 0 {
		return fmt.Errorf("template registry %s defines no templates", r.path)
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:   r.snapshot.Version + 1,
		LoadedAt:  time.Now(),
		Templates: templates,
	}
	r.mu.Unlock()
	logger.Infof("template registry loaded %d templates from %s", len(templates), filepath.Base(r.path))
	return nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Errorf("template registry listener panic: %v", rec)
				}
			}()
			cb(snap)
		}(fn)
	}
}

func normalizeTemplate(name string, tpl Template) Template {
	tpl.ID = strings.TrimSpace(tpl.ID)
	if tpl.ID == "" {
		tpl.ID = strings.TrimSpace(name)
	}
	tpl.Description = strings.TrimSpace(tpl.Description)
	if tpl.Complexity != ComplexityComplex {
		tpl.Complexity = ComplexitySimple
	}
	if len(tpl.Schema) > 0 {
		if compiled, err := compileSchema(tpl.Schema); err != nil {
			logger.Errorf("template schema compile failed id=%s: %v", tpl.ID, err)
		} else {
			tpl.schemaCompiled = compiled
		}
	}
	return tpl
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:   src.Version,
		LoadedAt:  src.LoadedAt,
		Templates: make(map[string]Template, len(src.Templates)),
	}
	for id, tpl := range src.Templates {
		dst.Templates[id] = tpl
	}
	return dst
}

func readRegistryFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read template registry failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse template registry failed: %w", err)
	}
	return cfg, nil
}
