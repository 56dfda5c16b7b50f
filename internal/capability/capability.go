// Package capability records which optional external tools are installed.
// The registry is probed once at startup and queried before a conversion path
// is taken.
package capability

import (
	"os"
	"os/exec"
	"sort"
	"sync"

	"go-filetools/internal/apperrors"

	"github.com/sirupsen/logrus"
)

// Known capability names.
const (
	Office      = "office"
	BgRemoval   = "background-removal"
	Ghostscript = "ghostscript"
)

// Capability is one optional collaborator.
type Capability struct {
	Name      string                    `json:"name"`
	Label     string                    `json:"label"`
	Kind      apperrors.UnavailableKind `json:"kind"`
	Available bool                      `json:"available"`
	Path      string                    `json:"path,omitempty"`
	Hint      string                    `json:"hint,omitempty"`
}

// Spec describes how to find a capability.
type Spec struct {
	Name       string
	Label      string
	Kind       apperrors.UnavailableKind
	Override   string
	Candidates []string
	Hint       string
}

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

type Registry struct {
	caps     map[string]Capability
	mutex    sync.RWMutex
	lookPath LookPathFunc
	log      logrus.FieldLogger
}

func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{
		caps:     make(map[string]Capability),
		lookPath: exec.LookPath,
		log:      log,
	}
}

// WithLookPath swaps the binary lookup, for tests.
func (r *Registry) WithLookPath(fn LookPathFunc) *Registry {
	r.lookPath = fn
	return r
}

// DefaultSpecs lists the collaborators the tools know about. Overrides come
// from configuration and take precedence over PATH lookup.
func DefaultSpecs(sofficePath, rembgPath, gsPath string) []Spec {
	return []Spec{
		{
			Name:       Office,
			Label:      "LibreOffice",
			Kind:       apperrors.KindRuntime,
			Override:   sofficePath,
			Candidates: []string{"soffice", "libreoffice", "/Applications/LibreOffice.app/Contents/MacOS/soffice"},
			Hint:       "Install LibreOffice and make sure the soffice command is on PATH (or set SOFFICE_PATH).",
		},
		{
			Name:       BgRemoval,
			Label:      "rembg",
			Kind:       apperrors.KindLibrary,
			Override:   rembgPath,
			Candidates: []string{"rembg"},
			Hint:       "Install the background removal model with: pip install \"rembg[cli]\" (or set REMBG_PATH).",
		},
		{
			Name:       Ghostscript,
			Label:      "Ghostscript",
			Kind:       apperrors.KindRuntime,
			Override:   gsPath,
			Candidates: []string{"gs", "gswin64c", "gswin32c"},
			Hint:       "Install Ghostscript for stronger PDF compression (or set GHOSTSCRIPT_PATH).",
		},
	}
}

// Probe resolves every spec and stores the result.
func (r *Registry) Probe(specs []Spec) {
	for _, spec := range specs {
		c := Capability{Name: spec.Name, Label: spec.Label, Kind: spec.Kind, Hint: spec.Hint}
		if path, ok := r.resolve(spec); ok {
			c.Available = true
			c.Path = path
		}
		r.mutex.Lock()
		r.caps[spec.Name] = c
		r.mutex.Unlock()

		r.log.WithFields(logrus.Fields{
			"capability": c.Name,
			"available":  c.Available,
			"path":       c.Path,
		}).Info("probed capability")
	}
}

func (r *Registry) resolve(spec Spec) (string, bool) {
	if spec.Override != "" {
		if info, err := os.Stat(spec.Override); err == nil && !info.IsDir() {
			return spec.Override, true
		}
		if path, err := r.lookPath(spec.Override); err == nil {
			return path, true
		}
		r.log.WithField("override", spec.Override).Warn("configured path for " + spec.Label + " not found")
	}
	for _, candidate := range spec.Candidates {
		if path, err := r.lookPath(candidate); err == nil {
			return path, true
		}
	}
	return "", false
}

// Get returns the probed state of name.
func (r *Registry) Get(name string) (Capability, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// Available reports whether name was found.
func (r *Registry) Available(name string) bool {
	c, ok := r.Get(name)
	return ok && c.Available
}

// Require returns the executable path for name, or an unavailable error that
// distinguishes a missing library from a missing runtime dependency.
func (r *Registry) Require(name string) (string, error) {
	c, ok := r.Get(name)
	if !ok {
		return "", apperrors.NewUnavailableError(apperrors.KindLibrary, "Unknown capability "+name, "")
	}
	if c.Available {
		return c.Path, nil
	}
	if c.Kind == apperrors.KindRuntime {
		return "", apperrors.NewUnavailableError(c.Kind, "Required runtime dependency "+c.Label+" was not found", c.Hint)
	}
	return "", apperrors.NewUnavailableError(c.Kind, c.Label+" is not installed", c.Hint)
}

// All returns every probed capability sorted by name.
func (r *Registry) All() []Capability {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]Capability, 0, len(r.caps))
	for _, c := range r.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
