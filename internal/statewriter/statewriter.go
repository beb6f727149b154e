// Package statewriter implements the bridge's single-file persistence:
// loading the YAML state file at startup (with the v0->v1 migration
// rule from spec.md §6) and, while running, a debounced writer that
// coalesces bursts of store mutations into one atomic snapshot.
package statewriter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// StabilizeTime is the debounce window: a burst of notifications within
// this window collapses into a single write, matching the reference
// bridge's config_writer task.
const StabilizeTime = time.Second

// StateVersionNotFoundError is returned by Load when the file has no
// top-level "version" key; per spec.md §6 this is a startup-fatal error.
type StateVersionNotFoundError struct{ Path string }

func (e *StateVersionNotFoundError) Error() string {
	return fmt.Sprintf("statewriter: %s: no version field in state file", e.Path)
}

// document is the on-disk YAML shape: a version tag plus the resource and
// aux maps, keyed by UUID string.
type document struct {
	Version   *int                    `yaml:"version"`
	Resources map[string]resourceDoc  `yaml:"resources"`
	Aux       map[string]auxDoc       `yaml:"aux"`
}

type resourceDoc struct {
	RType hue.RType      `yaml:"rtype"`
	Value map[string]any `yaml:"value"`
}

type auxDoc struct {
	IDV1Index *uint32 `yaml:"id_v1_index,omitempty"`
	Topic     *string `yaml:"topic,omitempty"`
}

// Load reads and decodes the state file at path, applying the v0->v1
// migration rule: a version-0 file is renamed to a ".v0.bak" sibling and
// rebuilt as an empty v1 state (v0's resource shape predates this bridge
// and cannot be mechanically upgraded, matching the reference bridge's own
// documented escape hatch of starting fresh after the rename). A v1 file
// loads directly. A missing "version" key is startup-fatal.
func Load(fs afero.Fs, path string) (store.State, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return store.State{}, err
	}

	var probe struct {
		Version *int `yaml:"version"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return store.State{}, fmt.Errorf("statewriter: decode %s: %w", path, err)
	}
	if probe.Version == nil {
		return store.State{}, &StateVersionNotFoundError{Path: path}
	}

	if *probe.Version == 0 {
		backup := strings.TrimSuffix(path, filepath.Ext(path)) + ".v0.bak"
		if err := fs.Rename(path, backup); err != nil {
			return store.State{}, fmt.Errorf("statewriter: backing up v0 state file: %w", err)
		}
		return store.NewState(), nil
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return store.State{}, fmt.Errorf("statewriter: decode %s: %w", path, err)
	}

	return fromDocument(doc)
}

func fromDocument(doc document) (store.State, error) {
	st := store.NewState()

	for idStr, rd := range doc.Resources {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return store.State{}, fmt.Errorf("statewriter: bad resource id %q: %w", idStr, err)
		}

		body, err := json.Marshal(rd.Value)
		if err != nil {
			return store.State{}, fmt.Errorf("statewriter: re-marshal resource %q: %w", idStr, err)
		}
		res, err := hue.FromValue(rd.RType, body)
		if err != nil {
			return store.State{}, fmt.Errorf("statewriter: decode resource %q: %w", idStr, err)
		}
		st.Resources[id] = res
	}

	for idStr, ad := range doc.Aux {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return store.State{}, fmt.Errorf("statewriter: bad aux id %q: %w", idStr, err)
		}
		st.Aux[id] = store.AuxData{IDV1Index: ad.IDV1Index, Topic: ad.Topic}
		if ad.IDV1Index != nil {
			st.IDV1Reverse[*ad.IDV1Index] = id
		}
	}

	return st, nil
}

// Serialize renders state into the same document shape Load reads back,
// the single source of truth for both paths.
func Serialize(state store.State) ([]byte, error) {
	doc := document{
		Version:   &state.Version,
		Resources: make(map[string]resourceDoc, len(state.Resources)),
		Aux:       make(map[string]auxDoc, len(state.Aux)),
	}

	for id, res := range state.Resources {
		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("statewriter: marshal resource %s: %w", id, err)
		}

		var value map[string]any
		if pt, ok := res.(*hue.Passthrough); ok {
			value = pt.Raw
		} else if err := json.Unmarshal(body, &value); err != nil {
			return nil, fmt.Errorf("statewriter: re-decode resource %s: %w", id, err)
		}

		doc.Resources[id.String()] = resourceDoc{RType: res.RType(), Value: value}
	}

	for id, aux := range state.Aux {
		doc.Aux[id.String()] = auxDoc{IDV1Index: aux.IDV1Index, Topic: aux.Topic}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("statewriter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Writer debounces store-change notifications into coalesced atomic
// snapshot writes: wait for a notify, then wait until StabilizeTime
// passes with no further notify, serialize, and skip the write entirely
// if the bytes are unchanged from the last write.
type Writer struct {
	fs   afero.Fs
	path string
	log  *logrus.Entry

	mu       sync.Mutex
	notifyCh chan struct{}
	lastBody []byte
}

// NewWriter wraps fs/path; the caller is expected to call Notify after
// every store mutation and run Run in its own goroutine.
func NewWriter(fs afero.Fs, path string, log *logrus.Entry) *Writer {
	return &Writer{
		fs:       fs,
		path:     path,
		log:      log.WithField("component", "statewriter"),
		notifyCh: make(chan struct{}, 1),
	}
}

// Notify signals that the store changed; non-blocking, coalesces bursts.
func (w *Writer) Notify() {
	select {
	case w.notifyCh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx-like stop is closed, debouncing notifications into
// calls to snapshot. Errors are logged and never stop the loop, per
// spec.md §4.E/§7.
func (w *Writer) Run(stop <-chan struct{}, snapshot func() store.State) {
	for {
		select {
		case <-stop:
			return
		case <-w.notifyCh:
		}

		timer := time.NewTimer(StabilizeTime)
	debounce:
		for {
			select {
			case <-stop:
				timer.Stop()
				return
			case <-w.notifyCh:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(StabilizeTime)
			case <-timer.C:
				break debounce
			}
		}

		if err := w.writeIfChanged(snapshot()); err != nil {
			w.log.WithError(err).Error("failed to write state file")
		}
	}
}

func (w *Writer) writeIfChanged(state store.State) error {
	body, err := Serialize(state)
	if err != nil {
		return err
	}

	w.mu.Lock()
	unchanged := bytes.Equal(body, w.lastBody)
	w.mu.Unlock()
	if unchanged {
		return nil
	}

	tmp := w.path + ".tmp"
	if err := afero.WriteFile(w.fs, tmp, body, 0600); err != nil {
		return fmt.Errorf("statewriter: write temp file: %w", err)
	}
	if err := w.fs.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("statewriter: rename temp file: %w", err)
	}

	w.mu.Lock()
	w.lastBody = body
	w.mu.Unlock()

	w.log.Debug("wrote state file")
	return nil
}
