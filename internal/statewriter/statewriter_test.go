package statewriter

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sampleState() store.State {
	st := store.NewState()
	id := uuid.New()
	st.Resources[id] = &hue.Room{ID: id, Metadata: hue.Metadata{Name: "Living Room"}}
	idx := uint32(3)
	st.Aux[id] = store.AuxData{IDV1Index: &idx}
	st.IDV1Reverse[idx] = id
	return st
}

func TestSerializeLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := sampleState()

	body, err := Serialize(st)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/state.yaml", body, 0600))

	loaded, err := Load(fs, "/state.yaml")
	require.NoError(t, err)

	assert.Len(t, loaded.Resources, 1)
	for id, res := range st.Resources {
		got, ok := loaded.Resources[id]
		require.True(t, ok)
		assert.Equal(t, res.RType(), got.RType())
		room, ok := got.(*hue.Room)
		require.True(t, ok)
		assert.Equal(t, "Living Room", room.Metadata.Name)
	}
}

func TestLoad_MissingVersionIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/state.yaml", []byte("resources: {}\n"), 0600))

	_, err := Load(fs, "/state.yaml")
	require.Error(t, err)
	var verErr *StateVersionNotFoundError
	assert.ErrorAs(t, err, &verErr)
}

func TestLoad_V0MigratesToBackupAndEmptyState(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/state.yaml", []byte("version: 0\nresources: {}\n"), 0600))

	st, err := Load(fs, "/state.yaml")
	require.NoError(t, err)
	assert.Empty(t, st.Resources)

	exists, err := afero.Exists(fs, "/state.v0.bak")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "/state.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriter_DebouncesBurstsIntoOneWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "/state.yaml", testLogger())

	stop := make(chan struct{})
	done := make(chan struct{})
	calls := 0
	snapshot := func() store.State {
		calls++
		return sampleState()
	}

	go func() {
		w.Run(stop, snapshot)
		close(done)
	}()

	w.Notify()
	w.Notify()
	w.Notify()

	time.Sleep(StabilizeTime + 300*time.Millisecond)
	close(stop)
	<-done

	exists, err := afero.Exists(fs, "/state.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, calls)
}

func TestWriter_SkipsWriteWhenUnchanged(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "/state.yaml", testLogger())
	st := sampleState()

	require.NoError(t, w.writeIfChanged(st))
	require.NoError(t, afero.WriteFile(fs, "/state.yaml", []byte("x"), 0600))
	require.NoError(t, w.writeIfChanged(st))

	first, err := afero.ReadFile(fs, "/state.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x", string(first), "an unchanged snapshot must not be rewritten")
}
