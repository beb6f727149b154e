package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/eventstream"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

func newTestV1Handler(t *testing.T) (*V1Handler, *store.Resources, *backend.Bus) {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	resources := store.New(store.NewState(), eventstream.New(log), log)
	bus := backend.NewBus(log)
	return NewV1Handler(resources, bus, log), resources, bus
}

func TestV1ServeLights_ListProjectsByV1ID(t *testing.T) {
	h, resources, _ := newTestV1Handler(t)
	link := hue.RTypeLight.LinkTo(hue.RTypeLight.DeterministicString("l1"))
	require.NoError(t, resources.Add(link, &hue.Light{ID: link.RID, Metadata: hue.Metadata{Name: "Desk"}, On: hue.On{On: true}}))

	req := httptest.NewRequest(http.MethodGet, "/api/someuser/lights", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Contains(t, out, "0")
	assert.Equal(t, "Desk", out["0"]["name"])
}

func TestV1PutLightState_TranslatesToV2UpdateAndPublishes(t *testing.T) {
	h, resources, bus := newTestV1Handler(t)
	link := hue.RTypeLight.LinkTo(hue.RTypeLight.DeterministicString("l1"))
	require.NoError(t, resources.Add(link, &hue.Light{ID: link.RID}))

	sub, cancel := bus.Subscribe(1)
	defer cancel()

	req := httptest.NewRequest(http.MethodPut, "/api/someuser/lights/0/state", strings.NewReader(`{"on":true,"bri":127}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Get[*hue.Light](resources, link)
	require.NoError(t, err)
	assert.True(t, got.On.On)
	require.NotNil(t, got.Dimming)

	select {
	case req := <-sub:
		require.Equal(t, backend.KindLightUpdate, req.Kind)
	default:
		t.Fatal("expected a published backend request")
	}
}

func TestV1ServeGroups_SyntheticAllLightsGroup(t *testing.T) {
	h, resources, _ := newTestV1Handler(t)
	link := hue.RTypeLight.LinkTo(hue.RTypeLight.DeterministicString("l1"))
	require.NoError(t, resources.Add(link, &hue.Light{ID: link.RID, On: hue.On{On: true}}))

	req := httptest.NewRequest(http.MethodGet, "/api/someuser/groups/0", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	state := out["state"].(map[string]any)
	assert.Equal(t, true, state["any_on"])
}

func TestV1PutGroupAction_Group0FansOutToEveryLight(t *testing.T) {
	h, resources, bus := newTestV1Handler(t)
	l1 := hue.RTypeLight.LinkTo(hue.RTypeLight.DeterministicString("l1"))
	l2 := hue.RTypeLight.LinkTo(hue.RTypeLight.DeterministicString("l2"))
	require.NoError(t, resources.Add(l1, &hue.Light{ID: l1.RID}))
	require.NoError(t, resources.Add(l2, &hue.Light{ID: l2.RID}))

	sub, cancel := bus.Subscribe(4)
	defer cancel()

	req := httptest.NewRequest(http.MethodPut, "/api/someuser/groups/0/action", strings.NewReader(`{"on":true}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	got1, _ := store.Get[*hue.Light](resources, l1)
	got2, _ := store.Get[*hue.Light](resources, l2)
	assert.True(t, got1.On.On)
	assert.True(t, got2.On.On)

	count := 0
	for {
		select {
		case <-sub:
			count++
		default:
			assert.Equal(t, 2, count)
			return
		}
	}
}

func TestV1ServeScenes_UnknownIDReturnsNotFound(t *testing.T) {
	h, _, _ := newTestV1Handler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/someuser/scenes/9", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
