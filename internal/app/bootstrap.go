package app

import (
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/yveskaufmann/huebridge/internal/api"
	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/config"
	"github.com/yveskaufmann/huebridge/internal/discovery"
	"github.com/yveskaufmann/huebridge/internal/entertainment"
	"github.com/yveskaufmann/huebridge/internal/eventstream"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/logging"
	"github.com/yveskaufmann/huebridge/internal/statewriter"
	"github.com/yveskaufmann/huebridge/internal/store"
	"github.com/yveskaufmann/huebridge/internal/sunset"
	"github.com/yveskaufmann/huebridge/internal/z2m"
)

func Bootstrap() *App {
	logger := logging.NewLogger().WithField("component", "app")

	cfg, err := config.LoadConfigFromDefaultPath()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	mac, err := net.ParseMAC(cfg.Bridge.MAC)
	if err != nil || len(mac) != 6 {
		logger.Fatalf("invalid bridge.mac %q: %v", cfg.Bridge.MAC, err)
	}
	var mac6 [6]byte
	copy(mac6[:], mac)
	bridgeID := hue.BridgeIDString(mac6)

	fs := afero.NewOsFs()
	state, err := loadOrInitState(fs, cfg.Bifrost.StateFile, bridgeID, mac6, cfg.Bridge.Timezone, logger)
	if err != nil {
		logger.Fatalf("failed to load state file: %v", err)
	}

	events := eventstream.New(logger.WithField("component", "eventstream"))
	resources := store.New(state, events, logger.WithField("component", "store"))
	bus := backend.NewBus(logger.WithField("component", "backend"))

	var adapters []*z2m.Adapter
	for name, srv := range cfg.Z2M.Servers {
		adapter := z2m.NewAdapter(name, srv, cfg.Rooms, bridgeID, resources, bus, logger.WithField("z2m_server", name))
		adapters = append(adapters, adapter)
	}

	entServer := entertainment.NewServer(
		net.JoinHostPort("", portString(cfg.Bridge.EntmPort)),
		resources, bus, logger,
	)

	advertiser := discovery.NewAdvertiser(bridgeID, hue.BridgeModelID, cfg.Bridge.HTTPPort, logger)

	geoID := hue.RTypeGeolocation.DeterministicString(bridgeID + ":geolocation")
	sunScheduler := sunset.NewScheduler(resources, geoID, cfg.Bridge.Latitude, cfg.Bridge.Longitude, logger)

	writer := statewriter.NewWriter(fs, cfg.Bifrost.StateFile, logger)

	router := api.NewRouter(resources, bus, events, cfg.Bridge.MAC, logger.WithField("component", "api"))

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", portString(cfg.Bridge.HTTPPort)),
		Handler: router,
	}

	var httpsServer *http.Server
	if tlsCfg, err := tlsConfigFromCertFile(cfg.Bifrost.CertFile); err != nil {
		logger.WithError(err).Warn("no usable HTTPS certificate, serving HTTP only")
	} else {
		httpsServer = &http.Server{
			Addr:      net.JoinHostPort("", portString(cfg.Bridge.HTTPSPort)),
			Handler:   router,
			TLSConfig: tlsCfg,
		}
	}

	return &App{
		logger:      logger,
		config:      cfg,
		resources:   resources,
		z2mAdapters: adapters,
		entServer:   entServer,
		advertiser:  advertiser,
		sunScheduler: sunScheduler,
		stateWriter: writer,
		httpServer:  httpServer,
		httpsServer: httpsServer,
		stopChn:     make(chan struct{}),
	}
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}

// loadOrInitState loads the state file if present, or seeds a fresh State
// for a brand new bridge identity (spec.md §6's state file lifecycle).
func loadOrInitState(fs afero.Fs, path, bridgeID string, mac [6]byte, timezone string, log *logrus.Entry) (store.State, error) {
	if _, err := fs.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return store.State{}, err
		}
		log.Infof("no state file at %s, seeding a fresh bridge", path)
		scratchEvents := eventstream.New(log)
		resources := store.New(store.NewState(), scratchEvents, log)
		if err := store.SeedBridge(resources, bridgeID, mac, timezone); err != nil {
			return store.State{}, err
		}
		return resources.Snapshot(), nil
	}

	return statewriter.Load(fs, path)
}
