package app

import (
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/config"
	"github.com/yveskaufmann/huebridge/internal/discovery"
	"github.com/yveskaufmann/huebridge/internal/entertainment"
	"github.com/yveskaufmann/huebridge/internal/statewriter"
	"github.com/yveskaufmann/huebridge/internal/store"
	"github.com/yveskaufmann/huebridge/internal/sunset"
	"github.com/yveskaufmann/huebridge/internal/z2m"
)

// App owns every long-lived task the bridge runs: the HTTP/HTTPS listeners,
// one z2m adapter per configured server, the DTLS Entertainment listener,
// the mDNS advertiser, and the state-file writer. Run blocks until a
// shutdown signal, then stops each task at its next suspension point
// (spec.md §5's cancellation model).
type App struct {
	logger    *log.Entry
	config    *config.Config
	resources *store.Resources

	z2mAdapters  []*z2m.Adapter
	entServer    *entertainment.Server
	advertiser   *discovery.Advertiser
	sunScheduler *sunset.Scheduler
	stateWriter  *statewriter.Writer

	httpServer  *http.Server
	httpsServer *http.Server

	stopChn chan struct{}
}

func (a *App) Logger() *log.Entry {
	return a.logger
}

func (a *App) Run() error {
	a.logger.Info("starting bridge")

	var wg sync.WaitGroup

	for _, adapter := range a.z2mAdapters {
		wg.Add(1)
		go func(ad *z2m.Adapter) {
			defer wg.Done()
			ad.Run(a.stopChn)
		}(adapter)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.entServer.Run(a.stopChn); err != nil {
			a.logger.WithError(err).Warn("entertainment server stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.advertiser.Run(a.stopChn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.stateWriter.Run(a.stopChn, a.resources.Snapshot)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sunScheduler.Run(a.stopChn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.logger.WithField("addr", a.httpServer.Addr).Info("serving HTTP")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Warn("http server stopped")
		}
	}()

	if a.httpsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.logger.WithField("addr", a.httpsServer.Addr).Info("serving HTTPS")
			if err := a.httpsServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				a.logger.WithError(err).Warn("https server stopped")
			}
		}()
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	<-signalChan
	a.logger.Info("received interrupt signal, shutting down")
	signal.Stop(signalChan)

	return a.Stop(&wg)
}

func (a *App) Stop(wg *sync.WaitGroup) error {
	close(a.stopChn)
	_ = a.httpServer.Close()
	if a.httpsServer != nil {
		_ = a.httpsServer.Close()
	}
	wg.Wait()
	return nil
}

// tlsConfigFromCertFile loads a self-signed certificate for the HTTPS
// listener; a bridge with no cert configured serves plain HTTP only.
func tlsConfigFromCertFile(certFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, certFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}
