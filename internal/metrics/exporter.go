package metrics

import (
	"net"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const metricsPath = "/metrics"

// Exporter serves the registry over HTTP at /metrics.
type Exporter struct {
	server   *fasthttp.Server
	listener net.Listener
}

// Listen binds addr and starts serving the metrics in the background.
func (m *Metrics) Listen(addr string, logger log.Interface) (*Exporter, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "metrics: listen on %s", addr)
	}

	promHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	)

	e := &Exporter{
		listener: ln,
		server: &fasthttp.Server{
			Name: "tcpserver-metrics",
			Handler: func(ctx *fasthttp.RequestCtx) {
				if string(ctx.Path()) != metricsPath {
					ctx.Error("not found", fasthttp.StatusNotFound)
					return
				}
				promHandler(ctx)
			},
		},
	}

	go func() {
		if err := e.server.Serve(ln); err != nil {
			logger.WithError(err).Warn("metrics exporter stopped")
		}
	}()

	logger.WithField("addr", ln.Addr().String()).Info("metrics exporter listening")
	return e, nil
}

func (e *Exporter) Addr() net.Addr {
	return e.listener.Addr()
}

// Close stops accepting scrapes and waits for in-flight ones.
func (e *Exporter) Close() error {
	return e.server.Shutdown()
}
