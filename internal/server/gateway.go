package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/cachectl"
)

const (
	controlPrefix   = "/_sw/"
	maxRequestBody  = 1 << 20
	maxPushPayload  = 4 << 10
	sourceHeader    = "X-Cache-Source"
	defaultRetryGap = 30 * time.Second
)

// Gateway puts a cache controller in front of an origin. Every request
// outside /_sw/ is answered by the controller; /_sw/ exposes the events the
// controller reacts to and the stream pages listen on.
type Gateway struct {
	ctl      *cachectl.Controller
	hub      *Hub
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

// NewGateway wires ctl and hub together. gatherer backs /metrics and may be nil.
func NewGateway(ctl *cachectl.Controller, hub *Hub, gatherer prometheus.Gatherer, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Gateway{ctl: ctl, hub: hub, gatherer: gatherer, log: log}
}

// Register mounts the control routes and sends everything else through the
// controller.
func (g *Gateway) Register(r *gin.Engine) {
	sw := r.Group("/_sw")
	sw.GET("/events", g.events)
	sw.GET("/state", g.state)
	sw.POST("/message", g.message)
	sw.POST("/sync", g.sync)
	sw.POST("/push", g.push)
	sw.POST("/notificationclick", g.notificationClick)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g.gatherer, promhttp.HandlerOpts{})))
	r.NoRoute(g.fetch)
}

// Bootstrap installs and activates the controller, retrying a failed
// install or activation every retry interval until ctx ends.
func (g *Gateway) Bootstrap(ctx context.Context, retry time.Duration) error {
	if retry <= 0 {
		retry = defaultRetryGap
	}
	for {
		if err := g.ctl.Install(ctx); err != nil {
			g.log.Warn("install failed, retrying", zap.Error(err), zap.Duration("retry_in", retry))
		} else if err := g.ctl.Activate(ctx); err != nil {
			g.log.Warn("activate failed, retrying", zap.Error(err), zap.Duration("retry_in", retry))
		} else {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}

func (g *Gateway) fetch(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, controlPrefix) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown control endpoint"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading request body"})
		return
	}
	req := cachectl.Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.RequestURI(),
		Header:      c.Request.Header.Clone(),
		Body:        body,
		Navigate:    isNavigation(c.Request),
		Destination: destination(c.Request),
	}

	resp, err := g.ctl.Fetch(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusBadGateway
		if errors.Is(err, cachectl.ErrOffline) {
			status = http.StatusServiceUnavailable
		}
		c.String(status, "%s", err.Error())
		return
	}

	c.Set("cache_source", string(resp.Source))
	h := c.Writer.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set(sourceHeader, string(resp.Source))
	c.Status(resp.Status)
	if _, err := c.Writer.Write(resp.Body); err != nil {
		g.log.Debug("write response", zap.Error(err))
	}
}

// isNavigation mirrors a browser's request mode: Sec-Fetch-Mode when sent,
// otherwise a GET that accepts HTML.
func isNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func destination(r *http.Request) string {
	if dest := r.Header.Get("Sec-Fetch-Dest"); dest != "" {
		return dest
	}
	if isNavigation(r) {
		return cachectl.DestinationDocument
	}
	return ""
}

func (g *Gateway) events(c *gin.Context) {
	id, events, disconnect := g.hub.Connect()
	defer disconnect()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(EventHello, gin.H{"clientId": id, "state": g.ctl.State(), "version": g.ctl.Version()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		}
	})
}

func (g *Gateway) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":         g.ctl.State(),
		"version":       g.ctl.Version(),
		"buckets":       g.ctl.Buckets(),
		"clients":       g.hub.Len(),
		"notifications": g.hub.Notifications(),
	})
}

func (g *Gateway) message(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading message"})
		return
	}
	if err := g.ctl.Message(c.Request.Context(), raw); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cachectl.ErrInvalidMessage) {
			status = http.StatusBadRequest
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "state": g.ctl.State()})
}

type syncRequest struct {
	Tag string `json:"tag" binding:"required"`
}

func (g *Gateway) sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := g.ctl.Sync(c.Request.Context(), req.Tag)
	c.JSON(http.StatusOK, gin.H{"tag": req.Tag, "notified": n})
}

func (g *Gateway) push(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPushPayload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading payload"})
		return
	}
	n, err := g.ctl.Push(c.Request.Context(), payload)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, n)
}

type clickRequest struct {
	ID     string `json:"id" binding:"required"`
	Action string `json:"action"`
}

func (g *Gateway) notificationClick(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.ctl.NotificationClick(c.Request.Context(), req.ID, req.Action); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cachectl.ErrNoClients) {
			status = http.StatusConflict
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
