package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/alarm"
	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/locations"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/timecalc"
	"github.com/Tiliavir/clocktime/internal/tzdetect"
	"github.com/Tiliavir/clocktime/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/favicon.svg
var favicon []byte

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ClockView is one rendered world clock.
type ClockView struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Flag     string `json:"flag"`
	Timezone string `json:"timezone"`
	Time     string `json:"time"`
	Date     string `json:"date"`
	Offset   string `json:"offset"`
}

// SiteOptions wires the origin site to its data sources.
type SiteOptions struct {
	Alarms    *alarm.Manager
	Locations *locations.Manager
	Weather   weather.Provider
	// Detect reports the zone used when a request does not name one.
	Detect tzdetect.Source
	Theme  func() string
	Use24h bool
	Logger *zap.Logger
	Now    func() time.Time
}

// Site is the origin web app: pages, manifest and JSON API.
type Site struct {
	opts    SiteOptions
	log     *zap.Logger
	clock24 atomic.Bool
}

func NewSite(opts SiteOptions) *Site {
	if opts.Detect == nil {
		opts.Detect = tzdetect.SystemTimezone
	}
	if opts.Weather == nil {
		opts.Weather = weather.NewSimulated(uint64(time.Now().UnixNano()), 0)
	}
	if opts.Theme == nil {
		opts.Theme = func() string { return catalog.DefaultThemeID }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Site{opts: opts, log: log}
	s.clock24.Store(opts.Use24h)
	return s
}

// SetUse24h changes the default clock format for requests that do not ask
// for one.
func (s *Site) SetUse24h(v bool) { s.clock24.Store(v) }

// Register mounts the site routes on r.
func (s *Site) Register(r gin.IRouter) {
	r.GET("/", s.index)
	r.GET("/offline", s.offline)
	r.GET("/manifest.json", s.manifest)
	r.GET("/favicon.ico", s.favicon)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/detect", s.detect)
	api.GET("/clocks", s.clocks)
	api.GET("/convert", s.convert)
	api.GET("/weather/:code", s.weather)
	if s.opts.Alarms != nil {
		api.GET("/alarms", s.listAlarms)
		api.POST("/alarms", s.addAlarm)
		api.POST("/alarms/:id/toggle", s.toggleAlarm)
		api.DELETE("/alarms/:id", s.deleteAlarm)
	}
}

type indexPage struct {
	Title          string
	Theme          model.Theme
	Location       model.LocationInfo
	DetectionError string
	Now            ClockView
	Clocks         []ClockView
}

func (s *Site) index(c *gin.Context) {
	now := s.opts.Now()
	res := tzdetect.Detect(s.source(c.Query("tz")), catalog.Countries())
	theme, ok := catalog.FindTheme(s.opts.Theme())
	if !ok {
		theme, _ = catalog.FindTheme(catalog.DefaultThemeID)
	}

	page := indexPage{
		Title:          "Clock Time - Real-Time World Clock",
		Theme:          theme,
		Location:       tzdetect.Describe(res),
		DetectionError: res.Error,
		Now:            s.clockView(model.Country{Name: "Local", Timezone: res.Timezone}, now, s.use24h(c)),
		Clocks:         s.clockViews(now, s.use24h(c)),
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(c.Writer, "index.html", page); err != nil {
		s.log.Error("render index", zap.Error(err))
		_ = c.Error(err)
	}
}

func (s *Site) offline(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(c.Writer, "offline.html", nil); err != nil {
		s.log.Error("render offline", zap.Error(err))
		_ = c.Error(err)
	}
}

func (s *Site) manifest(c *gin.Context) {
	c.JSON(http.StatusOK, DefaultManifest())
}

func (s *Site) favicon(c *gin.Context) {
	c.Data(http.StatusOK, "image/svg+xml", favicon)
}

func (s *Site) detect(c *gin.Context) {
	res := tzdetect.Detect(s.source(c.Query("tz")), catalog.Countries())
	c.JSON(http.StatusOK, gin.H{
		"result":   res,
		"location": tzdetect.Describe(res),
	})
}

func (s *Site) clocks(c *gin.Context) {
	c.JSON(http.StatusOK, s.clockViews(s.opts.Now(), s.use24h(c)))
}

func (s *Site) convert(c *gin.Context) {
	hhmm := strings.TrimSpace(c.Query("time"))
	from, fromOK := catalog.ResolveZone(c.Query("from"))
	to, toOK := catalog.ResolveZone(c.Query("to"))
	if hhmm == "" || !fromOK || !toOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time, from and to are required; from/to take a country code or IANA zone"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"time":   hhmm,
		"from":   from,
		"to":     to,
		"result": timecalc.ConvertTime(hhmm, from, to, s.opts.Now()),
	})
}

func (s *Site) weather(c *gin.Context) {
	country, ok := catalog.FindCountry(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown country code"})
		return
	}
	w, err := s.opts.Weather.Current(c.Request.Context(), country.Code)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"country": country, "weather": w})
}

func (s *Site) listAlarms(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Alarms.List())
}

type alarmRequest struct {
	Time     string   `json:"time" binding:"required"`
	Timezone string   `json:"timezone" binding:"required"`
	Label    string   `json:"label"`
	Days     []string `json:"days"`
}

func (s *Site) addAlarm(c *gin.Context) {
	var req alarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	zone, ok := catalog.ResolveZone(req.Timezone)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown timezone " + req.Timezone})
		return
	}
	a, err := s.opts.Alarms.Add(alarm.Input{Time: req.Time, Timezone: zone, Label: req.Label, Days: req.Days})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Site) toggleAlarm(c *gin.Context) {
	a, err := s.opts.Alarms.Toggle(c.Param("id"))
	if errors.Is(err, alarm.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Site) deleteAlarm(c *gin.Context) {
	if err := s.opts.Alarms.Delete(c.Param("id")); errors.Is(err, alarm.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Site) source(tz string) tzdetect.Source {
	if tz = strings.TrimSpace(tz); tz != "" {
		return tzdetect.Static(tz)
	}
	return s.opts.Detect
}

func (s *Site) use24h(c *gin.Context) bool {
	switch c.Query("h24") {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	return s.clock24.Load()
}

func (s *Site) clockViews(now time.Time, use24h bool) []ClockView {
	var saved []model.SavedCountry
	if s.opts.Locations != nil {
		saved = s.opts.Locations.Clocks()
	} else {
		for _, c := range catalog.Countries() {
			saved = append(saved, model.SavedCountry{Country: c})
		}
	}
	out := make([]ClockView, 0, len(saved))
	for _, sc := range saved {
		v := s.clockView(sc.Country, now, use24h)
		v.Name = sc.DisplayName()
		out = append(out, v)
	}
	return out
}

func (s *Site) clockView(c model.Country, now time.Time, use24h bool) ClockView {
	return ClockView{
		Code:     c.Code,
		Name:     c.Name,
		Flag:     c.Flag,
		Timezone: c.Timezone,
		Time:     timecalc.FormatClock(now, c.Timezone, use24h),
		Date:     timecalc.FormatDate(now, c.Timezone),
		Offset:   timecalc.OffsetLabel(now, c.Timezone),
	}
}
