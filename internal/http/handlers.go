package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"charity/internal/cache"
	"charity/internal/controller"
	"charity/internal/log"
	"charity/internal/site"
	"charity/internal/view"
)

type (
	podiumPartial struct {
		statusView
		view.PodiumView
	}

	gridPartial struct {
		statusView
		view.GridView
	}

	statsPartial struct {
		statusView
		view.StatsView
	}

	spotlightPartial struct {
		statusView
		Text string
	}

	impactPartial struct {
		statusView
		view.StatsView
		Site site.Settings
	}

	pageData struct {
		Page       string
		Title      string
		Site       site.Settings
		Status     statusView
		Generation uint64
		Stats      statsPartial
		Impact     impactPartial
		Podium     podiumPartial
		Grid       gridPartial
		Spotlight  spotlightPartial
	}
)

func (s *Server) podiumPartial(st controller.State) podiumPartial {
	p := podiumPartial{statusView: newStatusView(st, "/ui/podium")}
	if st.Status == controller.StatusReady {
		p.PodiumView = s.ctrl.Renderer().Podium(st.Dataset)
	}
	return p
}

func (s *Server) gridPartial(st controller.State, q view.GridQuery, poll string) gridPartial {
	p := gridPartial{statusView: newStatusView(st, poll)}
	p.Query = q
	if st.Status == controller.StatusReady {
		p.GridView = s.ctrl.Renderer().Grid(st.Dataset, q)
	}
	return p
}

func (s *Server) statsPartial(st controller.State) statsPartial {
	p := statsPartial{statusView: newStatusView(st, "/ui/stats")}
	if st.Status == controller.StatusReady {
		p.StatsView = s.ctrl.Renderer().Stats(st.Stats)
	}
	return p
}

func (s *Server) impactPartial(st controller.State) impactPartial {
	p := impactPartial{statusView: newStatusView(st, "/ui/impact"), Site: s.ctrl.Settings()}
	if st.Status == controller.StatusReady {
		p.StatsView = s.ctrl.Renderer().Stats(st.Stats)
	}
	return p
}

func (s *Server) spotlightPartial(st controller.State) spotlightPartial {
	return spotlightPartial{
		statusView: newStatusView(st, "/ui/spotlight"),
		Text:       s.ctrl.Spotlight().Current(),
	}
}

func (s *Server) pageData(page, title string, st controller.State) pageData {
	return pageData{
		Page:       page,
		Title:      title,
		Site:       s.ctrl.Settings(),
		Status:     newStatusView(st, ""),
		Generation: st.Generation,
		Stats:      s.statsPartial(st),
		Impact:     s.impactPartial(st),
		Podium:     s.podiumPartial(st),
		Grid:       s.gridPartial(st, view.GridQuery{}, "/ui/grid"),
		Spotlight:  s.spotlightPartial(st),
	}
}

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", s.pageData(controller.PageLanding, "Home", s.ctrl.Snapshot()))
}

// handleNotFound answers GET requests no other route matched.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("Page not found").Write(w)
}

// handleDonors renders the donor page with podium and grid.
func (s *Server) handleDonors(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "donors.html", s.pageData(controller.PageDonors, "Our Donors", s.ctrl.Snapshot()))
}

// renderPartial writes a partial and tags the response with the load status.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, st controller.State, name string, data any) {
	if s.templates == nil {
		s.render(w, r, name, data)
		return
	}
	body, err := s.renderBytes(name, data)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Partial execution failed", log.FieldError, err, "template", name)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	s.writePartial(w, st, body)
}

func (s *Server) writePartial(w http.ResponseWriter, st controller.State, body []byte) {
	NewHTMXResponse().
		TriggerStatus(st.Status.String(), st.Generation).
		Header("Content-Type", "text/html; charset=utf-8").
		Body(body).
		Write(w)
}

func (s *Server) handlePodium(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	s.renderPartial(w, r, st, "podium.html", s.podiumPartial(st))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	s.renderPartial(w, r, st, "stats.html", s.statsPartial(st))
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	s.renderPartial(w, r, st, "impact.html", s.impactPartial(st))
}

func (s *Server) handleSpotlight(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	s.renderPartial(w, r, st, "spotlight.html", s.spotlightPartial(st))
}

// handleGrid renders the donor grid for a sort key and search text. Ready
// renders are cached per dataset generation.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q, err := ParseGridQuery(r.URL.Query())
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Unknown sort key, keeping input order",
			log.FieldError, err, log.FieldQuery, r.URL.RawQuery)
	}

	st := s.ctrl.Snapshot()
	if st.Status != controller.StatusReady || s.templates == nil {
		s.renderPartial(w, r, st, "grid.html", s.gridPartial(st, q, r.URL.RequestURI()))
		return
	}

	key := cache.Key(st.Generation, string(q.Sort), q.Search)
	if body, ok := s.gridCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Grid cache hit", "cache_key", key)
		s.writePartial(w, st, body)
		return
	}

	body, err := s.renderBytes("grid.html", s.gridPartial(st, q, ""))
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(),
			"Partial execution failed", log.FieldError, err, "template", "grid.html")
		InternalServerError("Rendering failed").Write(w)
		return
	}
	s.gridCache.Set(key, body)
	s.writePartial(w, st, body)
}

type statsResponse struct {
	Status           string          `json:"status"`
	Generation       uint64          `json:"generation"`
	LoadedAt         *time.Time      `json:"loaded_at,omitempty"`
	Error            string          `json:"error,omitempty"`
	TotalDonors      int             `json:"total_donors"`
	NamedTotalCents  int64           `json:"named_total_cents"`
	SilentTotalCents int64           `json:"silent_total_cents"`
	GrandTotalCents  int64           `json:"grand_total_cents"`
	LivesChanged     int64           `json:"lives_changed"`
	Formatted        *view.StatsView `json:"formatted,omitempty"`
}

// handleAPIStats returns the aggregate as JSON, raw cents and formatted.
func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	resp := statsResponse{Status: st.Status.String(), Generation: st.Generation}

	switch st.Status {
	case controller.StatusLoading:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	case controller.StatusFailed:
		resp.Error = view.ErrorMessage
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	formatted := s.ctrl.Renderer().Stats(st.Stats)
	loadedAt := st.LoadedAt
	resp.LoadedAt = &loadedAt
	resp.TotalDonors = st.Stats.TotalDonorCount
	resp.NamedTotalCents = st.Stats.NamedTotal.Cents
	resp.SilentTotalCents = st.Stats.SilentTotal.Cents
	resp.GrandTotalCents = st.Stats.GrandTotal.Cents
	resp.LivesChanged = st.Stats.LivesChanged
	resp.Formatted = &formatted
	writeJSON(w, http.StatusOK, resp)
}

// handleContact acknowledges a contact form submission. Messages are logged
// without their body and never stored.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	msg, err := ParseContact(r)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Contact form parse failed", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}
	if err := msg.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).
			TriggerErrorNotification("Please check the form and try again.").
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.contactMessages, 1)
	_, domain, _ := strings.Cut(msg.Email, "@")
	log.FromContext(r.Context()).InfoContext(r.Context(), "Contact message received",
		"sender", singleLine(msg.Name),
		"email_domain", domain,
		"message_length", len(msg.Message))

	ack := s.ctrl.Settings().ContactAck
	NewHTMXResponse().
		TriggerContactSent().
		TriggerFormReset().
		TriggerSuccessNotification(ack).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(ack) + `</div>`).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports ready once the load has finished. A failed load is
// still ready: the site serves its error state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	dataset := map[string]interface{}{
		"status":     st.Status.String(),
		"generation": st.Generation,
	}
	if !st.Done() {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}
	if st.Status == controller.StatusReady {
		dataset["donors"] = st.Dataset.Len()
		dataset["loaded_at"] = st.LoadedAt.Format(time.RFC3339)
	}
	checks["dataset"] = dataset

	checks["spotlight"] = map[string]interface{}{
		"running":     s.ctrl.SpotlightRunning(),
		"subscribers": s.ctrl.Spotlight().Subscribers(),
	}
	checks["cache"] = map[string]interface{}{
		"grid_entries": s.gridCache.Size(),
		"status":       "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	st := s.ctrl.Snapshot()
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheStats := s.gridCache.Stats()
	spotlight := s.ctrl.Spotlight()

	ready := 0
	if st.Status == controller.StatusReady {
		ready = 1
	}

	w.WriteHeader(http.StatusOK)
	writeMetric(w, "http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	writeMetric(w, "http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	writeMetric(w, "http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime)
	writeMetric(w, "http_streams_open", "Open event streams", "gauge", s.streamsOpen())

	writeMetric(w, "donors_dataset_ready", "1 when the donor dataset is loaded", "gauge", ready)
	writeMetric(w, "donors_dataset_generation", "Completed loads", "counter", st.Generation)
	writeMetric(w, "donors_named_total", "Named donors in the dataset", "gauge", st.Stats.TotalDonorCount)
	writeMetric(w, "donations_grand_total_cents", "Named plus silent donations", "gauge", st.Stats.GrandTotal.Cents)

	writeMetric(w, "spotlight_subscribers", "Clients following the spotlight", "gauge", spotlight.Subscribers())
	writeMetric(w, "spotlight_dropped_events_total", "Spotlight events dropped for slow clients", "counter", spotlight.Dropped())
	writeMetric(w, "counter_animations_active", "Counter animations in flight", "gauge", s.ctrl.Counters().Active())
	writeMetric(w, "counter_frames_total", "Counter frames streamed", "counter", atomic.LoadInt64(&s.appMetrics.counterFrames))

	writeMetric(w, "grid_cache_hits_total", "Grid partial cache hits", "counter", cacheStats.Hits)
	writeMetric(w, "grid_cache_misses_total", "Grid partial cache misses", "counter", cacheStats.Misses)
	writeMetric(w, "grid_cache_entries", "Grid partials cached", "gauge", cacheStats.Size)

	writeMetric(w, "rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.TotalHits)
	writeMetric(w, "rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", rateLimitMetrics.ClientCount)
	writeMetric(w, "security_suspicious_requests_total", "Requests flagged as suspicious", "counter", securityMetrics.SuspiciousRequests)
	writeMetric(w, "security_blocked_requests_total", "Requests rejected by method", "counter", securityMetrics.BlockedRequests)

	writeMetric(w, "contact_messages_total", "Contact form submissions acknowledged", "counter", atomic.LoadInt64(&s.appMetrics.contactMessages))
	writeMetric(w, "uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

func writeMetric(w io.Writer, name, help, kind string, value any) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %v\n\n", name, value)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
