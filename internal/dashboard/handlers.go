package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/paydesk/internal/agent"
	"github.com/zombor/paydesk/internal/alert"
	"github.com/zombor/paydesk/internal/auth"
	"github.com/zombor/paydesk/internal/chart"
	"github.com/zombor/paydesk/internal/nav"
	"github.com/zombor/paydesk/internal/revenue"
	"github.com/zombor/paydesk/internal/scanning"
)

// maxFrameSize caps the body of a scanner upload
const maxFrameSize = int64(20 << 20)

// tooLarge reports whether err came from a body over its MaxBytesReader limit
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes {"error": message}
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// themeFor picks the chart theme: ?theme= first, then the client color-scheme hint
func (s *Server) themeFor(r *http.Request) chart.Theme {
	fallback := chart.ParseTheme(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), s.Theme)
	return chart.ParseTheme(r.URL.Query().Get("theme"), fallback)
}

// selectedDate validates ?date=, returning "" for today
func selectedDate(r *http.Request) (string, error) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return "", nil
	}
	if _, err := time.Parse(revenue.DateLayout, date); err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD")
	}
	return date, nil
}

type indexPage struct {
	View    string
	Theme   string
	Links   []nav.Link
	Cards   []Card
	Revenue revenue.Summary
	Agents  []*agent.Agent
	Toasts  []alert.View
}

// handleIndex renders the dashboard for the requested page path
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	date, err := selectedDate(r)
	if err != nil {
		date = ""
	}
	// one view per rendered page
	view := r.URL.Query().Get("view")
	if view == "" {
		view = uuid.NewString()
	}
	summary := s.Revenue.Select(r.Context(), view, date)

	agents, err := s.Agents.ListAgents()
	if err != nil {
		slog.Error("Error listing agents", "error", err)
		agents = []*agent.Agent{}
	}
	active := 0
	for _, a := range agents {
		if a.Active {
			active++
		}
	}

	lastScan := "Nothing scanned yet"
	scanFooter := "Point a camera at an agent code"
	if result, ok := s.Scanner.Last(); ok {
		lastScan = result.Text
		scanFooter = "Scanned " + result.ScannedAt.Format("15:04:05")
	}

	page := indexPage{
		View:  view,
		Theme: s.themeFor(r).Name,
		Links: nav.Sidebar(s.Routes, r.URL.Path),
		Cards: []Card{
			{Title: "Revenue", Value: summary.FormattedTotal, Footer: summary.Date, Icon: "payments", Class: "card-primary"},
			{Title: "Transactions", Value: strconv.Itoa(len(summary.Records)), Footer: summary.Date, Icon: "receipt"},
			{Title: "Active Agents", Value: strconv.Itoa(active), Footer: fmt.Sprintf("%d registered", len(agents)), Icon: "groups"},
			{Title: "Last Scan", Value: lastScan, Footer: scanFooter, Icon: "qr_code_scanner"},
		},
		Revenue: summary,
		Agents:  agents,
		Toasts:  s.Notifier.Active(),
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		slog.Error("Error rendering dashboard", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleStaticCSS serves the stylesheet
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleRoutes returns the sidebar links for ?path=
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nav.Sidebar(s.Routes, r.URL.Query().Get("path")))
}

// handleListAgents returns all agents
func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.Agents.ListAgents()
	if err != nil {
		slog.Error("Error listing agents", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// handleCreateAgent registers an agent from {"name", "location"}
func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.Agents.CreateAgent(req.Name, req.Location)
	if err != nil {
		var verr *agent.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  verr.Error(),
				"fields": verr.Fields,
			})
			return
		}
		slog.Error("Error creating agent", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.Notifier.Push(alert.Success, fmt.Sprintf("Agent %s created", created.Name))
	writeJSON(w, http.StatusCreated, created)
}

// lookupAgent loads the {id} agent, writing a 404 or 500 when it can't
func (s *Server) lookupAgent(w http.ResponseWriter, r *http.Request) (*agent.Agent, bool) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "Agent ID required", http.StatusBadRequest)
		return nil, false
	}
	a, err := s.Agents.GetAgent(id)
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			jsonError(w, "Agent not found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("Error getting agent", "id", id, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return a, true
}

// handleGetAgent returns a single agent
func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleDeactivateAgent deactivates an agent once a reason is given
func (s *Server) handleDeactivateAgent(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var updated *agent.Agent
	confirm := alert.NewConfirmation(
		"Deactivate agent",
		fmt.Sprintf("Why is %s being deactivated?", a.Name),
		func(_ context.Context, reason string) error {
			var err error
			updated, err = s.Agents.DeactivateAgent(a.ID, reason)
			return err
		},
	)
	if err := confirm.Confirm(r.Context(), req.Reason); err != nil {
		if errors.Is(err, alert.ErrReasonRequired) {
			jsonError(w, "A reason is required to deactivate an agent", http.StatusBadRequest)
			return
		}
		slog.Error("Error deactivating agent", "id", a.ID, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.Notifier.Push(alert.Warning, fmt.Sprintf("Agent %s deactivated", updated.Name))
	writeJSON(w, http.StatusOK, updated)
}

// handleAgentQRCode downloads the agent's QR code PNG
func (s *Server) handleAgentQRCode(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}

	img, err := s.QRCodes.Generate(a)
	if err != nil {
		slog.Error("Error generating QR code", "id", a.ID, "error", err)
		s.Notifier.Push(alert.Error, "Failed to generate QR code. Please try again.")
		jsonError(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.Write(img.PNG)
}

// handleAgentQRCodeURL returns the link and filename without rendering
func (s *Server) handleAgentQRCodeURL(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookupAgent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.QRCodes.Link(a))
}

// handleRevenue returns the revenue summary for ?date= (default today). A newer
// request with the same ?view= and another date cancels this one.
func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	date, err := selectedDate(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Revenue.Select(r.Context(), r.URL.Query().Get("view"), date))
}

// handleRevenueChart renders the per-record bar chart for ?date=
func (s *Server) handleRevenueChart(w http.ResponseWriter, r *http.Request) {
	date, err := selectedDate(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary := s.Revenue.Select(r.Context(), "", date)

	bars := make([]chart.Bar, 0, len(summary.Records))
	for _, rec := range summary.Records {
		label := strings.TrimSpace(strings.TrimPrefix(rec.Date, summary.Date))
		label = strings.TrimPrefix(label, "T")
		if label == "" {
			label = rec.Date
		}
		bars = append(bars, chart.Bar{Label: label, Value: rec.Revenue})
	}

	var buf bytes.Buffer
	err = chart.RenderBar(&buf, bars, chart.BarOptions{
		Title: "Revenue " + summary.Date,
		Theme: s.themeFor(r),
	})
	if err != nil {
		slog.Error("Error rendering revenue chart", "date", summary.Date, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleScanUpload decodes a frame posted as multipart field "frame" or as a raw image body
func (s *Server) handleScanUpload(w http.ResponseWriter, r *http.Request) {
	var (
		data        []byte
		contentType string
		err         error
	)
	r.Body = http.MaxBytesReader(w, r.Body, maxFrameSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFrameSize); err != nil {
			if tooLarge(err) {
				jsonError(w, "Frame too large", http.StatusRequestEntityTooLarge)
				return
			}
			slog.Error("Error parsing multipart form", "error", err)
			jsonError(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		f, header, err := r.FormFile("frame")
		if err != nil {
			jsonError(w, "No frame provided", http.StatusBadRequest)
			return
		}
		defer f.Close()
		contentType = header.Header.Get("Content-Type")
		data, err = io.ReadAll(f)
		if err != nil {
			slog.Error("Error reading frame", "error", err)
			jsonError(w, "Error reading frame", http.StatusInternalServerError)
			return
		}
	} else {
		contentType = r.Header.Get("Content-Type")
		data, err = io.ReadAll(r.Body)
		if err != nil {
			if tooLarge(err) {
				jsonError(w, "Frame too large", http.StatusRequestEntityTooLarge)
				return
			}
			slog.Error("Error reading frame", "error", err)
			jsonError(w, "Error reading frame", http.StatusInternalServerError)
			return
		}
	}

	result, err := s.Scanner.ScanUpload(data, contentType)
	if err != nil {
		slog.Error("Error decoding frame", "content_type", contentType, "size", len(data), "error", err)
		if errors.Is(err, scanning.ErrNoCode) {
			jsonError(w, "No QR code found", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleLastScan returns the most recent decoded text
func (s *Server) handleLastScan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.Scanner.Last()
	if !ok {
		jsonError(w, "Nothing scanned yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSaveSession stores {"token"}
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var session auth.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil || strings.TrimSpace(session.Token) == "" {
		jsonError(w, "A token is required", http.StatusBadRequest)
		return
	}
	if err := s.Sessions.SaveSession(&session); err != nil {
		slog.Error("Error saving session", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSession shows the organization resolved from the stored token
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	orgID, err := s.Resolver.OrganizationID()
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			jsonError(w, "No session", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"organization_id": orgID})
}

// handleListAlerts returns the visible toasts
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Notifier.Active())
}

// handleDismissAlert dismisses a toast early
func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	if !s.Notifier.Dismiss(r.PathValue("id")) {
		jsonError(w, "Alert not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
