package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/core"
	"github.com/JonMunkholm/equipviz/internal/history"
	"github.com/JonMunkholm/equipviz/internal/logging"
	"github.com/JonMunkholm/equipviz/internal/web/templates"
)

// historyRow adds the display timestamp to a stored entry.
type historyRow struct {
	history.Entry
	UploadTime string `json:"upload_time"`
}

// rowView is one table row as the dashboard shows it.
type rowView struct {
	core.EquipmentRecord
	Overheated bool `json:"overheated"`
}

// uploadResponse carries the KPIs at the top level, followed by the rows and
// the refreshed history.
type uploadResponse struct {
	core.AggregateSummary
	IngestionID  uuid.UUID    `json:"ingestion_id"`
	Source       string       `json:"source"`
	RawData      []rowView    `json:"raw_data"`
	History      []historyRow `json:"history"`
	HistoryError string       `json:"history_error,omitempty"`
}

type viewResponse struct {
	Loaded      bool                  `json:"loaded"`
	IngestionID uuid.UUID             `json:"ingestion_id"`
	Source      string                `json:"source"`
	IngestedAt  time.Time             `json:"ingested_at"`
	Summary     core.AggregateSummary `json:"summary"`
	Search      string                `json:"search,omitempty"`
	Rows        []rowView             `json:"raw_data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"loaded": s.service.CurrentView().Loaded(),
	})
}

// handleDashboard renders the HTML page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := s.service.CurrentView()
	data := templates.DashboardData{
		View:        view,
		Search:      r.URL.Query().Get("search"),
		Leaderboard: view.Leaderboard(core.DefaultLeaderboardSize),
	}

	entries, err := s.service.HistoryView(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn("history unavailable", "error", err)
		data.HistoryError = core.FormatUserError(err)
	}
	data.History = entries

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleUpload ingests a multipart "file" and returns the new KPIs.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	if r.ContentLength > maxSize {
		respondError(w, r, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, maxSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, maxSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	view, err := s.service.IngestReaderView(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := uploadResponse{
		AggregateSummary: view.Summary,
		IngestionID:      view.IngestionID,
		Source:           view.Source,
		RawData:          rowViews(view.Rows),
		History:          []historyRow{},
	}

	entries, err := s.service.HistoryView(r.Context())
	if err != nil {
		resp.HistoryError = core.FormatUserError(err)
	}
	resp.History = historyRows(entries)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// handleView returns the current view, optionally filtered by name.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view := s.service.CurrentView()
	q := r.URL.Query().Get("search")

	render.JSON(w, r, viewResponse{
		Loaded:      view.Loaded(),
		IngestionID: view.IngestionID,
		Source:      view.Source,
		IngestedAt:  view.IngestedAt,
		Summary:     view.Summary,
		Search:      q,
		Rows:        rowViews(view.Search(q)),
	})
}

// handleHistory returns the recent uploads, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.HistoryView(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, historyRows(entries))
}

// handleFrame returns the current reveal frame.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.service.CurrentFrame())
}

// handleLeaderboard returns the most efficient units.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := parseIntParam(r, "limit", core.DefaultLeaderboardSize)
	render.JSON(w, r, s.service.CurrentView().Leaderboard(n))
}

// handleFrameStream streams reveal frames as Server-Sent Events until the
// sequence stops running.
func (s *Server) handleFrameStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	var (
		sent         bool
		lastGen      uint64
		lastProgress float64
	)
	for {
		frame := s.service.CurrentFrame()
		if !sent || frame.Generation != lastGen || frame.Progress != lastProgress {
			data, err := json.Marshal(frame)
			if err != nil {
				logging.FromContext(r.Context()).Error("encode frame", "error", err)
				return
			}
			fmt.Fprintf(w, "id: %d-%d\nevent: frame\ndata: %s\n\n", frame.Generation, int(frame.Progress*100), data)
			if err := rc.Flush(); err != nil {
				logging.FromContext(r.Context()).Warn("frame stream closed", "error", err)
				return
			}
			sent, lastGen, lastProgress = true, frame.Generation, frame.Progress
		}

		if frame.Phase != animation.Running {
			fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
			rc.Flush()
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func rowViews(ds core.Dataset) []rowView {
	rows := make([]rowView, len(ds))
	for i, rec := range ds {
		rows[i] = rowView{EquipmentRecord: rec, Overheated: rec.Overheated()}
	}
	return rows
}

func historyRows(entries []history.Entry) []historyRow {
	rows := make([]historyRow, len(entries))
	for i, e := range entries {
		rows[i] = historyRow{Entry: e, UploadTime: e.UploadTime()}
	}
	return rows
}
