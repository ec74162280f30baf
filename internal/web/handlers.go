package web

import (
	"errors"
	"net/http"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/style"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tasks"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, status, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, status, err.Error())
		return
	}

	task, err := s.queue.Submit(r.Context(), req.Kind, req.Input, s.worker.Work(*req))
	switch {
	case errors.Is(err, tasks.ErrQueueFull):
		s.discard(req)
		s.writeError(w, http.StatusServiceUnavailable, "too many tasks in progress, try again later")
		return
	case errors.Is(err, tasks.ErrQueueClosed):
		s.discard(req)
		s.writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	case err != nil:
		s.discard(req)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, task)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.queue.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, tasks.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

type taskListResponse struct {
	Tasks []*tasks.Task `json:"tasks"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.queue.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*tasks.Task{}
	}
	s.writeJSON(w, http.StatusOK, taskListResponse{Tasks: list})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]language.Info{"languages": language.All()})
}

type styleInfo struct {
	Name              string  `json:"name"`
	FontName          string  `json:"font_name"`
	FontSize          int     `json:"font_size"`
	FontColor         string  `json:"font_color"`
	OutlineColor      string  `json:"outline_color"`
	BackgroundColor   string  `json:"background_color"`
	BackgroundOpacity float64 `json:"background_opacity"`
	MaxCharsPerLine   int     `json:"max_chars_per_line"`
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	names := style.Names()
	out := make([]styleInfo, 0, len(names))
	for _, n := range names {
		cfg := s.styles.Lookup(string(n))
		out = append(out, styleInfo{
			Name:              string(n),
			FontName:          cfg.FontName,
			FontSize:          cfg.FontSize,
			FontColor:         cfg.FontColor,
			OutlineColor:      cfg.OutlineColor,
			BackgroundColor:   cfg.BackgroundColor,
			BackgroundOpacity: cfg.BackgroundOpacity,
			MaxCharsPerLine:   cfg.MaxCharsPerLine,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string][]styleInfo{"styles": out})
}

type clearResponse struct {
	Removed      int `json:"removed"`
	TasksCleared int `json:"tasks_cleared"`
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	list, err := s.queue.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, t := range list {
		if !t.Status.Finished() {
			s.writeError(w, http.StatusConflict, "tasks are still running")
			return
		}
	}

	removed, err := s.clearFiles()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cleared, err := s.queue.ClearFinished(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Infow("cleared uploads and outputs", "files", removed, "tasks", cleared)
	s.writeJSON(w, http.StatusOK, clearResponse{Removed: removed, TasksCleared: cleared})
}
