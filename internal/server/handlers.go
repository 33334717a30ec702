package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"minigolf/internal/course"
	"minigolf/internal/dice"
	"minigolf/internal/rules"
	"minigolf/internal/session"
	"minigolf/internal/storage"
)

type createSessionRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

type hitRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type hitResponse struct {
	session.HitOutcome
	NextCourseID string `json:"nextCourseId,omitempty"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	StoredCourses int    `json:"storedCourses"`
}

type courseSummary struct {
	ID     string        `json:"id"`
	Seed   int64         `json:"seed"`
	Par    int           `json:"par"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Hole   *course.Coord `json:"hole,omitempty"`
	Ball   *course.Coord `json:"ball,omitempty"`
}

type legalResponse struct {
	Target  course.Coord  `json:"target"`
	Allowed int           `json:"allowed"`
	Verdict rules.Verdict `json:"verdict"`
}

type rollResponse struct {
	Roll  dice.Roll `json:"roll"`
	Stuck bool      `json:"stuck"`
}

type strokesResponse struct {
	Strokes int            `json:"strokes"`
	History []course.Coord `json:"history"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Status: "ok", Sessions: s.sessions.Len(), StoredCourses: s.store.Len()})
}

func (s *Server) handleGenerationMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.metrics.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sessions.IDs())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := s.sessions.Create(req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, st)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.State(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Course(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, c.Snapshot())
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	var req hitRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.X == nil || req.Y == nil {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}
	out, err := s.sessions.Hit(r.PathValue("id"), course.Coord{X: *req.X, Y: *req.Y})
	if err != nil && !out.Accepted {
		writeError(w, err)
		return
	}
	resp := hitResponse{HitOutcome: out}
	if out.NextCourse != nil {
		resp.NextCourseID = out.NextCourse.ID
	}
	if err != nil {
		// The hole was won but its successor could not be started.
		resp.Error = err.Error()
		writeJSONStatus(w, statusFor(err), resp)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	target, err := coordQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	verdict, allowed, err := s.sessions.Legal(r.PathValue("id"), target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, legalResponse{Target: target, Allowed: allowed, Verdict: verdict})
}

func (s *Server) handlePutter(w http.ResponseWriter, r *http.Request) {
	roll, err := s.sessions.Putter(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rollResponse{Roll: roll})
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	roll, stuck, err := s.sessions.Reroll(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rollResponse{Roll: roll, Stuck: stuck})
}

func (s *Server) handleNextCourse(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.NextCourse(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleStrokes(w http.ResponseWriter, r *http.Request) {
	history, err := s.sessions.Strokes(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, strokesResponse{Strokes: len(history) - 1, History: history})
}

func (s *Server) handleScorecard(w http.ResponseWriter, r *http.Request) {
	card, err := s.sessions.Scorecard(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if card == nil {
		card = []session.HoleScore{}
	}
	writeJSON(w, card)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses := []courseSummary{}
	err := s.store.ForEach(func(snap course.Snapshot) bool {
		courses = append(courses, courseSummary{
			ID:     snap.ID,
			Seed:   snap.Seed,
			Par:    snap.Par,
			Width:  snap.Width,
			Height: snap.Height,
			Hole:   snap.Hole,
			Ball:   snap.Ball,
		})
		return true
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, courses)
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snapshot, ok, err := s.store.Load(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("course %q: %w", id, storage.ErrNotFound))
		return
	}
	writeJSON(w, snapshot)
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// unchanged.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func coordQuery(r *http.Request) (course.Coord, error) {
	q := r.URL.Query()
	xStr := q.Get("x")
	yStr := q.Get("y")
	if xStr == "" || yStr == "" {
		return course.Coord{}, errors.New("x and y query parameters required")
	}
	x, err := strconv.Atoi(xStr)
	if err != nil {
		return course.Coord{}, errors.New("invalid x parameter")
	}
	y, err := strconv.Atoi(yStr)
	if err != nil {
		return course.Coord{}, errors.New("invalid y parameter")
	}
	return course.Coord{X: x, Y: y}, nil
}
