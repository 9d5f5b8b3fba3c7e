package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MrWong99/gambit/internal/dialogue"
	"github.com/MrWong99/gambit/internal/message"
	"github.com/MrWong99/gambit/internal/observe"
	"github.com/MrWong99/gambit/internal/profile"
)

// maxMessageBytes caps the request body of POST /api/messages.
const maxMessageBytes = 16 << 10

type submitRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	SessionID string           `json:"session_id"`
	State     dialogue.State   `json:"state"`
	Message   message.Message  `json:"message"`
	Reply     *message.Message `json:"reply,omitempty"`
}

type transcriptResponse struct {
	SessionID string            `json:"session_id"`
	State     dialogue.State    `json:"state"`
	Messages  []message.Message `json:"messages"`
}

type stateResponse struct {
	SessionID string         `json:"session_id"`
	State     dialogue.State `json:"state"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be {\"text\": string}")
		return
	}

	wait := false
	if v := r.URL.Query().Get("wait"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "wait must be a boolean")
			return
		}
		wait = b
	}

	sess := s.sessions.Session()
	if err := sess.Submit(r.Context(), req.Text); err != nil {
		writeSubmitError(w, err)
		return
	}

	resp := submitResponse{SessionID: sess.ID()}
	status := http.StatusAccepted
	if wait {
		ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout)
		defer cancel()
		if err := sess.Wait(ctx); err != nil {
			observe.Logger(r.Context()).Warn("waiting for coach reply", "session_id", sess.ID(), "err", err)
		} else {
			status = http.StatusOK
		}
	}

	// The accepted message is the last user message; with wait the coach
	// reply follows it.
	msgs := sess.Transcript()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Author == message.User {
			resp.Message = msgs[i]
			if status == http.StatusOK && i+1 < len(msgs) {
				reply := msgs[i+1]
				resp.Reply = &reply
			}
			break
		}
	}
	resp.State = sess.State()
	writeJSON(w, status, resp)
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dialogue.ErrEmptyContent):
		writeError(w, http.StatusUnprocessableEntity, "empty_content", "message text is empty")
	case errors.Is(err, dialogue.ErrSessionBusy):
		writeError(w, http.StatusConflict, "session_busy", "the coach is still answering the previous message")
	case errors.Is(err, dialogue.ErrSessionClosed):
		writeError(w, http.StatusGone, "session_closed", "the session was reset; retry to start a new one")
	default:
		slog.Error("submit message", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *Server) getTranscript(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Session()
	writeJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sess.ID(),
		State:     sess.State(),
		Messages:  sess.Transcript(),
	})
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Session()
	writeJSON(w, http.StatusOK, stateResponse{SessionID: sess.ID(), State: sess.State()})
}

func (s *Server) resetSession(w http.ResponseWriter, _ *http.Request) {
	if err := s.sessions.Reset(); err != nil {
		slog.Error("reset session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.Current())
}

type record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

type dashboardResponse struct {
	PlayerName        string                 `json:"player_name"`
	Rating            int                    `json:"rating"`
	Record            record                 `json:"record"`
	AverageAccuracy   int                    `json:"average_accuracy"`
	WeakestSkill      *profile.SkillProgress `json:"weakest_skill,omitempty"`
	StrongestSkill    *profile.SkillProgress `json:"strongest_skill,omitempty"`
	BestOpening       *openingSummary        `json:"best_opening,omitempty"`
	MostPlayedOpening *openingSummary        `json:"most_played_opening,omitempty"`
	CoachScore        int                    `json:"coach_score"`
	PointsToMilestone int                    `json:"points_to_milestone"`
}

type openingSummary struct {
	Name    string `json:"name"`
	Games   int    `json:"games"`
	WinRate int    `json:"win_rate"`
}

func summarizeOpening(o profile.OpeningStats, ok bool) *openingSummary {
	if !ok {
		return nil
	}
	return &openingSummary{Name: o.Name, Games: o.Games(), WinRate: o.WinRate()}
}

func skillPtr(s profile.SkillProgress, ok bool) *profile.SkillProgress {
	if !ok {
		return nil
	}
	return &s
}

func (s *Server) getDashboard(w http.ResponseWriter, _ *http.Request) {
	p := s.profiles.Current()
	wins, losses, draws := p.GameRecord()
	writeJSON(w, http.StatusOK, dashboardResponse{
		PlayerName:        p.PlayerName,
		Rating:            p.Rating,
		Record:            record{Wins: wins, Losses: losses, Draws: draws},
		AverageAccuracy:   p.AverageAccuracy(),
		WeakestSkill:      skillPtr(p.WeakestSkill()),
		StrongestSkill:    skillPtr(p.StrongestSkill()),
		BestOpening:       summarizeOpening(p.BestOpening()),
		MostPlayedOpening: summarizeOpening(p.MostPlayedOpening()),
		CoachScore:        p.CoachRating.Score,
		PointsToMilestone: p.CoachRating.PointsToMilestone(),
	})
}

func (s *Server) getQuickQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"questions": dialogue.QuickQuestions()})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write json response", "err", err)
	}
}
