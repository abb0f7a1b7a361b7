package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/racketclub/courtside/internal/auth"
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/pairing"
	"github.com/racketclub/courtside/internal/processor"
	"github.com/racketclub/courtside/internal/rating"
)

// matchRecordedTopic carries match mutations for downstream consumers.
const matchRecordedTopic = "match-recorded"

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := callerFromContext(r)
		log.Info("Received request to clear entire store", "caller", caller)
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

type createPlayerRequest struct {
	Name        string  `json:"name"`
	Rating      int     `json:"rating"`
	SlackUserID *string `json:"slack_user_id,omitempty"`
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if req.Rating < club.MinRating || req.Rating > club.MaxRating {
			http.Error(w, fmt.Sprintf("rating must be between %d and %d", club.MinRating, club.MaxRating), http.StatusBadRequest)
			return
		}

		p, err := s.Store.CreatePlayer(req.Name, req.Rating, req.SlackUserID)
		if err != nil {
			log.Error("Failed to create player", "error", err)
			http.Error(w, "failed to create player", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"
		players, err := s.Store.ListPlayers(activeOnly)
		if err != nil {
			log.Error("Failed to list players", "error", err)
			http.Error(w, "failed to list players", http.StatusInternalServerError)
			return
		}
		if players == nil {
			players = []club.Player{}
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		p, err := s.Store.GetPlayer(id)
		if err != nil {
			log.Error("Failed to get player", "error", err, "playerID", id)
			http.Error(w, "failed to get player", http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

type updatePlayerRequest struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		var req updatePlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		existing, err := s.Store.GetPlayer(id)
		if err != nil {
			http.Error(w, "failed to get player", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}

		if err := s.Store.UpdatePlayer(id, req.Name, req.Active); err != nil {
			log.Error("Failed to update player", "error", err, "playerID", id)
			http.Error(w, "failed to update player", http.StatusInternalServerError)
			return
		}

		updated, err := s.Store.GetPlayer(id)
		if err != nil {
			http.Error(w, "failed to get player", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) AssessmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		res, err := s.Processor.AssessPlayer(id)
		if err != nil {
			if errors.Is(err, processor.ErrPlayerNotFound) {
				http.Error(w, "player not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to assess player", "error", err, "playerID", id)
			http.Error(w, "failed to assess player", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

type matchRequest struct {
	TeamAPlayer1 int64 `json:"team_a_player1"`
	TeamAPlayer2 int64 `json:"team_a_player2"`
	TeamBPlayer1 int64 `json:"team_b_player1"`
	TeamBPlayer2 int64 `json:"team_b_player2"`
	TeamAScore   int   `json:"team_a_score"`
	TeamBScore   int   `json:"team_b_score"`
	PlayedAt     int64 `json:"played_at"`
}

// toMatch validates the request and derives the winning team from the scores.
func (s *Server) toMatch(req matchRequest) (*club.Match, error) {
	ids := []int64{req.TeamAPlayer1, req.TeamAPlayer2, req.TeamBPlayer1, req.TeamBPlayer2}
	seen := make(map[int64]bool, 4)
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("player %d appears more than once", id)
		}
		seen[id] = true
		p, err := s.Store.GetPlayer(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("player %d does not exist", id)
		}
	}
	if req.TeamAScore < 0 || req.TeamBScore < 0 {
		return nil, errors.New("scores must not be negative")
	}
	if req.TeamAScore == req.TeamBScore {
		return nil, errors.New("scores must not be equal")
	}

	winner := club.TeamA
	if req.TeamBScore > req.TeamAScore {
		winner = club.TeamB
	}
	return &club.Match{
		TeamAPlayer1: req.TeamAPlayer1,
		TeamAPlayer2: req.TeamAPlayer2,
		TeamBPlayer1: req.TeamBPlayer1,
		TeamBPlayer2: req.TeamBPlayer2,
		TeamAScore:   req.TeamAScore,
		TeamBScore:   req.TeamBScore,
		WinningTeam:  winner,
		PlayedAt:     req.PlayedAt,
	}, nil
}

// recomputeAfterMutation replays the full history after any match mutation so
// stored ratings always reflect the current history.
func (s *Server) recomputeAfterMutation(dryRun bool) {
	if _, err := s.Processor.RecomputeAll(dryRun); err != nil {
		log.Error("Failed to recompute ratings after match mutation", "error", err)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		m, err := s.toMatch(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would record match", "winner", m.WinningTeam)
			respondJSON(w, http.StatusOK, m)
			return
		}

		if err := s.Store.CreateMatch(m); err != nil {
			log.Error("Failed to create match", "error", err)
			http.Error(w, "failed to create match", http.StatusInternalServerError)
			return
		}
		if err := s.pubsub.SendMessage(matchRecordedTopic, m); err != nil {
			log.Error("Failed to publish match event", "error", err, "matchID", m.ID)
		}
		s.recomputeAfterMutation(false)
		respondJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			matches []*club.Match
			err     error
		)
		if playerParam := r.URL.Query().Get("player"); playerParam != "" {
			playerID, parseErr := strconv.ParseInt(playerParam, 10, 64)
			if parseErr != nil {
				http.Error(w, "invalid player id", http.StatusBadRequest)
				return
			}
			matches, err = s.Store.MatchesForPlayer(playerID)
		} else {
			matches, err = s.Store.AllMatches()
		}
		if err != nil {
			log.Error("Failed to list matches", "error", err)
			http.Error(w, "failed to list matches", http.StatusInternalServerError)
			return
		}
		if matches == nil {
			matches = []*club.Match{}
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid match id", http.StatusBadRequest)
			return
		}
		m, err := s.Store.GetMatch(id)
		if err != nil {
			log.Error("Failed to get match", "error", err, "matchID", id)
			http.Error(w, "failed to get match", http.StatusInternalServerError)
			return
		}
		if m == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, m)
	}
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid match id", http.StatusBadRequest)
			return
		}
		existing, err := s.Store.GetMatch(id)
		if err != nil {
			http.Error(w, "failed to get match", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		m, err := s.toMatch(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.ID = id
		m.CreatedAt = existing.CreatedAt

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would update match", "matchID", id)
			respondJSON(w, http.StatusOK, m)
			return
		}

		if err := s.Store.UpdateMatch(m); err != nil {
			log.Error("Failed to update match", "error", err, "matchID", id)
			http.Error(w, "failed to update match", http.StatusInternalServerError)
			return
		}
		if err := s.pubsub.SendMessage(matchRecordedTopic, m); err != nil {
			log.Error("Failed to publish match event", "error", err, "matchID", id)
		}
		s.recomputeAfterMutation(false)
		respondJSON(w, http.StatusOK, m)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "invalid match id", http.StatusBadRequest)
			return
		}
		existing, err := s.Store.GetMatch(id)
		if err != nil {
			http.Error(w, "failed to get match", http.StatusInternalServerError)
			return
		}
		if existing == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would delete match", "matchID", id)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := s.Store.DeleteMatch(id); err != nil {
			log.Error("Failed to delete match", "error", err, "matchID", id)
			http.Error(w, "failed to delete match", http.StatusInternalServerError)
			return
		}
		s.recomputeAfterMutation(false)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Processor.Standings()
		if err != nil {
			log.Error("Failed to compute standings", "error", err)
			http.Error(w, "failed to compute standings", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, standings)
	}
}

func (s *Server) AnnounceStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := s.Processor.Standings()
		if err != nil {
			log.Error("Failed to compute standings", "error", err)
			http.Error(w, "failed to compute standings", http.StatusInternalServerError)
			return
		}
		if err := s.Notifier.SendStandings(standings, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to announce standings", "error", err)
			http.Error(w, "failed to announce standings", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Standings announced!")
	}
}

func (s *Server) PairingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers(true)
		if err != nil {
			log.Error("Failed to list players for pairings", "error", err)
			http.Error(w, "failed to list players", http.StatusInternalServerError)
			return
		}

		// An explicit roster narrows the pool, e.g. ?players=1,2,3,4,7.
		if playersParam := r.URL.Query().Get("players"); playersParam != "" {
			wanted := make(map[int64]bool)
			for _, part := range strings.Split(playersParam, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					http.Error(w, "invalid players parameter", http.StatusBadRequest)
					return
				}
				wanted[id] = true
			}
			filtered := players[:0]
			for _, p := range players {
				if wanted[p.ID] {
					filtered = append(filtered, p)
				}
			}
			players = filtered
		}

		if len(players) < 4 {
			http.Error(w, "at least four active players are needed", http.StatusUnprocessableEntity)
			return
		}

		pairings := pairing.Generate(players)
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			limit, err := strconv.Atoi(limitParam)
			if err != nil || limit < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			if limit < len(pairings) {
				pairings = pairings[:limit]
			}
		}
		respondJSON(w, http.StatusOK, pairings)
	}
}

type requestOTPRequest struct {
	PlayerID int64 `json:"player_id"`
}

func (s *Server) RequestOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requestOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		p, err := s.Store.GetPlayer(req.PlayerID)
		if err != nil {
			http.Error(w, "failed to get player", http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		if p.SlackUserID == nil {
			http.Error(w, "player has no Slack account linked", http.StatusUnprocessableEntity)
			return
		}

		code, expiresAt, err := s.OTP.Issue(p.ID)
		if err != nil {
			log.Error("Failed to issue one-time code", "error", err, "playerID", p.ID)
			http.Error(w, "failed to issue code", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncOTPIssued()

		if err := s.Notifier.SendOTP(*p.SlackUserID, code, expiresAt, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to deliver one-time code", "error", err, "playerID", p.ID)
			http.Error(w, "failed to deliver code", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"expires_at": expiresAt.Unix()})
	}
}

type verifyOTPRequest struct {
	PlayerID int64  `json:"player_id"`
	Code     string `json:"code"`
}

func (s *Server) VerifyOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := s.OTP.Verify(req.PlayerID, req.Code); err != nil {
			if errors.Is(err, auth.ErrInvalidCode) {
				s.Metrics.IncOTPRejected()
				http.Error(w, "invalid or expired code", http.StatusUnauthorized)
				return
			}
			log.Error("Failed to verify one-time code", "error", err, "playerID", req.PlayerID)
			http.Error(w, "failed to verify code", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncOTPVerified()

		token, err := auth.CreateSession(req.PlayerID)
		if err != nil {
			log.Error("Failed to create session", "error", err, "playerID", req.PlayerID)
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Server) RecomputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := s.Processor.RecomputeAll(isDryRunFromContext(r))
		if err != nil {
			log.Error("Failed to recompute ratings", "error", err)
			http.Error(w, "failed to recompute ratings", http.StatusInternalServerError)
			return
		}
		if changes == nil {
			changes = []rating.Change{}
		}
		respondJSON(w, http.StatusOK, changes)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
