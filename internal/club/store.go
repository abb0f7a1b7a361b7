package club

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// CreatePlayer inserts a new player. The given rating becomes both the current
// and the original rating; the original is never touched again.
func (s *store) CreatePlayer(name string, rating int, slackUserID *string) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rating < MinRating || rating > MaxRating {
		return nil, fmt.Errorf("rating %d outside allowed range [%d,%d]", rating, MinRating, MaxRating)
	}

	now := time.Now().Unix()
	res, err := s.db.Exec(`
		INSERT INTO players (name, rating, original_rating, active, slack_user_id, created_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`, name, rating, rating, slackUserID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new player id: %w", err)
	}

	log.Info("Created player", "playerID", id, "name", name, "rating", rating)
	return &Player{
		ID:             id,
		Name:           name,
		Rating:         rating,
		OriginalRating: rating,
		Active:         true,
		SlackUserID:    slackUserID,
		CreatedAt:      now,
	}, nil
}

// GetPlayer retrieves a single player. An absent player is not an error; the
// caller receives (nil, nil).
func (s *store) GetPlayer(id int64) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, rating, original_rating, previous_rating, last_rating_update, active, slack_user_id, created_at
		FROM players WHERE id = ?
	`, id)

	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return p, nil
}

func (s *store) ListPlayers(activeOnly bool) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, rating, original_rating, previous_rating, last_rating_update, active, slack_user_id, created_at
		FROM players
	`
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(query)
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *store) UpdatePlayer(id int64, name string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE players SET name = ?, active = ? WHERE id = ?", name, active, id)
	return err
}

// SetRating commits a single rating adjustment along with the previous rating
// and the adjustment timestamp.
func (s *store) SetRating(id int64, newRating, previousRating int, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE players SET rating = ?, previous_rating = ?, last_rating_update = ? WHERE id = ?
	`, newRating, previousRating, ts, id)
	return err
}

// ApplyRecomputedRatings resets every player's rating to its original value and
// applies the given adjustments, all inside one transaction. Either the whole
// recomputation lands or none of it does.
func (s *store) ApplyRecomputedRatings(adjustments []RatingAdjustment, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin recompute transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE players SET rating = original_rating, previous_rating = NULL, last_rating_update = NULL")
	if err != nil {
		return fmt.Errorf("failed to reset ratings: %w", err)
	}

	for _, adj := range adjustments {
		_, err = tx.Exec(`
			UPDATE players SET rating = ?, previous_rating = ?, last_rating_update = ? WHERE id = ?
		`, adj.NewRating, adj.PreviousRating, ts, adj.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to apply rating adjustment for player %d: %w", adj.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recompute transaction: %w", err)
	}
	log.Info("Applied recomputed ratings", "adjustments", len(adjustments))
	return nil
}

// CreateMatch inserts a new match and fills in its id and creation time.
// WinningTeam is stored as given; deriving it from the scores is the caller's
// responsibility.
func (s *store) CreateMatch(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.CreatedAt = time.Now().Unix()
	res, err := s.db.Exec(`
		INSERT INTO matches (team_a_player1, team_a_player2, team_b_player1, team_b_player2, team_a_score, team_b_score, winning_team, played_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.TeamAPlayer1, m.TeamAPlayer2, m.TeamBPlayer1, m.TeamBPlayer2, m.TeamAScore, m.TeamBScore, string(m.WinningTeam), m.PlayedAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new match id: %w", err)
	}
	log.Info("Created match", "matchID", m.ID, "winner", m.WinningTeam)
	return nil
}

// GetMatch retrieves a single match, (nil, nil) when absent.
func (s *store) GetMatch(id int64) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, team_a_score, team_b_score, winning_team, played_at, created_at
		FROM matches WHERE id = ?
	`, id)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (s *store) UpdateMatch(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE matches SET team_a_player1 = ?, team_a_player2 = ?, team_b_player1 = ?, team_b_player2 = ?,
			team_a_score = ?, team_b_score = ?, winning_team = ?, played_at = ?
		WHERE id = ?
	`, m.TeamAPlayer1, m.TeamAPlayer2, m.TeamBPlayer1, m.TeamBPlayer2, m.TeamAScore, m.TeamBScore, string(m.WinningTeam), m.PlayedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("match %d not found", m.ID)
	}
	return nil
}

func (s *store) DeleteMatch(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return nil
}

// AllMatches retrieves every match, most recent first.
func (s *store) AllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, team_a_score, team_b_score, winning_team, played_at, created_at
		FROM matches ORDER BY played_at DESC, id DESC
	`)
	if err != nil {
		log.Error("Failed to query all matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

// MatchesForPlayer retrieves all matches the player took part in, most recent
// first.
func (s *store) MatchesForPlayer(playerID int64) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, team_a_player1, team_a_player2, team_b_player1, team_b_player2, team_a_score, team_b_score, winning_team, played_at, created_at
		FROM matches
		WHERE team_a_player1 = ? OR team_a_player2 = ? OR team_b_player1 = ? OR team_b_player2 = ?
		ORDER BY played_at DESC, id DESC
	`, playerID, playerID, playerID, playerID)
	if err != nil {
		log.Error("Failed to query matches for player", "error", err, "playerID", playerID)
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"matches", "one_time_codes", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var name sql.NullString
	var previousRating sql.NullInt64
	var lastUpdate sql.NullInt64
	var slackUserID sql.NullString

	err := scanner.Scan(&p.ID, &name, &p.Rating, &p.OriginalRating, &previousRating, &lastUpdate, &p.Active, &slackUserID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Name = name.String // handle NULL name from db
	if previousRating.Valid {
		v := int(previousRating.Int64)
		p.PreviousRating = &v
	}
	if lastUpdate.Valid {
		v := lastUpdate.Int64
		p.LastRatingUpdate = &v
	}
	if slackUserID.Valid {
		p.SlackUserID = &slackUserID.String
	}
	return &p, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var winningTeam string
	err := scanner.Scan(
		&m.ID, &m.TeamAPlayer1, &m.TeamAPlayer2, &m.TeamBPlayer1, &m.TeamBPlayer2,
		&m.TeamAScore, &m.TeamBScore, &winningTeam, &m.PlayedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.WinningTeam = Team(winningTeam)
	return &m, nil
}

func collectMatches(rows *sql.Rows) ([]*Match, error) {
	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
