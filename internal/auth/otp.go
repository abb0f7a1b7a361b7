package auth

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrInvalidCode is returned when a one-time code is wrong, expired or already used.
var ErrInvalidCode = errors.New("invalid or expired code")

// codeTTL is how long an issued one-time code stays redeemable.
const codeTTL = 10 * time.Minute

// Store manages one-time passcodes.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore creates a new one-time code store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Issue creates a fresh 6-digit code for the player. Only the Argon2id hash
// is stored; the plaintext code exists solely in the return value so it can
// be delivered to the player. Any earlier unconsumed codes for the player are
// invalidated.
func (s *Store) Issue(playerID int64) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := generateCode()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate code: %w", err)
	}
	hash, err := CreateHash(code)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to hash code: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(codeTTL)

	tx, err := s.db.Begin()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A new code supersedes any outstanding one.
	if _, err := tx.Exec("UPDATE one_time_codes SET consumed = 1 WHERE player_id = ? AND consumed = 0", playerID); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO one_time_codes (id, player_id, code_hash, expires_at, consumed, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, uuid.NewString(), playerID, hash, expiresAt.Unix(), now.Unix())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to commit code: %w", err)
	}

	log.Info("Issued one-time code", "playerID", playerID, "expiresAt", expiresAt.Unix())
	return code, expiresAt, nil
}

// Verify checks the given code against the player's outstanding codes and
// consumes it on success. A code can be redeemed at most once.
func (s *Store) Verify(playerID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, code_hash FROM one_time_codes
		WHERE player_id = ? AND consumed = 0 AND expires_at > ?
	`, playerID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to query codes: %w", err)
	}
	defer rows.Close()

	var matchedID string
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return fmt.Errorf("failed to scan code row: %w", err)
		}
		ok, err := CompareCodeAndHash(code, hash)
		if err != nil {
			log.Error("Failed to compare code hash", "error", err, "playerID", playerID)
			continue
		}
		if ok {
			matchedID = id
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	// Release the cursor before writing; connection pools with a single
	// connection would otherwise deadlock.
	rows.Close()
	if matchedID == "" {
		return ErrInvalidCode
	}

	if _, err := s.db.Exec("UPDATE one_time_codes SET consumed = 1 WHERE id = ?", matchedID); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
