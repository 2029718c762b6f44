package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gamerooms/casino-be/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

// Database persists the state the engine itself never owns: player
// accounts, room snapshots and settled round history. It is also the
// settlement collaborator: balance mutation happens here and only here.
type Database struct {
	db *sql.DB
}

type PlayerStats struct {
	PlayerID      string    `json:"playerId"`
	PlayerName    string    `json:"playerName"`
	RoundsPlayed  int       `json:"roundsPlayed"`
	RoundsWon     int       `json:"roundsWon"`
	TotalStaked   int       `json:"totalStaked"`
	TotalWinnings int       `json:"totalWinnings"`
	LastPlayed    time.Time `json:"lastPlayed"`
}

// NewDatabase opens the sqlite database at path and creates tables.
func NewDatabase(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			balance INTEGER NOT NULL DEFAULT 1000,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_seen TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating players table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP,
			room_state TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating rooms table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			dealer_score INTEGER NOT NULL,
			aborted INTEGER NOT NULL DEFAULT 0,
			played_at TIMESTAMP NOT NULL,
			FOREIGN KEY (room_id) REFERENCES rooms (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating rounds table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS round_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			round_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			stake INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			payout INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (round_id) REFERENCES rounds (id),
			FOREIGN KEY (player_id) REFERENCES players (id)
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating round_results table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreatePlayer creates a new player account
func (d *Database) CreatePlayer(playerID, playerName string, initialBalance int) error {
	now := time.Now()
	_, err := d.db.Exec(
		"INSERT INTO players (id, name, balance, created_at, last_seen) VALUES (?, ?, ?, ?, ?)",
		playerID, playerName, initialBalance, now, now,
	)
	return err
}

// GetPlayerByID retrieves a player account by ID. Returns nil, nil when
// the player does not exist.
func (d *Database) GetPlayerByID(playerID string) (*game.PlayerInfo, error) {
	var p game.PlayerInfo

	err := d.db.QueryRow("SELECT id, name, balance FROM players WHERE id = ?", playerID).Scan(
		&p.ID,
		&p.Name,
		&p.Balance,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

// UpdatePlayerLastSeen updates a player's last seen timestamp
func (d *Database) UpdatePlayerLastSeen(playerID string) error {
	_, err := d.db.Exec(
		"UPDATE players SET last_seen = ? WHERE id = ?",
		time.Now(), playerID,
	)
	return err
}

// payout returns the net balance change for one settled seat. The engine
// never touched the balance during the round, so wins credit the stake,
// losses debit it, and pushes or aborted seats leave it untouched.
func payout(r game.Result) int {
	switch r.Outcome {
	case game.OutcomePlayerWins, game.OutcomeDealerBust:
		return r.Stake
	case game.OutcomeDealerWins, game.OutcomePlayerBust:
		return -r.Stake
	default:
		return 0
	}
}

// Settle records a finished round and applies each seat's payout to the
// player's balance. Implements the engine's Settler interface.
func (d *Database) Settle(ctx context.Context, round *game.RoundResult) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting settlement: %w", err)
	}
	defer tx.Rollback()

	aborted := 0
	if round.Aborted {
		aborted = 1
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO rounds (id, room_id, dealer_score, aborted, played_at) VALUES (?, ?, ?, ?, ?)",
		round.ID, round.RoomID, round.DealerScore, aborted, round.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving round: %w", err)
	}

	now := time.Now()
	for _, r := range round.Results {
		p := payout(r)
		_, err = tx.ExecContext(ctx,
			"INSERT INTO round_results (round_id, player_id, stake, outcome, payout, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			round.ID, r.PlayerID, r.Stake, string(r.Outcome), p, now,
		)
		if err != nil {
			return fmt.Errorf("error saving result for %s: %w", r.PlayerID, err)
		}

		if p != 0 {
			_, err = tx.ExecContext(ctx,
				"UPDATE players SET balance = balance + ?, last_seen = ? WHERE id = ?",
				p, now, r.PlayerID,
			)
			if err != nil {
				return fmt.Errorf("error updating balance for %s: %w", r.PlayerID, err)
			}
		}
	}

	return tx.Commit()
}

// SaveRoom saves a room snapshot to the database
func (d *Database) SaveRoom(r *game.Room) error {
	roomState, err := json.Marshal(r)
	if err != nil {
		return err
	}

	info := r.Summarize()
	_, err = d.db.Exec(`
		INSERT INTO rooms (id, kind, status, created_at, updated_at, room_state)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET status = excluded.status, updated_at = excluded.updated_at, room_state = excluded.room_state
	`,
		r.ID, r.Kind, string(info.Status), r.CreatedAt, time.Now(), string(roomState))
	return err
}

// GetRoom retrieves a room snapshot by ID
func (d *Database) GetRoom(id string) (*game.Room, error) {
	var roomState []byte
	var r game.Room

	err := d.db.QueryRow("SELECT room_state FROM rooms WHERE id = ?", id).Scan(&roomState)
	if err != nil {
		return nil, fmt.Errorf("room not found: %w", err)
	}

	if err := json.Unmarshal(roomState, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// GetRoomsByKind retrieves all rooms of a game kind
func (d *Database) GetRoomsByKind(kind string) ([]*game.Room, error) {
	rows, err := d.db.Query(
		"SELECT room_state FROM rooms WHERE kind = ? ORDER BY created_at DESC", kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRooms(rows)
}

// GetOpenRoom retrieves a room of the given kind that still accepts seats
func (d *Database) GetOpenRoom(kind string) (*game.Room, error) {
	rows, err := d.db.Query(
		"SELECT room_state FROM rooms WHERE kind = ? AND status != ? ORDER BY created_at DESC",
		kind, string(game.Closed),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms, err := scanRooms(rows)
	if err != nil {
		return nil, err
	}
	for _, r := range rooms {
		if r.Occupancy() < r.Capacity {
			return r, nil
		}
	}

	return nil, sql.ErrNoRows
}

// DeleteRoom removes a room from the database
func (d *Database) DeleteRoom(id string) error {
	_, err := d.db.Exec("DELETE FROM rooms WHERE id = ?", id)
	return err
}

// GetAllRooms returns all rooms in the database
func (d *Database) GetAllRooms() ([]*game.Room, error) {
	rows, err := d.db.Query("SELECT room_state FROM rooms ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRooms(rows)
}

func scanRooms(rows *sql.Rows) ([]*game.Room, error) {
	var rooms []*game.Room
	for rows.Next() {
		var roomState []byte
		if err := rows.Scan(&roomState); err != nil {
			return nil, err
		}

		var r game.Room
		if err := json.Unmarshal(roomState, &r); err != nil {
			return nil, err
		}

		rooms = append(rooms, &r)
	}

	return rooms, rows.Err()
}

// GetPlayerStats retrieves a player's settled-round statistics
func (d *Database) GetPlayerStats(playerID string) (*PlayerStats, error) {
	var stats PlayerStats
	var playerName string

	err := d.db.QueryRow("SELECT name FROM players WHERE id = ?", playerID).Scan(&playerName)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM round_results WHERE player_id = ?", playerID,
	).Scan(&stats.RoundsPlayed)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM round_results WHERE player_id = ? AND outcome IN (?, ?)",
		playerID, string(game.OutcomePlayerWins), string(game.OutcomeDealerBust),
	).Scan(&stats.RoundsWon)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(
		"SELECT COALESCE(SUM(stake), 0) FROM round_results WHERE player_id = ?", playerID,
	).Scan(&stats.TotalStaked)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(
		"SELECT COALESCE(SUM(payout), 0) FROM round_results WHERE player_id = ?", playerID,
	).Scan(&stats.TotalWinnings)
	if err != nil {
		return nil, err
	}

	var lastPlayed sql.NullTime
	err = d.db.QueryRow(
		"SELECT MAX(created_at) FROM round_results WHERE player_id = ?", playerID,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if lastPlayed.Valid {
		stats.LastPlayed = lastPlayed.Time
	}

	stats.PlayerID = playerID
	stats.PlayerName = playerName

	return &stats, nil
}
