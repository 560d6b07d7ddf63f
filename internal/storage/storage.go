package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chesscore/internal/board"
)

// Storage keys
const (
	keyStats    = "stats"
	perftPrefix = "perft/"
)

// Result is the outcome of a finished game from White's point of view.
type Result int

const (
	Draw Result = iota
	WhiteWin
	BlackWin
)

func (r Result) String() string {
	switch r {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// GameResult describes one finished self-play game.
type GameResult struct {
	Result   Result
	Plies    int
	Nodes    uint64
	Duration time.Duration
}

// MatchStats accumulates results over many games.
type MatchStats struct {
	GamesPlayed int           `json:"games_played"`
	WhiteWins   int           `json:"white_wins"`
	BlackWins   int           `json:"black_wins"`
	Draws       int           `json:"draws"`
	TotalPlies  int           `json:"total_plies"`
	TotalNodes  uint64        `json:"total_nodes"`
	TotalTime   time.Duration `json:"total_time"`
}

// Add folds one result into the totals.
func (s *MatchStats) Add(r GameResult) {
	s.GamesPlayed++
	s.TotalPlies += r.Plies
	s.TotalNodes += r.Nodes
	s.TotalTime += r.Duration
	switch r.Result {
	case WhiteWin:
		s.WhiteWins++
	case BlackWin:
		s.BlackWins++
	default:
		s.Draws++
	}
}

// AveragePlies returns the mean game length in plies.
func (s *MatchStats) AveragePlies() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.GamesPlayed)
}

// AverageNodes returns the mean number of nodes searched per game.
func (s *MatchStats) AverageNodes() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalNodes) / float64(s.GamesPlayed)
}

func (s *MatchStats) String() string {
	return fmt.Sprintf("W:%d B:%d D:%d | Avg plies: %.1f | Avg nodes: %.0f",
		s.WhiteWins, s.BlackWins, s.Draws, s.AveragePlies(), s.AverageNodes())
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the application data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir. An empty dir keeps everything in
// memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open storage %q: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func perftKey(hash uint64, depth int) []byte {
	key := make([]byte, len(perftPrefix)+9)
	n := copy(key, perftPrefix)
	binary.BigEndian.PutUint64(key[n:], hash)
	key[n+8] = byte(depth)
	return key
}

// GetPerft returns a cached node count for the position hash at depth.
func (s *Storage) GetPerft(hash uint64, depth int) (nodes uint64, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(hash, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("perft entry for %016x/%d: %d bytes", hash, depth, len(val))
			}
			nodes, ok = binary.BigEndian.Uint64(val), true
			return nil
		})
	})
	return nodes, ok, err
}

// PutPerft stores a node count for the position hash at depth.
func (s *Storage) PutPerft(hash uint64, depth int, nodes uint64) error {
	val := binary.BigEndian.AppendUint64(nil, nodes)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(perftKey(hash, depth), val)
	})
}

// Perft counts leaf nodes of pos at depth, consulting and filling the
// cache. cached reports whether the count came from the database.
func (s *Storage) Perft(pos *board.Position, depth int) (nodes uint64, cached bool, err error) {
	nodes, ok, err := s.GetPerft(pos.Hash, depth)
	if err != nil || ok {
		return nodes, ok, err
	}
	nodes = pos.Perft(depth)
	return nodes, false, s.PutPerft(pos.Hash, depth, nodes)
}

// ClearPerft drops every cached perft entry.
func (s *Storage) ClearPerft() error {
	return s.db.DropPrefix([]byte(perftPrefix))
}

// PerftEntries returns the number of cached perft counts.
func (s *Storage) PerftEntries() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(perftPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// SaveStats saves match statistics.
func (s *Storage) SaveStats(stats *MatchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads match statistics, returning empty stats if none are saved.
func (s *Storage) LoadStats() (*MatchStats, error) {
	stats := &MatchStats{}
	err := s.db.View(func(txn *badger.Txn) error {
		return loadStats(txn, stats)
	})
	return stats, err
}

func loadStats(txn *badger.Txn, stats *MatchStats) error {
	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
}

// RecordGame adds a finished game to the saved statistics in one
// transaction and returns the new totals.
func (s *Storage) RecordGame(result GameResult) (*MatchStats, error) {
	stats := &MatchStats{}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := loadStats(txn, stats); err != nil {
			return err
		}
		stats.Add(result)
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
	if err != nil {
		return nil, fmt.Errorf("record game: %w", err)
	}
	return stats, nil
}

// ResetStats zeroes the saved statistics.
func (s *Storage) ResetStats() error {
	return s.SaveStats(&MatchStats{})
}
