package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game/rules"
	"github.com/holotable/holotable-server-go/internal/game/state"
)

// EntryKind is the kind of a recorded player input.
type EntryKind string

const (
	EntryAnswer  EntryKind = "answer"
	EntryRevert  EntryKind = "revert"
	EntryRestore EntryKind = "restore"
	EntryConcede EntryKind = "concede"
	EntryTimeout EntryKind = "timeout"
	EntryCancel  EntryKind = "cancel"

	// EntryAutoPass records an auto-pass setting. Settings made before the
	// game started carry BeforeStart.
	EntryAutoPass EntryKind = "auto_pass"
)

// ReplayEntry is one player input in the order the game received it.
type ReplayEntry struct {
	Kind        EntryKind
	PlayerID    string
	Answer      string
	SnapshotID  int
	Phase       state.Phase
	Enabled     bool
	BeforeStart bool
}

// Replay records what is needed to play a game again: the seats, the
// settings including the seed, and every input. Games are deterministic
// given these, so no game states are stored.
type Replay struct {
	GameID  string
	Seed    uint64
	Config  Config
	Dark    Seat
	Light   Seat
	Entries []ReplayEntry
	mu      sync.RWMutex
}

// NewReplay creates an empty replay for a game.
func NewReplay(gameID string, seed uint64, cfg Config, dark, light Seat) *Replay {
	return &Replay{
		GameID:  gameID,
		Seed:    seed,
		Config:  cfg,
		Dark:    dark,
		Light:   light,
		Entries: make([]ReplayEntry, 0, 64),
	}
}

func (r *Replay) record(e ReplayEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, e)
}

// Size returns the number of recorded entries.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Entries)
}

// EntriesCopy returns the recorded entries.
func (r *Replay) EntriesCopy() []ReplayEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ReplayEntry(nil), r.Entries...)
}

// replayMetadata heads a saved replay file.
type replayMetadata struct {
	GameID     string
	Timestamp  time.Time
	Version    int
	EntryCount int
}

type replayHeader struct {
	Seed   uint64
	Config Config
	Dark   Seat
	Light  Seat
}

// SaveToFile writes the replay to <directory>/<game id>.replay as gzipped gob.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.GameID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()
	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		GameID:     r.GameID,
		Timestamp:  time.Now(),
		Version:    1,
		EntryCount: len(r.Entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	header := replayHeader{Seed: r.Seed, Config: r.Config, Dark: r.Dark, Light: r.Light}
	if err := encoder.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for i, e := range r.Entries {
		if err := encoder.Encode(e); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()
	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}
	var header replayHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	replay := NewReplay(metadata.GameID, header.Seed, header.Config, header.Dark, header.Light)
	for i := 0; i < metadata.EntryCount; i++ {
		var e ReplayEntry
		if err := decoder.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		replay.Entries = append(replay.Entries, e)
	}
	return replay, nil
}

// ReplayGame plays a recorded game again from its seed and inputs and
// returns the resulting game.
func ReplayGame(r *Replay, lib rules.Library, logger *zap.Logger) (*Game, error) {
	cfg := r.Config
	cfg.Seed = r.Seed
	g, err := NewGame(cfg, lib, r.Dark, r.Light, logger)
	if err != nil {
		return nil, err
	}
	entries := r.EntriesCopy()
	started := false
	for i, e := range entries {
		if !started && !e.BeforeStart {
			if err := g.Start(); err != nil {
				return nil, err
			}
			started = true
		}
		if err := applyEntry(g, e); err != nil {
			return g, fmt.Errorf("replay entry %d (%s by %s): %w", i, e.Kind, e.PlayerID, err)
		}
	}
	if !started {
		if err := g.Start(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func applyEntry(g *Game, e ReplayEntry) error {
	switch e.Kind {
	case EntryAnswer:
		d, ok := g.PendingDecision(e.PlayerID)
		if !ok {
			return fmt.Errorf("no decision open")
		}
		return g.SubmitDecision(e.PlayerID, d.ID, e.Answer)
	case EntryRevert:
		return g.RequestRevert(e.PlayerID)
	case EntryRestore:
		return g.RestoreSnapshot(e.SnapshotID)
	case EntryConcede:
		return g.Concede(e.PlayerID)
	case EntryTimeout:
		return g.PlayerTimedOut(e.PlayerID)
	case EntryCancel:
		return g.RequestCancel(e.PlayerID)
	case EntryAutoPass:
		return g.SetAutoPass(e.PlayerID, e.Phase, e.Enabled)
	}
	return fmt.Errorf("unknown entry kind %q", e.Kind)
}

// ReplayRecorder saves the replay of every tracked game to disk when the
// game ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	saveDir string

	mu      sync.Mutex
	replays map[string]*Replay
}

// NewReplayRecorder creates a recorder writing to saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		saveDir: saveDir,
		replays: make(map[string]*Replay),
	}
}

// Track starts recording a game. It must be called before the game starts.
func (rr *ReplayRecorder) Track(g *Game) {
	rr.mu.Lock()
	rr.replays[g.ID()] = g.Replay()
	rr.mu.Unlock()
	g.AddResultListener(rr)
}

// GameFinished implements ResultListener.
func (rr *ReplayRecorder) GameFinished(gameID, _, _ string, _ map[string]string) {
	rr.save(gameID)
}

// GameCancelled implements ResultListener.
func (rr *ReplayRecorder) GameCancelled(gameID string) {
	rr.save(gameID)
}

func (rr *ReplayRecorder) save(gameID string) {
	rr.mu.Lock()
	replay, ok := rr.replays[gameID]
	delete(rr.replays, gameID)
	rr.mu.Unlock()
	if !ok {
		return
	}
	if err := replay.SaveToFile(rr.saveDir); err != nil {
		rr.logger.Error("failed to save replay",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		return
	}
	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("entry_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
}

// LoadReplay loads a saved replay.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	return LoadReplayFromFile(rr.saveDir, gameID)
}
