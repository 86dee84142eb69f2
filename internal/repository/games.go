package repository

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/holotable/holotable-server-go/internal/game"
)

// GameStore records how games ended and each player's final pile counts.
// It implements game.ResultListener and game.StatisticsListener.
type GameStore struct {
	db      execer
	timeout time.Duration
	logger  *zap.Logger
}

// NewGameStore creates a store writing through db.
func NewGameStore(db execer, logger *zap.Logger) *GameStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameStore{db: db, timeout: 5 * time.Second, logger: logger}
}

// Track attaches the store to a game.
func (s *GameStore) Track(g *game.Game) {
	g.AddResultListener(s)
	g.AddStatisticsListener(s)
}

// GameFinished implements game.ResultListener.
func (s *GameStore) GameFinished(gameID, winner, reason string, losers map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.db.Exec(ctx,
		`INSERT INTO games (game_id, winner, reason, cancelled) VALUES ($1, $2, $3, FALSE)
		 ON CONFLICT (game_id) DO UPDATE SET winner = EXCLUDED.winner, reason = EXCLUDED.reason`,
		gameID, winner, reason,
	); err != nil {
		s.logger.Error("failed to record game result", zap.String("game_id", gameID), zap.Error(err))
		return
	}

	players := make([]string, 0, len(losers))
	for p := range losers {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, p := range players {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO game_losers (game_id, player_id, reason) VALUES ($1, $2, $3)
			 ON CONFLICT (game_id, player_id) DO NOTHING`,
			gameID, p, losers[p],
		); err != nil {
			s.logger.Error("failed to record loser",
				zap.String("game_id", gameID),
				zap.String("player_id", p),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("recorded game result",
		zap.String("game_id", gameID),
		zap.String("winner", winner),
	)
}

// GameCancelled implements game.ResultListener.
func (s *GameStore) GameCancelled(gameID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.db.Exec(ctx,
		`INSERT INTO games (game_id, cancelled) VALUES ($1, TRUE)
		 ON CONFLICT (game_id) DO UPDATE SET cancelled = TRUE`,
		gameID,
	); err != nil {
		s.logger.Error("failed to record cancelled game", zap.String("game_id", gameID), zap.Error(err))
	}
}

// WritePileCounts implements game.StatisticsListener.
func (s *GameStore) WritePileCounts(gameID string, counts map[string]game.PileCounts) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	players := make([]string, 0, len(counts))
	for p := range counts {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, p := range players {
		c := counts[p]
		if _, err := s.db.Exec(ctx,
			`INSERT INTO pile_counts (game_id, player_id, reserve_deck, force_pile, used_pile, lost_pile, hand, out_of_play)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (game_id, player_id) DO UPDATE SET
			   reserve_deck = EXCLUDED.reserve_deck, force_pile = EXCLUDED.force_pile,
			   used_pile = EXCLUDED.used_pile, lost_pile = EXCLUDED.lost_pile,
			   hand = EXCLUDED.hand, out_of_play = EXCLUDED.out_of_play`,
			gameID, p, c.ReserveDeck, c.ForcePile, c.UsedPile, c.LostPile, c.Hand, c.OutOfPlay,
		); err != nil {
			s.logger.Error("failed to write pile counts",
				zap.String("game_id", gameID),
				zap.String("player_id", p),
				zap.Error(err),
			)
		}
	}
}
