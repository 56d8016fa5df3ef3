package monitoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionSweeper periodically clears stored refresh tokens whose expiry has
// passed, so stale sessions do not linger on user records indefinitely.
type SessionSweeper struct {
	db       *sql.DB
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewSessionSweeper creates a sweeper firing on the given cron schedule.
func NewSessionSweeper(db *sql.DB, scheduleExpr string) (*SessionSweeper, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", scheduleExpr, err)
	}
	return &SessionSweeper{
		db:       db,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *SessionSweeper) Run() {
	log.Info().Msg("Starting session sweeper")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	// Sweep once immediately on start
	s.sweep()
	s.nextRun = s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping session sweeper")
			return
		case now := <-s.ticker.C:
			if now.Before(s.nextRun) {
				continue
			}
			s.sweep()
			s.nextRun = s.schedule.Next(now)
		}
	}
}

// Stop halts the sweeper.
func (s *SessionSweeper) Stop() {
	s.done <- true
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = CURRENT_TIMESTAMP "+
			"WHERE refresh_token IS NOT NULL AND refresh_token_expires_at < CURRENT_TIMESTAMP")
	if err != nil {
		log.Error().Err(err).Msg("Session sweep failed")
		return
	}

	if cleared, err := res.RowsAffected(); err == nil && cleared > 0 {
		log.Info().Int64("sessions_cleared", cleared).Msg("Swept expired sessions")
	}
}
