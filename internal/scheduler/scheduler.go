// Package scheduler runs the discover and bump cycle on a fixed interval until
// the process is terminated.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodsign/monday"
	"github.com/tradebump/tradebump/internal/discovery"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/output"
	"github.com/tradebump/tradebump/internal/session"
	"github.com/tradebump/tradebump/internal/types"
)

const nextRunLayout = "Monday, 2 January 2006 15:04:05"

type Authenticator interface {
	Login(ctx context.Context, creds types.Credentials) (*session.Session, error)
}

type Discoverer interface {
	Discover(ctx context.Context, s *session.Session, username string, target types.Target) ([]string, error)
}

type Bumper interface {
	Bump(ctx context.Context, s *session.Session, listings []string) types.CycleReport
}

// State is the state of the scheduler.
type State string

const (
	StateRunning State = "running"
	StateIdle    State = "idle"
)

// Options holds the collaborators of a Scheduler.
type Options struct {
	Session       *session.Session
	Credentials   types.Credentials
	RunConfig     types.RunConfig
	Authenticator Authenticator
	Discoverer    Discoverer
	Bumper        Bumper
	Writer        output.Writer
	Locale        string
}

// Scheduler owns the session for the lifetime of the process. It is not safe
// for concurrent use.
type Scheduler struct {
	Options
	state State
	cycle int
	now   func() time.Time
	wait  func(ctx context.Context, d time.Duration) error
}

func New(opts Options) *Scheduler {
	return &Scheduler{
		Options: opts,
		state:   StateIdle,
		now:     time.Now,
		wait:    sleep,
	}
}

// Run alternates between running a cycle and waiting for the configured
// interval. Failures within a cycle never end the loop and do not change the
// interval. Run only returns once ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "scheduler"))
	logger.Info(fmt.Sprintf("bumping %s trades of %s every %d minutes", s.RunConfig.Target, s.Session.Username, s.RunConfig.IntervalMinutes))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.state = StateRunning
		s.runCycle(ctx)

		s.state = StateIdle
		interval := s.RunConfig.Interval()
		logger.Info(fmt.Sprintf("next run at %s", monday.Format(s.nextRun(interval), nextRunLayout, monday.Locale(s.Locale))))
		if err := s.wait(ctx, interval); err != nil {
			return err
		}
	}
}

// State returns whether the scheduler is currently running a cycle or waiting.
func (s *Scheduler) State() State {
	return s.state
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.cycle++
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "scheduler"), slog.Int("cycle", s.cycle))
	ctx = log.ContextWithLogger(ctx, logger)
	logger.Info("starting cycle")

	listings, err := s.Discoverer.Discover(ctx, s.Session, s.Session.Username, s.RunConfig.Target)
	if errors.Is(err, discovery.ErrSessionExpired) {
		logger.Warn("session expired, logging in again")
		sess, loginErr := s.Authenticator.Login(ctx, s.Credentials)
		if loginErr != nil {
			logger.Error(fmt.Sprintf("cycle failed: %v", loginErr))
			return
		}
		s.Session = sess
		listings, err = s.Discoverer.Discover(ctx, s.Session, s.Session.Username, s.RunConfig.Target)
	}
	if err != nil {
		logger.Error(fmt.Sprintf("cycle failed: %v", err))
		return
	}

	report := s.Bumper.Bump(ctx, s.Session, listings)
	report.Cycle = s.cycle
	logger.Info(fmt.Sprintf("cycle done: %d bumped, %d failed", report.NrSucceeded(), report.NrFailed()))
	if s.Writer != nil {
		if err := s.Writer.Write(ctx, report); err != nil {
			logger.Error(fmt.Sprintf("failed to write cycle report: %v", err))
		}
	}
}

// nextRun is the time the wait started now ends.
func (s *Scheduler) nextRun(interval time.Duration) time.Time {
	return s.now().Add(interval)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
