package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/qassure-lab/lotgate/pkg/domain/model"
	"github.com/qassure-lab/lotgate/pkg/domain/types"
	"github.com/qassure-lab/lotgate/pkg/repository"
	"github.com/qassure-lab/lotgate/pkg/service/scheduler"
	"github.com/qassure-lab/lotgate/pkg/usecase"
)

// fakeClock is a settable clock shared by the scheduler and the
// escalation engine
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func autoInput(delayMinutes int) model.NCInput {
	return model.NCInput{
		InspectionID:           "insp-1",
		Severity:               types.TierMajor,
		Category:               "dimensional",
		Priority:               types.PriorityHigh,
		AutoEscalate:           true,
		EscalationDelayMinutes: delayMinutes,
		Recipients:             []string{"C012345"},
	}
}

func newFixture(t *testing.T) (*scheduler.Scheduler, *usecase.Escalation, *fakeClock, *repository.Memory) {
	repo := repository.NewMemory()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	escalationUC := usecase.NewEscalation(repo, nil, clock.Now)
	sched := scheduler.New(escalationUC, time.Minute, clock.Now)
	return sched, escalationUC, clock, repo
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("escalates after the configured delay", func(t *testing.T) {
		sched, escalationUC, clock, repo := newFixture(t)
		defer repo.Close()

		n, err := escalationUC.Raise(ctx, autoInput(120), "inspector")
		gt.NoError(t, err)

		clock.Advance(119 * time.Minute)
		gt.NoError(t, sched.Evaluate(ctx))
		unchanged, err := escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 1, unchanged.EscalationLevel)

		clock.Advance(time.Minute)
		gt.NoError(t, sched.Evaluate(ctx))
		escalated, err := escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 2, escalated.EscalationLevel)

		last, ok := escalated.History.Last()
		gt.Equal(t, true, ok)
		gt.Equal(t, types.ActorID(scheduler.ActorScheduler), last.Actor)
	})

	t.Run("escalation restarts the delay", func(t *testing.T) {
		sched, escalationUC, clock, repo := newFixture(t)
		defer repo.Close()

		n, err := escalationUC.Raise(ctx, autoInput(120), "inspector")
		gt.NoError(t, err)

		clock.Advance(120 * time.Minute)
		gt.NoError(t, sched.Evaluate(ctx))

		// Immediately after the escalation nothing further is due
		gt.NoError(t, sched.Evaluate(ctx))
		current, err := escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 2, current.EscalationLevel)

		clock.Advance(120 * time.Minute)
		gt.NoError(t, sched.Evaluate(ctx))
		current, err = escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 3, current.EscalationLevel)
	})

	t.Run("manual-only notifications are left alone", func(t *testing.T) {
		sched, escalationUC, clock, repo := newFixture(t)
		defer repo.Close()

		input := autoInput(0)
		input.AutoEscalate = false
		n, err := escalationUC.Raise(ctx, input, "inspector")
		gt.NoError(t, err)

		clock.Advance(48 * time.Hour)
		gt.NoError(t, sched.Evaluate(ctx))

		unchanged, err := escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 1, unchanged.EscalationLevel)
	})

	t.Run("resolved notifications are left alone", func(t *testing.T) {
		sched, escalationUC, clock, repo := newFixture(t)
		defer repo.Close()

		n, err := escalationUC.Raise(ctx, autoInput(60), "inspector")
		gt.NoError(t, err)
		_, err = escalationUC.Resolve(ctx, n.ID, "done", "qa")
		gt.NoError(t, err)

		clock.Advance(24 * time.Hour)
		gt.NoError(t, sched.Evaluate(ctx))

		unchanged, err := escalationUC.Get(ctx, n.ID)
		gt.NoError(t, err)
		gt.Equal(t, 1, unchanged.EscalationLevel)
		gt.Equal(t, types.NCStatusResolved, unchanged.Status)
	})

	t.Run("sweep covers every due notification", func(t *testing.T) {
		sched, escalationUC, clock, repo := newFixture(t)
		defer repo.Close()

		var ids []types.NotificationID
		for i := 0; i < 3; i++ {
			n, err := escalationUC.Raise(ctx, autoInput(30), "inspector")
			gt.NoError(t, err)
			ids = append(ids, n.ID)
		}

		clock.Advance(30 * time.Minute)
		gt.NoError(t, sched.Evaluate(ctx))

		for _, id := range ids {
			n, err := escalationUC.Get(ctx, id)
			gt.NoError(t, err)
			gt.Equal(t, 2, n.EscalationLevel)
		}
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	sched, _, _, repo := newFixture(t)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
