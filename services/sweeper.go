package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/queue-app/utils"
)

// Sweeper runs the timeout and auto-assign sweeps on a ticker. It is off
// unless SWEEP_INTERVAL is set; the sweeps are normally triggered from
// outside through the API or the CLI.
type Sweeper struct {
	Queue     *QueueService
	Analytics *AnalyticsService
	Interval  time.Duration
	OnChange  func(timedOut, assigned int)

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
	started   chan struct{}
	done      chan struct{}
}

func NewSweeper(queue *QueueService, analytics *AnalyticsService, interval time.Duration) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		Queue:     queue,
		Analytics: analytics,
		Interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		started:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the ticker loop once. Sweeps run with a context that Stop
// cancels.
func (sw *Sweeper) Start() {
	sw.startOnce.Do(func() {
		close(sw.started)
		go sw.loop()
	})
}

func (sw *Sweeper) loop() {
	defer close(sw.done)
	ticker := time.NewTicker(sw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.RunOnce(sw.ctx)
		case <-sw.ctx.Done():
			return
		}
	}
}

// Stop cancels any sweep in flight and waits for the loop to exit. It is
// safe to call more than once, and before Start.
func (sw *Sweeper) Stop() {
	sw.stopOnce.Do(func() {
		sw.cancel()
		select {
		case <-sw.started:
		default:
			return
		}
		select {
		case <-sw.done:
		case <-time.After(5 * time.Second):
			utils.ErrorLogger.Println("Sweeper did not stop within 5s")
		}
	})
}

// RunOnce performs one timeout sweep followed by one auto-assign sweep.
func (sw *Sweeper) RunOnce(ctx context.Context) (timedOut, assigned int) {
	timedOut, err := sw.Queue.CheckReservationTimeouts(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Timeout sweep failed: %v", err)
	}

	assigned, err = sw.Queue.AutoAssignTables(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Auto-assign sweep failed: %v", err)
	}

	if timedOut > 0 || assigned > 0 {
		utils.InfoLogger.Printf("Sweep done: %d timed out, %d assigned", timedOut, assigned)
		if sw.Analytics != nil {
			if err := sw.Analytics.UpdateAnalytics(ctx); err != nil {
				utils.ErrorLogger.Printf("Analytics refresh failed: %v", err)
			}
		}
		if sw.OnChange != nil {
			sw.OnChange(timedOut, assigned)
		}
	}
	return timedOut, assigned
}
