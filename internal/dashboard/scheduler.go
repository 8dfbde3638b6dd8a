package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type decayAction int

const (
	decayKeep decayAction = iota
	decayRestart
	decayStop
)

// command is a unit of work executed by the scheduler. Every command re-arms
// the refresh ticker so a periodic refresh cannot land right behind it.
type command struct {
	fn    func(ctx context.Context) error
	decay decayAction
	reply chan error
}

// Run is the single scheduler. It refreshes immediately, then on every tick,
// and executes submitted commands in order. It returns when ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.execMu.Lock()
	started := c.runState.CompareAndSwap(stateIdle, stateRunning)
	if started {
		close(c.started)
	}
	c.execMu.Unlock()
	if !started {
		return errors.New("dashboard: controller already started")
	}
	defer func() {
		c.runState.Store(stateStopped)
		c.applyDecay(decayStop)
		close(c.done)
		c.closeSubscribers()
	}()

	c.logger.Info("dashboard scheduler started",
		slog.Duration("refresh_interval", c.cfg.RefreshInterval),
		slog.Duration("surge_decay", c.cfg.SurgeDecay),
		slog.String("instance_id", c.cfg.InstanceID),
	)

	if _, err := c.refresh(ctx, refreshOptions{}); err != nil {
		c.logger.Error("initial refresh failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("dashboard scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := c.refresh(ctx, refreshOptions{}); err != nil {
				c.logger.Error("scheduled refresh failed", slog.Any("error", err))
			}
		case cmd := <-c.cmds:
			err := c.run(ctx, cmd)
			ticker.Reset(c.cfg.RefreshInterval)
			cmd.reply <- err
		}
	}
}

// Started is closed once Run owns the controller.
func (c *Controller) Started() <-chan struct{} {
	return c.started
}

// exec runs cmd on the scheduler when it is running, or inline under execMu
// when it was never started.
func (c *Controller) exec(ctx context.Context, cmd command) error {
	if c.runState.Load() == stateIdle {
		c.execMu.Lock()
		if c.runState.Load() == stateIdle {
			defer c.execMu.Unlock()
			return c.run(ctx, cmd)
		}
		c.execMu.Unlock()
	}
	if c.runState.Load() == stateStopped {
		return ErrStopped
	}

	cmd.reply = make(chan error, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes cmd and applies its decay action when it succeeds.
func (c *Controller) run(ctx context.Context, cmd command) error {
	if err := cmd.fn(ctx); err != nil {
		return err
	}
	c.applyDecay(cmd.decay)
	return nil
}

// applyDecay restarts or stops the surge-decay timer. Each arming gets a new
// epoch so a timer that already fired cannot clear a newer surge.
func (c *Controller) applyDecay(action decayAction) {
	if action == decayKeep {
		return
	}
	c.decayMu.Lock()
	defer c.decayMu.Unlock()
	if c.decay != nil {
		c.decay.Stop()
		c.decay = nil
	}
	c.decayEpoch++
	if action != decayRestart || c.cfg.SurgeDecay <= 0 {
		return
	}
	epoch := c.decayEpoch
	c.decay = time.AfterFunc(c.cfg.SurgeDecay, func() {
		c.decayMu.Lock()
		if c.decayEpoch != epoch {
			c.decayMu.Unlock()
			return
		}
		c.decay = nil
		c.decayMu.Unlock()
		c.gen.ClearSurge()
		c.logger.Info("surge simulation decayed")
	})
}
