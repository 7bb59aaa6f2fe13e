package services

import (
	"context"
	"time"
)

// Countdown is a remaining duration split into calendar-free units.
type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// ComputeCountdown splits the time left until target. It reports false once
// target is no longer in the future.
func ComputeCountdown(target, now time.Time) (Countdown, bool) {
	remaining := target.Sub(now)
	if remaining <= 0 {
		return Countdown{}, false
	}

	total := int(remaining / time.Second)
	return Countdown{
		Days:    total / 86400,
		Hours:   total / 3600 % 24,
		Minutes: total / 60 % 60,
		Seconds: total % 60,
	}, true
}

// CountdownTick is one emission of a running countdown.
type CountdownTick struct {
	Remaining Countdown `json:"remaining"`
	Arrived   bool      `json:"arrived"`
}

// StartCountdown recomputes the countdown to target immediately and then once
// per interval. The channel is closed after the arrival tick or when ctx is done.
func StartCountdown(ctx context.Context, target time.Time, interval time.Duration, clock func() time.Time) <-chan CountdownTick {
	if clock == nil {
		clock = time.Now
	}
	ticks := make(chan CountdownTick, 1)

	go func() {
		defer close(ticks)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			remaining, pending := ComputeCountdown(target, clock())
			select {
			case ticks <- CountdownTick{Remaining: remaining, Arrived: !pending}:
			case <-ctx.Done():
				return
			}
			if !pending {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ticks
}
