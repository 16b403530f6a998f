// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that code
// driven by timers — reconnect backoff, heartbeat intervals, retry
// delays — can be tested deterministically.
//
// Production code accepts a [Clock] instead of calling time.Now,
// time.After, time.NewTicker, or time.AfterFunc directly. [Real]
// returns the standard library behavior. [Fake] returns a clock that
// stands still until [FakeClock.Advance] is called.
//
// Tests that start goroutines which register timers should call
// [FakeClock.WaitForTimers] before Advance; this removes the race
// between timer registration and time advancement:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.WaitForTimers(1)
//	c.Advance(2 * time.Second)
package clock
