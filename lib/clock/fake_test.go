// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvance(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)

	if got := c.Now(); !got.Equal(testEpoch) {
		t.Errorf("Now: got %v, want %v", got, testEpoch)
	}
	c.Advance(90 * time.Second)
	if got := c.Now(); !got.Equal(testEpoch.Add(90 * time.Second)) {
		t.Errorf("Now after Advance: got %v, want %v", got, testEpoch.Add(90*time.Second))
	}
}

func TestFakeAfterFiresAtDeadline(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)
	ch := c.After(10 * time.Second)

	c.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatal("timer fired before its deadline")
	default:
	}

	c.Advance(time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("timer did not fire at its deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should receive immediately")
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)

	fired := false
	timer := c.AfterFunc(5*time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("Stop on a pending timer should return true")
	}
	c.Advance(10 * time.Second)
	if fired {
		t.Fatal("stopped timer must not fire")
	}
	if timer.Stop() {
		t.Fatal("second Stop should return false")
	}
}

func TestFakeAfterFuncRunsDuringAdvance(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)

	var order []int
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })

	c.Advance(5 * time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("callbacks fired out of deadline order: %v", order)
	}
}

func TestFakeTickerFiresPerInterval(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	// The channel holds one tick; an advance spanning three intervals
	// delivers at most one (drop-if-full, like time.Ticker).
	c.Advance(3 * time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire")
	}

	c.Advance(time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire on subsequent interval")
	}
}

func TestFakeTickerStop(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)
	ticker := c.NewTicker(time.Second)
	ticker.Stop()

	c.Advance(5 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker must not fire")
	default:
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)

	done := make(chan struct{})
	go func() {
		c.Sleep(3 * time.Second)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(3 * time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestFakePendingCount(t *testing.T) {
	t.Parallel()
	c := Fake(testEpoch)

	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount on fresh clock: got %d, want 0", got)
	}
	c.After(time.Second)
	timer := c.AfterFunc(time.Second, func() {})
	if got := c.PendingCount(); got != 2 {
		t.Fatalf("PendingCount: got %d, want 2", got)
	}
	timer.Stop()
	if got := c.PendingCount(); got != 1 {
		t.Fatalf("PendingCount after Stop: got %d, want 1", got)
	}
}
