package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplySuccess_ResetsStateAndClearsRevived(t *testing.T) {
	n := &MonitoredNode{Address: "localhost:8545", Failures: 4, Alive: false, Revived: true}

	n.applySuccess(time.Now())

	assert.Equal(t, 0, n.Failures)
	assert.True(t, n.Alive)
	assert.False(t, n.Revived)
}

func TestApplyFailure_IncrementsAndRevivesAtThreshold(t *testing.T) {
	n := &MonitoredNode{Address: "localhost:8545", Alive: true}

	for i := 1; i < 5; i++ {
		revive := n.applyFailure(time.Now(), 5)
		assert.False(t, revive, "should not revive before threshold at failure %d", i)
		assert.Equal(t, i, n.Failures)
		assert.False(t, n.Alive)
	}

	revive := n.applyFailure(time.Now(), 5)
	assert.True(t, revive, "should revive exactly on the threshold-crossing failure")
	assert.Equal(t, 5, n.Failures)
}

func TestApplyFailure_DoesNotReviveAgainWithinSameStreak(t *testing.T) {
	n := &MonitoredNode{Address: "localhost:8545", Alive: true}

	for i := 0; i < 1; i++ {
		n.applyFailure(time.Now(), 1)
	}
	n.Revived = true

	revive := n.applyFailure(time.Now(), 1)
	assert.False(t, revive, "revival is dispatched at most once per failure streak")
	assert.Equal(t, 2, n.Failures)
}

func TestApplyFailure_NeverNegative(t *testing.T) {
	n := &MonitoredNode{Address: "localhost:8545"}
	n.applyFailure(time.Now(), 5)
	assert.GreaterOrEqual(t, n.Failures, 0)
}

func TestFailureToleranceOfOne_RevivesOnFirstFailure(t *testing.T) {
	n := &MonitoredNode{Address: "localhost:8545", Alive: true}

	revive := n.applyFailure(time.Now(), 1)
	assert.True(t, revive)
}
