package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type scriptedChecker struct {
	results []error
	i       int
}

func (s *scriptedChecker) HealthCheck(ctx context.Context) error {
	if s.i >= len(s.results) {
		return s.results[len(s.results)-1]
	}
	err := s.results[s.i]
	s.i++
	return err
}

func TestOracle_TwoProbesToGoOnline(t *testing.T) {
	checker := &scriptedChecker{results: []error{nil, nil}}
	oracle := NewOracle(checker, testLog, time.Second)
	ctx := context.Background()

	assert.False(t, oracle.Probe(ctx), "one good probe is not enough")
	assert.True(t, oracle.Probe(ctx))
	assert.True(t, oracle.Online())
}

func TestOracle_SingleFailureDoesNotFlap(t *testing.T) {
	checker := &scriptedChecker{results: []error{nil, nil, ErrTransport, nil}}
	oracle := NewOracle(checker, testLog, time.Second)
	ctx := context.Background()

	oracle.Probe(ctx)
	oracle.Probe(ctx)
	assert.True(t, oracle.Online())

	// One dropped probe on a flaky link keeps the state online.
	assert.True(t, oracle.Probe(ctx))
	assert.True(t, oracle.Probe(ctx))
}

func TestOracle_TwoFailuresGoOffline(t *testing.T) {
	checker := &scriptedChecker{results: []error{nil, nil, ErrTransport, ErrTransport}}
	oracle := NewOracle(checker, testLog, time.Second)
	ctx := context.Background()

	oracle.Probe(ctx)
	oracle.Probe(ctx)
	oracle.Probe(ctx)
	assert.False(t, oracle.Probe(ctx))
	assert.False(t, oracle.Online())
}

func TestOracle_OnChangeFiresOnFlipOnly(t *testing.T) {
	checker := &scriptedChecker{results: []error{nil, nil, nil}}
	oracle := NewOracle(checker, testLog, time.Second)

	var flips []bool
	oracle.OnChange(func(online bool) { flips = append(flips, online) })

	ctx := context.Background()
	oracle.Probe(ctx)
	oracle.Probe(ctx)
	oracle.Probe(ctx)

	assert.Equal(t, []bool{true}, flips)
}
