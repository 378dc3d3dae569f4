package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetFor(t *testing.T) {
	tests := []struct {
		priority string
		want     SLATarget
	}{
		{"Critical", SLATarget{4, 24}},
		{"high", SLATarget{8, 48}},
		{" MEDIUM ", SLATarget{24, 72}},
		{"low", SLATarget{48, 120}},
		{"P1", SLATarget{4, 24}},
		{"unknown", SLATarget{24, 72}},
		{"", SLATarget{24, 72}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetFor(tt.priority), "priority %q", tt.priority)
	}
}

func TestEvaluateSLA(t *testing.T) {
	reported := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := reported.Add(100 * time.Hour)

	met := EvaluateSLA("critical", reported, reported.Add(3*time.Hour), reported.Add(24*time.Hour), now)
	assert.True(t, met.ResponseMet)
	assert.False(t, met.Breached, "resolution exactly at target is not a breach")

	late := EvaluateSLA("critical", reported, reported.Add(5*time.Hour), reported.Add(25*time.Hour), now)
	assert.False(t, late.ResponseMet)
	assert.True(t, late.Breached)

	open := EvaluateSLA("low", reported, nil, nil, now)
	assert.Equal(t, 100.0, open.ResolutionHours)
	assert.False(t, open.Breached)

	unknown := EvaluateSLA("high", nil, nil, nil, now)
	assert.Nil(t, unknown.ResolutionHours)
	assert.False(t, unknown.Breached)
}
