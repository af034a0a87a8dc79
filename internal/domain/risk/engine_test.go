package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideBoundaries(t *testing.T) {
	assert.Equal(t, DecisionApprove, Decide(0.29))
	assert.Equal(t, DecisionChallenge, Decide(0.3))
	assert.Equal(t, DecisionChallenge, Decide(0.7))
	assert.Equal(t, DecisionReject, Decide(0.70001))
	assert.Equal(t, DecisionReject, Decide(1.0))
}

func TestScoreIsDeterministic(t *testing.T) {
	ctx := Context{
		Velocity10m:       5,
		AvgAmount:         100,
		CurrentAmount:     500,
		FailedAttempts24h: 8,
		LastIP:            "10.0.0.1",
		CurrentIP:         "10.0.0.2",
	}

	score1, reasons1 := Score(ctx)
	score2, reasons2 := Score(ctx)

	assert.Equal(t, score1, score2)
	assert.Equal(t, reasons1, reasons2)
}

func TestScoreCapsAtOne(t *testing.T) {
	ctx := Context{
		Velocity10m:       10,
		AvgAmount:         10,
		CurrentAmount:     1000,
		FailedAttempts24h: 20,
		LastIP:            "10.0.0.1",
		CurrentIP:         "10.0.0.2",
	}

	score, _ := Score(ctx)
	assert.Equal(t, 1.0, score)
}

func TestScoreNoSignalsIsZero(t *testing.T) {
	score, reasons := Score(Context{})
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestScoreIPMismatchAddsReason(t *testing.T) {
	score, reasons := Score(Context{LastIP: "10.0.0.1", CurrentIP: "10.0.0.2"})
	assert.Equal(t, 0.20, score)
	assert.Contains(t, reasons, "ip mismatch")
}

func TestScoreSameIPNoReason(t *testing.T) {
	score, reasons := Score(Context{LastIP: "10.0.0.1", CurrentIP: "10.0.0.1"})
	assert.Zero(t, score)
	assert.NotContains(t, reasons, "ip mismatch")
}

func TestEvaluateApprovesCleanContext(t *testing.T) {
	verdict := Evaluate(Context{Velocity10m: 1, AvgAmount: 100, CurrentAmount: 100})
	assert.Equal(t, DecisionApprove, verdict.Decision)
}

func TestEvaluateRejectsHighRiskContext(t *testing.T) {
	verdict := Evaluate(Context{
		Velocity10m:       5,
		AvgAmount:         100,
		CurrentAmount:     500,
		FailedAttempts24h: 8,
		LastIP:            "10.0.0.1",
		CurrentIP:         "10.0.0.2",
	})

	assert.Equal(t, DecisionReject, verdict.Decision)
	assert.NotEmpty(t, verdict.Reasons)
}
