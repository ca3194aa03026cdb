package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/marketinghub/internal/usecase"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		report *usecase.SweepReport
		err    error
		want   int
	}{
		{"sweep did not start", nil, errors.New("automations unavailable"), 1},
		{"clean sweep", &usecase.SweepReport{Totals: usecase.SweepSummary{Sent: 2}}, nil, 0},
		{"tenant aborted", &usecase.SweepReport{Aborted: []usecase.TenantFailure{{UserID: "u1", Error: "leads unavailable"}}}, nil, 1},
		{"interrupted with partial report", &usecase.SweepReport{}, context.Canceled, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.report, tt.err))
		})
	}
}
