package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name   string
		filter port.AnalysisFilter
		where  string
		args   []interface{}
	}{
		{"empty", port.AnalysisFilter{}, "", nil},
		{"recruiter", port.AnalysisFilter{RecruiterID: "r1"}, " WHERE recruiter_id = $1", []interface{}{"r1"}},
		{
			"all fields",
			port.AnalysisFilter{RecruiterID: "r1", CandidateID: "c1", Status: domain.AnalysisStatusCompleted},
			" WHERE recruiter_id = $1 AND candidate_id = $2 AND status = $3",
			[]interface{}{"r1", "c1", domain.AnalysisStatusCompleted},
		},
		{"candidate only", port.AnalysisFilter{CandidateID: "c1"}, " WHERE candidate_id = $1", []interface{}{"c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := filterClause(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}
