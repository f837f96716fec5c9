package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    WorkflowState
		terminal bool
	}{
		{StateDraft, false},
		{StateCommitting, false},
		{StateCommitted, false},
		{StateHashing, false},
		{StateAnchoring, false},
		{StateAnchored, true},
		{StateAnchorDegraded, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
		})
	}
}
