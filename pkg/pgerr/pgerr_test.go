package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	exclusion := &pq.Error{Code: ExclusionViolation}

	tests := []struct {
		name          string
		err           error
		wantExclusion bool
		wantSerial    bool
	}{
		{name: "exclusion", err: exclusion, wantExclusion: true},
		{name: "wrapped exclusion", err: fmt.Errorf("insert: %w", exclusion), wantExclusion: true},
		{name: "serialization", err: &pq.Error{Code: SerializationFailure}, wantSerial: true},
		{name: "deadlock", err: &pq.Error{Code: DeadlockDetected}, wantSerial: true},
		{name: "unique", err: &pq.Error{Code: UniqueViolation}},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExclusion, IsExclusionViolation(tt.err))
			assert.Equal(t, tt.wantSerial, IsSerializationFailure(tt.err))
		})
	}
}
