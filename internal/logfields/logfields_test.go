package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelpersUseCanonicalKeys(t *testing.T) {
	assert.Equal(t, KeyModule, Module("techniques").Key)
	assert.Equal(t, "techniques", Module("techniques").Value.String())
	assert.Equal(t, KeyBuildID, BuildID("b-1").Key)
	assert.Equal(t, int64(3), Priority(3).Value.Int64())
}

func TestDuration(t *testing.T) {
	attr := Duration(1500 * time.Microsecond)
	assert.Equal(t, KeyDurationMS, attr.Key)
	assert.InDelta(t, 1.5, attr.Value.Float64(), 1e-9)

	prev := PreviousDuration(2 * time.Second)
	assert.Equal(t, KeyPreviousMS, prev.Key)
	assert.InDelta(t, 2000, prev.Value.Float64(), 1e-9)
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
