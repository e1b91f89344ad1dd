package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (f fixedClock) Now() time.Time { return time.Time(f) }

func TestUnixSeconds(t *testing.T) {
	secs, err := UnixSeconds(fixedClock(time.Unix(1700000000, 999)))
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), secs)
}

func TestUnixSecondsBeforeEpoch(t *testing.T) {
	_, err := UnixSeconds(fixedClock(time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, ErrBeforeEpoch)
}

func TestRealClockIsAfterEpoch(t *testing.T) {
	_, err := UnixSeconds(New())
	assert.NoError(t, err)
}
