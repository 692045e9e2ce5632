package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	at := time.Date(2026, time.September, 7, 10, 30, 0, 0, time.UTC)
	assert.True(t, Fixed(at).Now().Equal(at))
}

func TestLocalDate(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 2026-09-07 22:00 UTC is already 2026-09-08 in Kolkata (+05:30).
	now := time.Date(2026, time.September, 7, 22, 0, 0, 0, time.UTC)

	utcDay := LocalDate(now, time.UTC)
	assert.True(t, utcDay.Equal(time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)))

	localDay := LocalDate(now, kolkata)
	assert.True(t, localDay.Equal(time.Date(2026, time.September, 8, 0, 0, 0, 0, kolkata)))
}
