package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleDeadlineReminderPastWindow(t *testing.T) {
	// Reminder time already behind us: nothing is enqueued, so a nil
	// client must not be touched.
	err := ScheduleDeadlineReminder(nil, "case-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
}
