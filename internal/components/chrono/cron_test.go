package chrono

import (
	"sync/atomic"
	"testing"
	"time"

	"digicards/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestCron(t *testing.T) {
	tel := telemetry.NewRecorder()
	cron := NewStandardCron(tel, time.UTC)
	defer cron.Stop()

	var calls atomic.Int64
	err := cron.Cron("@every 1s", func() {
		calls.Add(1)
	})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Second), cron.Next(), time.Second)

	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second*5, time.Millisecond*50)

	require.Error(t, cron.Cron("not a schedule", func() {}))
}

func TestCronRecovers(t *testing.T) {
	tel := telemetry.NewRecorder()
	cron := NewStandardCron(tel, nil)
	defer cron.Stop()

	err := cron.Cron("@every 1s", func() {
		panic("boom")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(tel.Reports(telemetry.KindBroken, "cron")) > 0
	}, time.Second*5, time.Millisecond*50)
}
