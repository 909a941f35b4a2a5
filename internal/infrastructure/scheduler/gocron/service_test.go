package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	scheduler "github.com/ark-network/raffle/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

func TestScheduleTask(t *testing.T) {
	svc := scheduler.NewScheduler()

	err := svc.ScheduleTask(0, true, func() {})
	require.Error(t, err)

	var count int32
	err = svc.ScheduleTask(1, true, func() {
		atomic.AddInt32(&count, 1)
	})
	require.NoError(t, err)

	svc.Start()
	defer svc.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) >= 2
	}, 5*time.Second, 50*time.Millisecond)
}
