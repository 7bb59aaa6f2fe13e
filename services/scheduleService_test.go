package services

import (
	"SalvadoDental/models"
	"SalvadoDental/repositories"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newScheduleService() (*ScheduleService, *countingRecorder, *recordingPublisher) {
	recorder := newCountingRecorder()
	publisher := &recordingPublisher{}
	return NewScheduleService(repositories.NewMemoryScheduleRepository(), recorder, publisher), recorder, publisher
}

func TestScheduleList_SevenDaysMondayFirst(t *testing.T) {
	service, _, _ := newScheduleService()

	entries, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for i, e := range entries {
		assert.Equal(t, i+1, e.ID)
	}
	assert.Equal(t, "Lunes", entries[0].Day)
	assert.True(t, entries[6].IsClosed)
}

func TestScheduleUpdate_ChangesHours(t *testing.T) {
	service, recorder, publisher := newScheduleService()

	entry, err := service.UpdateEntry(context.Background(), 3, ScheduleUpdate{Open: strPtr("10:00:00"), Close: strPtr("16:30")})
	require.NoError(t, err)

	assert.Equal(t, "10:00", entry.Open)
	assert.Equal(t, "16:30", entry.Close)
	assert.Equal(t, 1, recorder.schedules[3])
	assert.Equal(t, []string{models.EventScheduleUpdated}, publisher.types())
}

func TestScheduleUpdate_CloseThenReopenRestoresHours(t *testing.T) {
	service, _, _ := newScheduleService()
	ctx := context.Background()

	closed, err := service.UpdateEntry(ctx, 2, ScheduleUpdate{IsClosed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)
	assert.Equal(t, "09:00", closed.Open)
	assert.Equal(t, "18:00", closed.Close)

	reopened, err := service.UpdateEntry(ctx, 2, ScheduleUpdate{IsClosed: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed)
	assert.Equal(t, "09:00", reopened.Open)
	assert.Equal(t, "18:00", reopened.Close)

	entries, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 7)
}

func TestScheduleUpdate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		weekday int
		update  ScheduleUpdate
	}{
		{"weekday zero", 0, ScheduleUpdate{IsClosed: boolPtr(true)}},
		{"weekday eight", 8, ScheduleUpdate{IsClosed: boolPtr(true)}},
		{"no fields", 1, ScheduleUpdate{}},
		{"malformed open", 1, ScheduleUpdate{Open: strPtr("9am")}},
		{"hour out of range", 1, ScheduleUpdate{Close: strPtr("25:00")}},
		{"close before open", 1, ScheduleUpdate{Open: strPtr("14:00"), Close: strPtr("10:00")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, recorder, _ := newScheduleService()

			_, err := service.UpdateEntry(context.Background(), tt.weekday, tt.update)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, 1, recorder.failures["update_schedule/validation"])

			entries, err := service.List(context.Background())
			require.NoError(t, err)
			assert.Equal(t, models.DefaultClinicSchedule(), entries)
		})
	}
}

func TestScheduleUpdate_ClosedDayKeepsInvertedHours(t *testing.T) {
	service, _, _ := newScheduleService()

	// Hours of a closed day are not consulted, so they are not checked either.
	entry, err := service.UpdateEntry(context.Background(), 7, ScheduleUpdate{Open: strPtr("13:00"), Close: strPtr("09:00")})
	require.NoError(t, err)
	assert.True(t, entry.IsClosed)
}
