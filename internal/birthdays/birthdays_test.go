package birthdays

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/types"
)

func date(y int, m time.Month, d int) dates.Date {
	return dates.Date{Year: y, Month: m, Day: d}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "birthdays.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should upsert by handle", func(t *testing.T) {
		req := require.New(t)
		s := newTestStore(t)

		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "alice", Date: date(1990, time.January, 15)}))
		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "bob", Date: date(1985, time.July, 13)}))
		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "alice", Date: date(1991, time.January, 16)}))

		all, err := s.List(ctx)
		req.NoError(err)
		req.Equal([]types.BirthdayRecord{
			{Handle: "alice", Date: date(1991, time.January, 16)},
			{Handle: "bob", Date: date(1985, time.July, 13)},
		}, all)
	})

	t.Run("should find birthdays by month and day", func(t *testing.T) {
		req := require.New(t)
		s := newTestStore(t)

		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "carol", Date: date(2000, time.February, 29)}))
		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "dave", Date: date(1970, time.March, 1)}))
		req.NoError(s.Put(ctx, types.BirthdayRecord{Handle: "erin", Date: date(1999, time.March, 1)}))

		got, err := s.BornOn(ctx, time.March, 1)
		req.NoError(err)
		req.Len(got, 2)
		req.Equal("dave", got[0].Handle)
		req.Equal("erin", got[1].Handle)

		got, err = s.BornOn(ctx, time.February, 29)
		req.NoError(err)
		req.Equal([]types.BirthdayRecord{{Handle: "carol", Date: date(2000, time.February, 29)}}, got)

		got, err = s.BornOn(ctx, time.December, 25)
		req.NoError(err)
		req.Empty(got)
	})

	t.Run("should reject an empty handle", func(t *testing.T) {
		s := newTestStore(t)
		assert.Error(t, s.Put(ctx, types.BirthdayRecord{Date: date(1990, time.January, 1)}))
	})

	t.Run("should fail once closed", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Close())
		assert.Error(t, s.Put(ctx, types.BirthdayRecord{Handle: "x", Date: date(1990, time.January, 1)}))
	})
}

func TestAge(t *testing.T) {
	tests := []struct {
		name string
		born dates.Date
		on   dates.Date
		want int
	}{
		{"on the day", date(1990, time.June, 25), date(2024, time.June, 25), 34},
		{"day before", date(1990, time.June, 25), date(2024, time.June, 24), 33},
		{"later in year", date(1990, time.June, 25), date(2024, time.December, 1), 34},
		{"leap day in leap year", date(2000, time.February, 29), date(2024, time.February, 29), 24},
		{"leap day on mar 1 of common year", date(2000, time.February, 29), date(2023, time.March, 1), 23},
		{"leap day on feb 28 of common year", date(2000, time.February, 29), date(2023, time.February, 28), 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(tt.born, tt.on))
		})
	}
}

func TestOccurrence(t *testing.T) {
	assert.Equal(t, date(2023, time.March, 1), Occurrence(date(2000, time.February, 29), 2023))
	assert.Equal(t, date(2024, time.February, 29), Occurrence(date(2000, time.February, 29), 2024))
	assert.Equal(t, date(2023, time.July, 13), Occurrence(date(1985, time.July, 13), 2023))
	assert.True(t, IsLeap(2000))
	assert.False(t, IsLeap(1900))
	assert.True(t, IsLeap(2024))
	assert.False(t, IsLeap(2023))
}

func TestWriteCalendar(t *testing.T) {
	now := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

	t.Run("three yearly events per person", func(t *testing.T) {
		req := require.New(t)
		var sb strings.Builder
		err := WriteCalendar(&sb, []types.BirthdayRecord{
			{Handle: "alice", Date: date(1990, time.January, 15)},
		}, now)
		req.NoError(err)

		out := sb.String()
		req.Contains(out, "BEGIN:VCALENDAR")
		req.Contains(out, "PRODID:"+icsProdID)
		req.Equal(3, strings.Count(out, "BEGIN:VEVENT"))
		req.Contains(out, "UID:alice-2024@chartbot")
		req.Contains(out, "20240115")
		req.Contains(out, "@alice turns 34")
	})

	t.Run("no events before birth", func(t *testing.T) {
		req := require.New(t)
		var sb strings.Builder
		req.NoError(WriteCalendar(&sb, []types.BirthdayRecord{
			{Handle: "baby", Date: date(2024, time.March, 3)},
		}, now))
		req.Equal(2, strings.Count(sb.String(), "BEGIN:VEVENT"))
	})

	t.Run("empty feed", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, WriteCalendar(&sb, nil, now))
		assert.Equal(t, emptyCalendar, sb.String())
	})
}
