package birthdays

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/codegangsta/chartbot/internal/types"
)

const (
	icsProdID  = "-//chartbot//Birthdays//EN"
	icsCalName = "Birthdays"
	icsDomain  = "chartbot"
)

// emptyCalendar is written when there are no birthdays; the encoder rejects calendars without components
var emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + icsProdID + "\r\nEND:VCALENDAR\r\n"

// WriteCalendar encodes an iCalendar feed with one all-day event per record
// for the previous, current and next year relative to now.
func WriteCalendar(w io.Writer, records []types.BirthdayRecord, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProdID)
	cal.Props.SetText("X-WR-CALNAME", icsCalName)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	stamp := now.UTC()
	for _, rec := range records {
		for _, year := range []int{now.Year() - 1, now.Year(), now.Year() + 1} {
			if year < rec.Date.Year {
				continue
			}
			day := Occurrence(rec.Date, year)

			event := ical.NewEvent()
			event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@%s", uidSafe(rec.Handle), year, icsDomain))
			event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
			event.Props.SetText(ical.PropSummary, fmt.Sprintf("@%s turns %d", rec.Handle, Age(rec.Date, day)))

			start := ical.NewProp(ical.PropDateTimeStart)
			start.SetDate(day.Time())
			event.Props.Set(start)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func uidSafe(handle string) string {
	return strings.Map(func(r rune) rune {
		if r == '@' || r == ' ' {
			return '_'
		}
		return r
	}, handle)
}
