package itinerary

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// RenderICS exports the itinerary as an iCalendar document with one all-day
// event per day.
func RenderICS(it *Itinerary, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ai-travel-planner//itinerary//EN")

	location := it.Destination
	if it.Country != "" {
		location += ", " + it.Country
	}

	for _, day := range it.Days {
		event := cal.AddEvent(fmt.Sprintf("%s-day-%d@ai-travel-planner", eventPrefix(it), day.DayNumber))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(day.Date)
		event.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s: day %d", it.Destination, day.DayNumber))
		event.SetLocation(location)
		event.SetDescription(dayDescription(day))
	}

	return cal.Serialize()
}

func eventPrefix(it *Itinerary) string {
	if it.ID != "" {
		return it.ID
	}
	return strings.ToLower(strings.Join(strings.Fields(it.Destination), "-")) + "-" + it.ArrivalDate.Format("20060102")
}

func dayDescription(day Day) string {
	var b strings.Builder
	section := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(name + ":\n")
		for _, item := range items {
			b.WriteString("- " + item + "\n")
		}
	}
	section("Morning", day.Activities.Morning)
	section("Afternoon", day.Activities.Afternoon)
	section("Evening", day.Activities.Evening)
	section("Tips", day.Tips)
	if day.EstimatedCost != "" {
		b.WriteString("Estimated cost: " + day.EstimatedCost)
	}
	return strings.TrimSpace(b.String())
}
