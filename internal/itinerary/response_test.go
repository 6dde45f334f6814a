package itinerary

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayText(n int, activity string) string {
	return fmt.Sprintf("DAY %d: Some date\n\nMORNING:\n- %s\n\nAFTERNOON:\n- Lunch\n\nEVENING:\n- Dinner\n\nESTIMATED DAILY COST: $%d\n\n", n, activity, 10*n)
}

func TestResponseParser_Parse(t *testing.T) {
	start := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	parser := NewResponseParser(nil)

	t.Run("NumbersAndDatesByPosition", func(t *testing.T) {
		text := "Here is your plan!\n\n" + dayText(1, "A") + dayText(1, "B") + dayText(7, "C")

		days := parser.Parse(text, start, 3)
		require.Len(t, days, 3)
		for i, d := range days {
			assert.Equal(t, i+1, d.DayNumber)
			assert.Equal(t, start.AddDate(0, 0, i), d.Date)
		}
		assert.Equal(t, []string{"A"}, days[0].Activities.Morning)
		assert.Equal(t, []string{"B"}, days[1].Activities.Morning)
		assert.Equal(t, []string{"C"}, days[2].Activities.Morning)
		assert.Equal(t, "$70", days[2].EstimatedCost)
	})

	t.Run("ExtraBlocksDiscarded", func(t *testing.T) {
		text := dayText(1, "A") + dayText(2, "B") + dayText(3, "C")
		days := parser.Parse(text, start, 2)
		require.Len(t, days, 2)
		assert.Equal(t, []string{"B"}, days[1].Activities.Morning)
	})

	t.Run("ShortResponseIsNotPadded", func(t *testing.T) {
		days := parser.Parse(dayText(1, "A"), start, 4)
		assert.Len(t, days, 1)
	})

	t.Run("NoHeaderIsOneDay", func(t *testing.T) {
		text := "MORNING:\n- Walk\n\nEVENING:\n- Fado"
		days := parser.Parse(text, start, 5)
		require.Len(t, days, 1)
		assert.Equal(t, 1, days[0].DayNumber)
		assert.Equal(t, start, days[0].Date)
		assert.Equal(t, []string{"Walk"}, days[0].Activities.Morning)
		assert.Equal(t, []string{"Fado"}, days[0].Activities.Evening)
	})

	t.Run("HeaderVariants", func(t *testing.T) {
		text := strings.Join([]string{
			"**DAY 1:** Sunday\nMORNING:\n- A",
			"## Day 2 - Monday\nMORNING:\n- B",
			"DAY 3.\nMORNING:\n- C",
			"Day 4\nMORNING:\n- D",
		}, "\n\n")
		days := parser.Parse(text, start, 10)
		require.Len(t, days, 4)
		assert.Equal(t, []string{"D"}, days[3].Activities.Morning)
	})

	t.Run("DayInsideSentenceIsNotAHeader", func(t *testing.T) {
		text := "MORNING:\n- Rest, the DAY 2: hike is long"
		days := parser.Parse(text, start, 3)
		require.Len(t, days, 1)
		assert.Equal(t, []string{"Rest, the DAY 2: hike is long"}, days[0].Activities.Morning)
	})

	t.Run("InlineHeaders", func(t *testing.T) {
		days := parser.Parse("DAY 1: MORNING: A EVENING: B DAY 2: MORNING: C EVENING: D", start, 3)
		require.Len(t, days, 2)
		assert.Equal(t, []string{"B"}, days[0].Activities.Evening)
		assert.Equal(t, []string{"C"}, days[1].Activities.Morning)
		assert.Equal(t, []string{"D"}, days[1].Activities.Evening)
	})

	t.Run("InlineDayOutOfSequenceIsNotAHeader", func(t *testing.T) {
		days := parser.Parse("DAY 1:\nMORNING:\n- Rest, the DAY 3: hike is long", start, 3)
		require.Len(t, days, 1)
		assert.Equal(t, []string{"Rest, the DAY 3: hike is long"}, days[0].Activities.Morning)
	})

	t.Run("BlankText", func(t *testing.T) {
		assert.Empty(t, parser.Parse("  \n\t", start, 3))
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		assert.Empty(t, parser.Parse(dayText(1, "A"), start, 0))
	})
}
