package itinerary

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayDateLayout is the human-readable date format used in renderings.
const DisplayDateLayout = "Monday, January 02, 2006"

const (
	dayRule  = "=================================================="
	daySplit = "--------------------------------------------------"
)

// RenderText renders the itinerary as plain text: header, dates, budget,
// travelers, accommodation, the days in order, then the travel tips.
func RenderText(it *Itinerary) string {
	upper := cases.Upper(language.Und)

	var b strings.Builder
	title := upper.String(it.Destination)
	if it.Country != "" {
		title += ", " + upper.String(it.Country)
	}
	fmt.Fprintf(&b, "TRAVEL ITINERARY FOR %s\n", title)
	fmt.Fprintf(&b, "Travel Dates: %s for %d days\n", it.ArrivalDate.Format(DisplayDateLayout), it.Duration)
	fmt.Fprintf(&b, "Budget: %s\n", it.Budget)
	fmt.Fprintf(&b, "Travelers: %s\n", it.Travelers)
	fmt.Fprintf(&b, "Accommodation: %s\n\n", it.Accommodation)

	for _, day := range it.Days {
		fmt.Fprintf(&b, "DAY %d: %s\n%s\n", day.DayNumber, day.Date.Format(DisplayDateLayout), dayRule)
		writeList(&b, "MORNING:", day.Activities.Morning)
		b.WriteString("\n")
		writeList(&b, "AFTERNOON:", day.Activities.Afternoon)
		b.WriteString("\n")
		writeList(&b, "EVENING:", day.Activities.Evening)
		if len(day.Tips) > 0 {
			b.WriteString("\n")
			writeList(&b, "DAILY TIPS:", day.Tips)
		}
		if day.EstimatedCost != "" {
			fmt.Fprintf(&b, "\nESTIMATED DAILY COST: %s\n", day.EstimatedCost)
		}
		fmt.Fprintf(&b, "\n%s\n\n", daySplit)
	}

	writeList(&b, "TRAVEL TIPS:", it.TravelTips)
	if it.TotalEstimatedCost > 0 {
		fmt.Fprintf(&b, "\nESTIMATED TOTAL COST: %s\n", FormatCost(it.TotalEstimatedCost, it.Currency()))
	}
	if it.ModificationNotes != "" {
		fmt.Fprintf(&b, "\nNOTES:\n%s\n", it.ModificationNotes)
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString(heading + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

var htmlTmpl = template.Must(template.New("itinerary").Funcs(template.FuncMap{
	"date": func(d Day) string { return d.Date.Format(DisplayDateLayout) },
}).Parse(`<p>{{.Duration}} days in {{.Destination}}{{if .Country}}, {{.Country}}{{end}} for {{.Travelers}} travelers. Budget: {{.Budget}}.</p>
{{if .Hotels}}<h2>Where to stay</h2>
<ul>{{range .Hotels}}<li>{{.Name}}</li>{{end}}</ul>
{{end}}{{if .Restaurants}}<h2>Where to eat</h2>
<ul>{{range .Restaurants}}<li>{{.Name}}</li>{{end}}</ul>
{{end}}{{range .Days}}<h2>Day {{.DayNumber}}: {{date .}}</h2>
<h3>Morning</h3>
<ul>{{range .Activities.Morning}}<li>{{.}}</li>{{end}}</ul>
<h3>Afternoon</h3>
<ul>{{range .Activities.Afternoon}}<li>{{.}}</li>{{end}}</ul>
<h3>Evening</h3>
<ul>{{range .Activities.Evening}}<li>{{.}}</li>{{end}}</ul>
{{if .Tips}}<h3>Tips</h3>
<ul>{{range .Tips}}<li>{{.}}</li>{{end}}</ul>
{{end}}<p><strong>Estimated cost:</strong> {{.EstimatedCost}}</p>
{{end}}{{if .TravelTips}}<h2>Travel tips</h2>
<ul>{{range .TravelTips}}<li>{{.}}</li>{{end}}</ul>
{{end}}`))

// RenderHTML renders the itinerary as an HTML fragment for blog posts.
func RenderHTML(it *Itinerary) (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, it); err != nil {
		return "", fmt.Errorf("failed to render itinerary html: %w", err)
	}
	return buf.String(), nil
}
