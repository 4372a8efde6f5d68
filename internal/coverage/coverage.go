// Package coverage scores how completely the extracted entities are
// documented and produces the data behind the coverage report page.
package coverage

import (
	"sort"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

// Status buckets a documentation percentage for display.
type Status string

const (
	StatusLow      Status = "low"
	StatusMedium   Status = "medium"
	StatusGood     Status = "good"
	StatusVeryGood Status = "very-good"
)

// StatusFor maps a percentage to its bucket. Boundaries are closed on the
// lower bucket: exactly 25 is low, exactly 50 medium, exactly 75 good.
func StatusFor(percent int) Status {
	switch {
	case percent <= 25:
		return StatusLow
	case percent <= 50:
		return StatusMedium
	case percent <= 75:
		return StatusGood
	default:
		return StatusVeryGood
	}
}

// Record is the coverage score of one documentable entity.
type Record struct {
	FilePath   string `json:"filePath"`
	EntityKind string `json:"kind"`
	Name       string `json:"name"`
	Documented int    `json:"documented"`
	Total      int    `json:"total"`
	Percent    int    `json:"percent"`
	Status     Status `json:"status"`
}

// Report carries all records plus the aggregate project score.
type Report struct {
	Records []Record `json:"records"`
	Percent int      `json:"percent"`
	Status  Status   `json:"status"`
	Count   int      `json:"count"`
}

// Compute scores components, classes, injectables, interfaces and pipes.
// Entities without any documentable member are skipped rather than scored
// zero; pipes are always scored on their own description. Records come back
// sorted by file path for stable, diff-friendly output.
func Compute(g *model.Graph) *Report {
	report := &Report{}

	for _, c := range g.Components {
		// The component's own description counts as one implicit unit.
		doc, total := countMembers(c.Properties, c.Methods, c.Inputs, c.Outputs)
		total++
		if c.Description != "" {
			doc++
		}
		report.add(record(c.File, string(model.KindComponent), c.Name, doc, total))
	}
	for _, c := range g.Classes {
		if doc, total := countMembers(c.Properties, c.Methods); total > 0 {
			report.add(record(c.File, string(model.KindClass), c.Name, doc, total))
		}
	}
	for _, i := range g.Injectables {
		if doc, total := countMembers(i.Properties, i.Methods); total > 0 {
			report.add(record(i.File, string(model.KindInjectable), i.Name, doc, total))
		}
	}
	for _, i := range g.Interfaces {
		if doc, total := countMembers(i.Properties, i.Methods); total > 0 {
			report.add(record(i.File, string(model.KindInterface), i.Name, doc, total))
		}
	}
	for _, p := range g.Pipes {
		doc := 0
		if p.Description != "" {
			doc = 1
		}
		report.add(record(p.File, string(model.KindPipe), p.Name, doc, 1))
	}

	sort.SliceStable(report.Records, func(i, j int) bool {
		return report.Records[i].FilePath < report.Records[j].FilePath
	})

	report.Count = len(report.Records)
	if report.Count > 0 {
		sum := 0
		for _, r := range report.Records {
			sum += r.Percent
		}
		report.Percent = sum / report.Count
	}
	report.Status = StatusFor(report.Percent)
	return report
}

func (r *Report) add(rec Record) { r.Records = append(r.Records, rec) }

func record(file, kind, name string, documented, total int) Record {
	percent := 0
	if total > 0 {
		percent = documented * 100 / total
	}
	return Record{
		FilePath:   file,
		EntityKind: kind,
		Name:       name,
		Documented: documented,
		Total:      total,
		Percent:    percent,
		Status:     StatusFor(percent),
	}
}

func countMembers(lists ...[]model.Member) (documented, total int) {
	for _, list := range lists {
		for _, m := range list {
			total++
			if m.Description != "" {
				documented++
			}
		}
	}
	return documented, total
}
