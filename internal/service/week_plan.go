package service

import (
	"sort"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/dto"
	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
)

// plannedRow one proposed assignment with its place in the week.
type plannedRow struct {
	Index    int // position in the request
	Position int // 1-based position inside its day group
	Proposal proposal
}

// dayGroup rows of one day, in request order.
type dayGroup struct {
	Day  model.Weekday
	Rows []plannedRow
}

// weekPlan is the grouping of a weekly batch by day. Groups keep the order in
// which their day first appears.
type weekPlan struct {
	Groups []dayGroup
}

// planWeek parses the days of rows and groups them. The first unparseable day
// aborts the plan with model.ErrInvalidDay.
func planWeek(rows []dto.ProposedAssignment) (*weekPlan, error) {
	plan := &weekPlan{}
	groupOf := make(map[model.Weekday]int)

	for i, a := range rows {
		day, err := model.ParseWeekday(a.Day)
		if err != nil {
			return nil, err
		}

		g, ok := groupOf[day]
		if !ok {
			g = len(plan.Groups)
			groupOf[day] = g
			plan.Groups = append(plan.Groups, dayGroup{Day: day})
		}

		plan.Groups[g].Rows = append(plan.Groups[g].Rows, plannedRow{
			Index:    i,
			Position: len(plan.Groups[g].Rows) + 1,
			Proposal: newProposal(day, a),
		})
	}

	return plan, nil
}

// DistinctDays number of day groups.
func (p *weekPlan) DistinctDays() int {
	return len(p.Groups)
}

// split separates over-capacity groups from the rows to process. Accepted
// rows come back in request order.
func (p *weekPlan) split(maxPerDay int) (accepted []plannedRow, overloaded []dayGroup) {
	for _, g := range p.Groups {
		if len(g.Rows) > maxPerDay {
			overloaded = append(overloaded, g)
			continue
		}
		accepted = append(accepted, g.Rows...)
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Index < accepted[j].Index
	})
	return accepted, overloaded
}
