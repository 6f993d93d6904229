package quiz

import "math"

// Marking scheme: +4 for a fully correct answer; wrong single-choice answers
// cost 1 point under negative marking; a multiple-correct answer containing
// any wrong option costs 2; a clean subset of the correct set earns one point
// per correct option picked.
const (
	fullPoints           = PointsPerQuestion
	wrongSinglePenalty   = -1
	wrongMultiplePenalty = -2
)

type strategy interface {
	score(q Question, selected map[int]struct{}, negative bool) Result
}

var strategies = map[Type]strategy{
	TypeSingle:    singleStrategy{},
	TypeTrueFalse: singleStrategy{},
	TypeMulti:     multiStrategy{},
}

// Score grades one question. Pure: same inputs always give the same Result.
// An empty selection is an unattempted question and scores zero regardless of
// negative marking.
func Score(q Question, selected []int, negative bool) Result {
	sel := toSet(selected)
	if len(sel) == 0 {
		return Result{}
	}
	s, ok := strategies[q.Type]
	if !ok {
		return Result{Attempted: true}
	}
	return s.score(q, sel, negative)
}

type singleStrategy struct{}

func (singleStrategy) score(q Question, selected map[int]struct{}, negative bool) Result {
	res := Result{Attempted: true}
	if len(selected) == 1 && len(q.Correct) == 1 {
		if _, ok := selected[q.Correct[0]]; ok {
			res.Correct = true
			res.Points = fullPoints
			return res
		}
	}
	if negative {
		res.Points = wrongSinglePenalty
	}
	return res
}

type multiStrategy struct{}

func (multiStrategy) score(q Question, selected map[int]struct{}, negative bool) Result {
	res := Result{Attempted: true}
	correct := toSet(q.Correct)

	hits, misses := 0, 0
	for i := range selected {
		if _, ok := correct[i]; ok {
			hits++
		} else {
			misses++
		}
	}

	// Rule order matters: the all-correct branch must win over partial credit.
	switch {
	case misses == 0 && hits == len(correct) && len(correct) > 0:
		res.Correct = true
		res.Points = fullPoints
	case misses == 0 && hits > 0:
		res.Partial = true
		res.Points = hits
	case misses > 0 && negative:
		res.Points = wrongMultiplePenalty
	}
	return res
}

// Summarize folds per-question results into the quiz total. The total is
// floored at zero before the percentage is taken, so a run of penalties can
// never produce a negative score.
func Summarize(results []Result, questionCount int) Summary {
	sum := Summary{Max: questionCount * PointsPerQuestion}
	for _, r := range results {
		sum.Total += r.Points
		if r.Attempted {
			sum.Attempted++
		}
		if r.Correct {
			sum.Correct++
		}
		if r.Partial {
			sum.Partial++
		}
	}
	if sum.Total < 0 {
		sum.Total = 0
	}
	if sum.Max > 0 {
		sum.Percent = int(math.Round(float64(sum.Total) / float64(sum.Max) * 100))
	}
	return sum
}

func toSet(indices []int) map[int]struct{} {
	m := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		m[i] = struct{}{}
	}
	return m
}
