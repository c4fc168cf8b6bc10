package checklist

// Result is the outcome of validating a response map against a template tree
type Result struct {
	IsComplete       bool     `json:"isComplete"`
	CriticalFailures []string `json:"criticalFailures"`
}

// Validate walks every element of the template sections against the partial
// response map. It is pure: the same inputs always produce the same result,
// so it can run on every response edit.
//
// An item is a critical failure iff it is marked critical and its recorded
// value is the boolean literal false. Values like 0, "" or a missing
// response never trigger the critical rule.
//
// Completion requires every item carrying a required rule to have a recorded
// response. An explicit false counts as answered: presence of the response
// entry is the sentinel, not truthiness of its value.
func Validate(sections []*Section, responses Responses) Result {
	res := Result{
		IsComplete:       true,
		CriticalFailures: []string{},
	}
	for _, s := range sections {
		validateElement(s, responses, &res)
	}
	return res
}

func validateElement(e Element, responses Responses, res *Result) {
	switch n := e.(type) {
	case *Item:
		resp, answered := responses[n.ID]
		if n.Critical && answered {
			if v, ok := resp.Value.(bool); ok && !v {
				res.CriticalFailures = append(res.CriticalFailures, n.ID)
			}
		}
		if hasRequiredRule(n) && !answered {
			res.IsComplete = false
		}
	case *Section:
		for _, child := range n.Elements {
			validateElement(child, responses, res)
		}
	case *Group:
		for _, child := range n.Elements {
			validateElement(child, responses, res)
		}
	}
}

func hasRequiredRule(item *Item) bool {
	if item.Required {
		return true
	}
	for _, rule := range item.Validation {
		if rule.Type == RuleRequired {
			return true
		}
	}
	return false
}

// CountItems returns the total number of leaf items in the tree
func CountItems(sections []*Section) int {
	count := 0
	for _, s := range sections {
		count += countIn(s)
	}
	return count
}

func countIn(e Element) int {
	if _, ok := e.(*Item); ok {
		return 1
	}
	count := 0
	for _, child := range Children(e) {
		count += countIn(child)
	}
	return count
}

// NextIncomplete returns the first required item, in tree order, that has no
// recorded response. Returns nil when the checklist is complete.
func NextIncomplete(sections []*Section, responses Responses) *Item {
	for _, s := range sections {
		if item := nextIn(s, responses); item != nil {
			return item
		}
	}
	return nil
}

func nextIn(e Element, responses Responses) *Item {
	if item, ok := e.(*Item); ok {
		if _, answered := responses[item.ID]; !answered && hasRequiredRule(item) {
			return item
		}
		return nil
	}
	for _, child := range Children(e) {
		if item := nextIn(child, responses); item != nil {
			return item
		}
	}
	return nil
}

// SectionSummary reports completion progress for one top-level section
type SectionSummary struct {
	SectionID string `json:"sectionId"`
	Title     string `json:"title"`
	Total     int    `json:"total"`
	Answered  int    `json:"answered"`
}

// Summarize computes per-section answered/total counts for progress display
func Summarize(sections []*Section, responses Responses) []SectionSummary {
	summaries := make([]SectionSummary, 0, len(sections))
	for _, s := range sections {
		sum := SectionSummary{SectionID: s.ID, Title: s.Title}
		tally(s, responses, &sum)
		summaries = append(summaries, sum)
	}
	return summaries
}

func tally(e Element, responses Responses, sum *SectionSummary) {
	if item, ok := e.(*Item); ok {
		sum.Total++
		if _, answered := responses[item.ID]; answered {
			sum.Answered++
		}
		return
	}
	for _, child := range Children(e) {
		tally(child, responses, sum)
	}
}
