package splitter

import "github.com/Lllllllleong/pdfsplit/internal/models"

const (
	// suggestionCeiling bounds the divisor scan. Larger divisors are not
	// suggested even when they would divide evenly.
	suggestionCeiling = 20
	maxSuggestions    = 5
)

// Plan partitions pageCount pages into runs of pagesPerSegment. The last
// segment holds the remainder when the split is not even. Plan never
// refuses an uneven split; deciding whether to go ahead is up to the caller.
func Plan(pageCount, pagesPerSegment int) (models.SplitPlan, error) {
	if pagesPerSegment <= 0 {
		return models.SplitPlan{}, invalidInput("pages per segment must be a positive number, got %d", pagesPerSegment)
	}
	if pageCount <= 0 {
		return models.SplitPlan{}, invalidInput("document has no pages")
	}

	plan := models.SplitPlan{
		PageCount:       pageCount,
		PagesPerSegment: pagesPerSegment,
		Segments:        make([]models.Segment, 0, (pageCount+pagesPerSegment-1)/pagesPerSegment),
		EvenlyDivisible: pageCount%pagesPerSegment == 0,
	}
	for i := 0; i*pagesPerSegment < pageCount; i++ {
		plan.Segments = append(plan.Segments, models.Segment{
			Index:     i + 1,
			FirstPage: i * pagesPerSegment,
			LastPage:  min((i+1)*pagesPerSegment, pageCount) - 1,
		})
	}
	if !plan.EvenlyDivisible {
		plan.RemainderPages = pageCount % pagesPerSegment
		plan.SuggestedSegmentSizes = SuggestSegmentSizes(pageCount)
	}
	return plan, nil
}

// SuggestSegmentSizes lists segment sizes that divide pageCount evenly,
// smallest first, scanning candidates up to 20 and keeping at most five.
func SuggestSegmentSizes(pageCount int) []int {
	var sizes []int
	for d := 1; d <= min(pageCount, suggestionCeiling) && len(sizes) < maxSuggestions; d++ {
		if pageCount%d == 0 {
			sizes = append(sizes, d)
		}
	}
	return sizes
}
