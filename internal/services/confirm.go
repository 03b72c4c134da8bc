package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Lllllllleong/pdfsplit/internal/models"
)

// AutoConfirmer answers confirmations from a fixed policy. It is used where
// nobody is around to ask, such as the cloud function.
type AutoConfirmer struct {
	AllowUneven    bool
	AllowOverwrite bool
}

func (a AutoConfirmer) ConfirmUnevenSplit(context.Context, models.SplitPlan) (bool, error) {
	return a.AllowUneven, nil
}

func (a AutoConfirmer) ConfirmOverwrite(context.Context, []string) (bool, error) {
	return a.AllowOverwrite, nil
}

// UnevenSplitMessage explains an uneven plan and lists sizes that would
// divide the document evenly.
func UnevenSplitMessage(plan models.SplitPlan) string {
	sizes := make([]string, len(plan.SuggestedSegmentSizes))
	for i, s := range plan.SuggestedSegmentSizes {
		sizes[i] = strconv.Itoa(s)
	}
	return fmt.Sprintf(
		"The PDF has %d pages which cannot be evenly split into %d-page segments.\n"+
			"The last PDF would have only %d pages.\n"+
			"Suggested splits that would work: %s",
		plan.PageCount, plan.PagesPerSegment, plan.RemainderPages, strings.Join(sizes, ", "))
}

// OverwriteMessage warns about existing output files.
func OverwriteMessage(existing []string) string {
	return fmt.Sprintf("%d file(s) with the same names already exist in the output folder, starting with %s.",
		len(existing), existing[0])
}
