// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// Aggregate computes run statistics from the complete page results.
// Confidence statistics cover succeeded pages only; a page that failed
// has no confidence to contribute.
func Aggregate(pages []types.PageResult, threshold int, elapsed time.Duration) types.Report {
	rep := types.Report{
		TotalPages: len(pages),
		Threshold:  threshold,
		Elapsed:    elapsed,
	}

	var confSum float64
	for _, p := range pages {
		if !p.Succeeded() {
			rep.Failed++
			continue
		}
		rep.Succeeded++
		confSum += p.Confidence
		if p.Confidence < float64(threshold) {
			rep.LowConfidencePages = append(rep.LowConfidencePages, p.Page)
		}
		rep.Characters += utf8.RuneCountInString(p.Text)
		rep.Words += len(strings.Fields(p.Text))
	}

	if rep.Succeeded > 0 {
		rep.AverageConfidence = confSum / float64(rep.Succeeded)
	} else {
		rep.NoSuccess = true
	}
	return rep
}
