// Package coverage runs the project's build-and-test cycle and reduces the
// resulting coverage report to a line and a branch coverage ratio.
package coverage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Required report columns.
const (
	ColPackage            = "PACKAGE"
	ColClass              = "CLASS"
	ColBranchMissed       = "BRANCH_MISSED"
	ColBranchCovered      = "BRANCH_COVERED"
	ColInstructionMissed  = "INSTRUCTION_MISSED"
	ColInstructionCovered = "INSTRUCTION_COVERED"
)

var requiredColumns = []string{
	ColPackage, ColClass,
	ColBranchMissed, ColBranchCovered,
	ColInstructionMissed, ColInstructionCovered,
}

// Counters are the four running totals over non-excluded rows.
type Counters struct {
	BranchMissed       int64
	BranchCovered      int64
	InstructionMissed  int64
	InstructionCovered int64

	// Rows and Excluded count report rows seen and dropped.
	Rows     int
	Excluded int
}

// BranchCoverage returns covered/(covered+missed) for branches.
func (c Counters) BranchCoverage() float64 {
	return Ratio(c.BranchCovered, c.BranchMissed)
}

// LineCoverage returns covered/(covered+missed) for instructions; the
// instruction counters stand in for statements.
func (c Counters) LineCoverage() float64 {
	return Ratio(c.InstructionCovered, c.InstructionMissed)
}

// Ratio returns covered/(covered+missed), or exactly 0 when the
// denominator is not positive.
func Ratio(covered, missed int64) float64 {
	total := covered + missed
	if total <= 0 {
		return 0.0
	}
	return float64(covered) / float64(total)
}

// ParseReport reads a CSV coverage report and sums the counters of every row
// that exclude does not drop. A nil exclude keeps all rows.
//
// Columns are located by header name, so column order and extra columns do
// not matter.
func ParseReport(r io.Reader, exclude ExcludeFunc) (Counters, error) {
	if exclude == nil {
		exclude = NoExclusions
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Counters{}, errors.New("coverage report is empty")
		}
		return Counters{}, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return Counters{}, err
	}

	var c Counters
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Counters{}, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		c.Rows++

		get := func(col string) (string, error) {
			i := idx[col]
			if i >= len(rec) {
				return "", fmt.Errorf("row %d: column %s missing", line, col)
			}
			return strings.TrimSpace(rec[i]), nil
		}

		pkg, err := get(ColPackage)
		if err != nil {
			return Counters{}, err
		}
		class, err := get(ColClass)
		if err != nil {
			return Counters{}, err
		}
		if exclude(pkg, class) {
			c.Excluded++
			continue
		}

		var vals [4]int64
		for i, col := range requiredColumns[2:] {
			raw, err := get(col)
			if err != nil {
				return Counters{}, err
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return Counters{}, fmt.Errorf("row %d: %s: %w", line, col, err)
			}
			if n < 0 {
				return Counters{}, fmt.Errorf("row %d: %s is negative (%d)", line, col, n)
			}
			vals[i] = n
		}
		c.BranchMissed += vals[0]
		c.BranchCovered += vals[1]
		c.InstructionMissed += vals[2]
		c.InstructionCovered += vals[3]
	}
	return c, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("coverage report header lacks %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
