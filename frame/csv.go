package frame

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/UjjwalMahar/churn-risk/pkg/errors"
)

// ReadCSV loads a headed CSV file. A column whose every non-empty cell
// parses as a float becomes Numeric (empty cells become NaN); any other
// column becomes a Factor with lexically sorted distinct levels.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDatasetError(path, "read", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.NewDatasetError(path, "parse", err)
	}
	if len(records) < 2 {
		return nil, errors.NewDatasetError(path, "parse", errors.ErrEmptyFrame)
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*Column, len(header))
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = rec[j]
			}
		}
		cols[j] = buildColumn(name, cells)
	}

	f, err := New(cols)
	if err != nil {
		return nil, errors.NewDatasetError(path, "parse", err)
	}
	return f, nil
}

func buildColumn(name string, cells []string) *Column {
	values := make([]float64, len(cells))
	numeric := true
	for i, s := range cells {
		if s == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}
	if numeric {
		return &Column{Name: name, Kind: Numeric, Values: values}
	}

	seen := map[string]bool{}
	var levels []string
	for _, s := range cells {
		if s != "" && !seen[s] {
			seen[s] = true
			levels = append(levels, s)
		}
	}
	sortLevels(levels)
	lookup := make(map[string]int, len(levels))
	for i, l := range levels {
		lookup[l] = i
	}
	for i, s := range cells {
		if s == "" {
			values[i] = math.NaN()
		} else {
			values[i] = float64(lookup[s])
		}
	}
	return &Column{Name: name, Kind: Factor, Values: values, Levels: levels}
}

func sortLevels(levels []string) {
	sort.Strings(levels)
}
