package location

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Accepted header names, compared case-insensitively
var (
	latitudeHeaders  = []string{"latitude", "lat"}
	longitudeHeaders = []string{"longitude", "lon", "lng"}
	offenseHeaders   = []string{"ofns_desc", "offense"}
	boroughHeaders   = []string{"boro_nm", "borough"}
)

// ErrMissingCoordinateColumns is returned when a dataset has no usable
// latitude or longitude column
var ErrMissingCoordinateColumns = errors.New("dataset has no Latitude/Longitude columns")

// ErrEmptyDataset is returned when a dataset has no usable rows
var ErrEmptyDataset = errors.New("dataset has no usable rows")

type columns struct {
	lat, lon, offense, borough int
}

// ParseCSV reads location rows from a CSV dataset with a header row. Rows
// with missing or out-of-range coordinates are skipped and counted.
func ParseCSV(r io.Reader) ([]model.LocationRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrMissingCoordinateColumns
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := findColumns(header)
	if cols.lat < 0 || cols.lon < 0 {
		return nil, 0, ErrMissingCoordinateColumns
	}

	var (
		records []model.LocationRecord
		skipped int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		rec, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func findColumns(header []string) columns {
	cols := columns{lat: -1, lon: -1, offense: -1, borough: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case cols.lat < 0 && slices.Contains(latitudeHeaders, name):
			cols.lat = i
		case cols.lon < 0 && slices.Contains(longitudeHeaders, name):
			cols.lon = i
		case cols.offense < 0 && slices.Contains(offenseHeaders, name):
			cols.offense = i
		case cols.borough < 0 && slices.Contains(boroughHeaders, name):
			cols.borough = i
		}
	}
	return cols
}

func parseRow(row []string, cols columns) (model.LocationRecord, bool) {
	lat, ok := parseField(row, cols.lat)
	if !ok {
		return model.LocationRecord{}, false
	}
	lon, ok := parseField(row, cols.lon)
	if !ok {
		return model.LocationRecord{}, false
	}

	c := model.Coordinate{Latitude: lat, Longitude: lon}
	// 0,0 is how the source data marks an unknown position
	if !c.Valid() || (lat == 0 && lon == 0) {
		return model.LocationRecord{}, false
	}

	offense := field(row, cols.offense)
	return model.LocationRecord{
		Latitude:  lat,
		Longitude: lon,
		Offense:   offense,
		Category:  Categorize(offense),
		Borough:   field(row, cols.borough),
	}, true
}

func parseField(row []string, i int) (float64, bool) {
	v := field(row, i)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
