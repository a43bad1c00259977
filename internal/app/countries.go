package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var (
	iso2Columns        = []string{"iso2"}
	countryNameColumns = []string{"name", "id"}
)

// CountryTable maps ISO2 codes to display names.
type CountryTable struct {
	names map[string]string
}

// NewCountryTable builds a table from iso2 to name pairs.
func NewCountryTable(names map[string]string) CountryTable {
	out := make(map[string]string, len(names))
	for iso2, name := range names {
		out[strings.ToUpper(strings.TrimSpace(iso2))] = name
	}
	return CountryTable{names: out}
}

// LoadCountryTable reads the countries export.
func LoadCountryTable(r io.Reader) (CountryTable, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 16*1024), maxExportLine)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return CountryTable{}, fmt.Errorf("read countries header: %w", err)
		}
		return CountryTable{}, fmt.Errorf("%w: empty countries file", ErrMalformedExport)
	}
	header := splitTSV(scanner.Text())
	isoCol, err := columnIndex(header, iso2Columns)
	if err != nil {
		return CountryTable{}, err
	}
	nameCol, err := columnIndex(header, countryNameColumns)
	if err != nil {
		return CountryTable{}, err
	}

	names := map[string]string{}
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := splitTSV(text)
		if len(fields) <= max(isoCol, nameCol) {
			return CountryTable{}, fmt.Errorf("%w: countries line %d has %d fields", ErrMalformedExport, line, len(fields))
		}
		if fields[isoCol] == "" {
			continue
		}
		names[fields[isoCol]] = fields[nameCol]
	}
	if err := scanner.Err(); err != nil {
		return CountryTable{}, fmt.Errorf("read countries: %w", err)
	}
	return NewCountryTable(names), nil
}

// Name resolves an ISO2 code.
func (c CountryTable) Name(iso2 string) (string, bool) {
	name, ok := c.names[strings.ToUpper(strings.TrimSpace(iso2))]
	return name, ok
}

// Len returns the number of known countries.
func (c CountryTable) Len() int {
	return len(c.names)
}
