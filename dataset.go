package geofilm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// locationsSentinel marks where the record section of a filmography
// dump begins. The sentinel line and the divider line after it are
// header material; the final two lines of the file are trailer.
const locationsSentinel = "LOCATIONS LIST"

// ErrNoLocationsList reports a dump without a record section.
var ErrNoLocationsList = errors.New(`dataset has no "LOCATIONS LIST" line`)

// FilmRecord is one parsed entry: a film title with its year token
// intact, the raw filming location string, and the production year.
type FilmRecord struct {
	Title    string
	Location string
	Year     int
}

// ReadDatasetFile parses the filmography dump at path, keeping the
// records of the given production year.
func ReadDatasetFile(path string, year int) ([]FilmRecord, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer fi.Close()
	return ParseDataset(fi, year)
}

// ParseDataset reads an ISO-8859-1 filmography dump from r and returns
// the records matching year, in file order. Lines that do not parse as
// records are skipped; a missing record section is an error.
func ParseDataset(r io.Reader, year int) ([]FilmRecord, error) {
	scanner := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	start := -1
	for i, line := range lines {
		if line == locationsSentinel {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoLocationsList
	}

	var body []string
	if end := len(lines) - 2; end > start+2 {
		body = lines[start+2 : end]
	}

	var records []FilmRecord
	for _, line := range body {
		rec, ok := parseRecordLine(line, year)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseRecordLine extracts one record from a tab-delimited line.
// The reported ok is false for lines of other years and for lines that
// do not carry a parsable title, location and year.
func parseRecordLine(line string, year int) (FilmRecord, bool) {
	lastTab := strings.LastIndexByte(line, '\t')
	if lastTab < 0 {
		return FilmRecord{}, false
	}
	// A parenthesized field after the last tab is an annotation such as
	// "(studio)", not a location. Drop it and use the field before.
	if lastTab+1 < len(line) && line[lastTab+1] == '(' {
		line = line[:lastTab]
		lastTab = strings.LastIndexByte(line, '\t')
		if lastTab < 0 {
			return FilmRecord{}, false
		}
	}
	location := line[lastTab+1:]
	title := line[:lastTab]

	// A {...} group names an episode or segment; it belongs to the
	// title together with the byte before the brace.
	if strings.IndexByte(title, '}') >= 0 {
		i := strings.IndexByte(title, '{')
		if i < 1 {
			return FilmRecord{}, false
		}
		title = title[:i-1]
	}
	if i := strings.IndexByte(title, '\t'); i >= 0 {
		title = title[:i]
	}
	if i := strings.LastIndex(title, "(TV)"); i >= 0 {
		title = title[:i]
	}
	if i := strings.LastIndex(title, "(V)"); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)

	y, ok := titleYear(title)
	if !ok || y != year || location == "" {
		return FilmRecord{}, false
	}
	return FilmRecord{Title: title, Location: location, Year: y}, true
}

// titleYear reads the production year from a title's trailing " (YYYY)"
// token. Tokens of any other shape, such as "(2014/I)" or Roman
// numerals, do not count as years.
func titleYear(title string) (int, bool) {
	i := strings.LastIndexByte(title, ' ')
	if i < 0 || len(title)-i != 7 {
		return 0, false
	}
	tail := title[i+1:]
	if tail[0] != '(' || tail[5] != ')' {
		return 0, false
	}
	for j := 1; j < 5; j++ {
		if tail[j] < '0' || tail[j] > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(tail[1:5])
	if err != nil {
		return 0, false
	}
	return y, true
}
