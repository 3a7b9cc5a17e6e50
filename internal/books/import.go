package books

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportReport summarizes a bulk import: per-row failures are recorded as
// "Row N: <message>" strings in original row order and never abort the batch.
type ImportReport struct {
	TotalProcessed    int      `json:"total_processed"`
	SuccessfulImports int      `json:"successful_imports"`
	FailedImports     int      `json:"failed_imports"`
	Errors            []string `json:"errors"`
}

// importRecord is one candidate row from a CSV or JSON import file.
type importRecord struct {
	Title         string `json:"title"`
	AuthorName    string `json:"author_name"`
	PublishedYear int    `json:"published_year"`
	Genre         string `json:"genre"`
}

// BulkImport parses a .csv or .json upload and runs the book-creation flow
// for each row independently. Any other extension fails immediately; a JSON
// body that is not a top-level array fails the whole request.
func (s *Service) BulkImport(filename string, r io.Reader) (*ImportReport, error) {
	if filename == "" {
		return nil, ErrEmptyFile
	}

	var (
		records []importRecord
		rowErrs map[int]string
		err     error
	)
	switch {
	case strings.HasSuffix(filename, ".csv"):
		records, rowErrs, err = parseCSV(r)
	case strings.HasSuffix(filename, ".json"):
		records, rowErrs, err = parseJSON(r)
	default:
		return nil, fmt.Errorf("%q: %w", filename, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		TotalProcessed: len(records),
		Errors:         []string{},
	}

	for i, record := range records {
		rowNum := i + 1

		if msg, bad := rowErrs[i]; bad {
			report.FailedImports++
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %s", rowNum, msg))
			continue
		}

		_, err := s.Create(CreateParams{
			Title:         record.Title,
			AuthorName:    record.AuthorName,
			PublishedYear: record.PublishedYear,
			Genre:         record.Genre,
		})
		if err != nil {
			report.FailedImports++
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
			continue
		}
		report.SuccessfulImports++
	}

	return report, nil
}

// parseCSV reads rows keyed by the header line. A missing published_year
// defaults to 0 and a malformed one is recorded as a row error; both fail
// validation later without aborting the batch.
func parseCSV(r io.Reader) ([]importRecord, map[int]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var records []importRecord
	rowErrs := make(map[int]string)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs[len(records)] = err.Error()
			records = append(records, importRecord{})
			continue
		}

		record := importRecord{
			Title:      getCSVValue(row, headerIndex, "title"),
			AuthorName: getCSVValue(row, headerIndex, "author_name"),
			Genre:      getCSVValue(row, headerIndex, "genre"),
		}
		if rawYear := getCSVValue(row, headerIndex, "published_year"); rawYear != "" {
			year, err := strconv.Atoi(rawYear)
			if err != nil {
				rowErrs[len(records)] = fmt.Sprintf("published_year %q is not an integer", rawYear)
			} else {
				record.PublishedYear = year
			}
		}
		records = append(records, record)
	}

	return records, rowErrs, nil
}

func getCSVValue(row []string, headerIndex map[string]int, key string) string {
	if idx, ok := headerIndex[key]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseJSON requires a top-level array; each element is decoded
// independently so a malformed object fails only its own row.
func parseJSON(r io.Reader) ([]importRecord, map[int]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, nil, fmt.Errorf("JSON must contain an array of book objects: %w", err)
	}

	records := make([]importRecord, len(raw))
	rowErrs := make(map[int]string)
	for i, item := range raw {
		if err := json.Unmarshal(item, &records[i]); err != nil {
			rowErrs[i] = err.Error()
		}
	}
	return records, rowErrs, nil
}
