// AngelaMos | 2026
// csv.go

package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/content"
)

// RequiredHeaders must all be present in a question CSV header row.
var RequiredHeaders = []string{"title", "content", "answer", "type", "level"}

const (
	tierHeader    = "tier"
	byteOrderMark = "\ufeff"
)

// QuestionSheet is a parsed question CSV: the rows that passed validation
// and one message per rejected row.
type QuestionSheet struct {
	Rows      int
	Questions []content.Question
	Errors    []string
}

// ParseQuestionCSV parses payload into questions filed under subcategoryID
// and owned by importerID.
//
// The format is deliberately naive: fields are split on every comma and a
// single layer of wrapping double quotes is removed, so quoted commas are
// not supported, and a row with more fields than headers is rejected. A
// leading byte order mark is ignored. Blank lines are skipped and data rows
// are numbered from 1. A header row missing any required column fails the
// whole parse before a single row is read.
func ParseQuestionCSV(
	payload, subcategoryID, importerID string,
	now time.Time,
) (*QuestionSheet, error) {
	lines := nonBlankLines(strings.TrimPrefix(payload, byteOrderMark))
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(RequiredHeaders, ", "))
	}

	headers := splitRow(lines[0])
	for i := range headers {
		headers[i] = strings.ToLower(headers[i])
	}

	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	sheet := &QuestionSheet{}
	for i, line := range lines[1:] {
		rowNum := i + 1
		sheet.Rows++

		values := splitRow(line)
		if len(values) > len(headers) {
			sheet.Errors = append(sheet.Errors,
				fmt.Sprintf("Row %d: Too many fields (%d for %d headers)", rowNum, len(values), len(headers)))
			continue
		}

		record := mapRow(headers, values)
		if !hasRequired(record) {
			sheet.Errors = append(sheet.Errors,
				fmt.Sprintf("Row %d: Missing required fields", rowNum))
			continue
		}

		tier := access.LowestTier()
		if raw := record[tierHeader]; raw != "" {
			parsed, err := access.ParseTier(raw)
			if err != nil {
				sheet.Errors = append(sheet.Errors,
					fmt.Sprintf("Row %d: Unknown tier %q", rowNum, raw))
				continue
			}
			tier = parsed
		}

		q := content.Question{
			Title:   record["title"],
			Content: record["content"],
			Answer:  record["answer"],
			Type:    record["type"],
			Level:   record["level"],
			Tier:    tier,
		}
		if subcategoryID != "" {
			sub := subcategoryID
			q.SubcategoryID = &sub
		}
		q.Prepare(importerID, now)

		sheet.Questions = append(sheet.Questions, q)
	}

	return sheet, nil
}

func nonBlankLines(payload string) []string {
	var lines []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitRow(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = unquote(strings.TrimSpace(f))
	}
	return fields
}

// unquote removes one layer of wrapping double quotes.
func unquote(field string) string {
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		return field[1 : len(field)-1]
	}
	return field
}

func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, req := range RequiredHeaders {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	return missing
}

// mapRow assigns values to headers by position. Short rows leave the
// trailing headers empty.
func mapRow(headers, values []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(values) {
			record[h] = values[i]
		}
	}
	return record
}

func hasRequired(record map[string]string) bool {
	for _, req := range RequiredHeaders {
		if record[req] == "" {
			return false
		}
	}
	return true
}
