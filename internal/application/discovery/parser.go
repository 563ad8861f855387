// Package discovery implements the application workflows of the compliance
// engine: parsing served discovery text, bulk-importing the parsed requests,
// and generating ranked document suggestions.  Domain rules stay in the
// request and mapping contexts; this package orchestrates them.
package discovery

import (
	"regexp"
	"strconv"
	"strings"

	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// ─────────────────────────────────────────────────────────────────────────────
// Discovery text parsing
// ─────────────────────────────────────────────────────────────────────────────

var (
	// reCSVHeader sniffs the structured format.  When the first non-empty
	// line is a type,number,text header the whole input is treated as CSV
	// and the free-text patterns are not consulted.
	reCSVHeader = regexp.MustCompile(`(?i)^type\s*,\s*number\s*,\s*text`)

	// reRFPHeader matches request-for-production item headers:
	//   "REQUEST FOR PRODUCTION NO. 4: All documents …"
	//   "RFP #12 - Communications between …"
	reRFPHeader = regexp.MustCompile(`(?i)^\s*(?:request\s+for\s+production|rfp)\s*(?:no\.?|#)?\s*(\d+)\s*[:.\-–]\s*(.*)$`)

	// reRogHeader matches interrogatory item headers:
	//   "INTERROGATORY NO. 2: State all facts …"
	reRogHeader = regexp.MustCompile(`(?i)^\s*interrogator(?:y|ies)\s*(?:no\.?|#)?\s*(\d+)\s*[:.\-–]\s*(.*)$`)
)

// ParseDiscoveryText extracts numbered requests from served discovery text.
//
// Two formats are recognized.  A CSV document with a type,number,text header
// is parsed row by row; malformed rows are skipped without failing the batch,
// because served CSVs routinely carry stray footers and blank padding.  Any
// other input is scanned line by line for item headers; lines between one
// header and the next are continuation text and blank lines terminate the
// current item.
//
// An empty result is not an error here; importers decide how to surface it.
func ParseDiscoveryText(text string) []dtypes.ParsedRequest {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if reCSVHeader.MatchString(trimmed) {
			return parseCSV(lines)
		}
		break
	}
	return parseFreeText(lines)
}

// parseCSV parses rows after the header.  The text column may itself contain
// commas, so rows split into at most three fields.
func parseCSV(lines []string) []dtypes.ParsedRequest {
	var out []dtypes.ParsedRequest
	headerSeen := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !headerSeen {
			if reCSVHeader.MatchString(trimmed) {
				headerSeen = true
			}
			continue
		}

		fields := strings.SplitN(trimmed, ",", 3)
		if len(fields) != 3 {
			continue
		}
		reqType, ok := normalizeType(fields[0])
		if !ok {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || number < 1 {
			continue
		}
		body := strings.TrimSpace(fields[2])
		body = strings.Trim(body, `"`)
		if body == "" {
			continue
		}
		out = append(out, dtypes.ParsedRequest{Type: reqType, Number: number, Text: body})
	}
	return out
}

// parseFreeText scans for item headers and accumulates continuation lines.
func parseFreeText(lines []string) []dtypes.ParsedRequest {
	var out []dtypes.ParsedRequest
	var current *dtypes.ParsedRequest

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(current.Text)
		if current.Text != "" {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		if m := reRFPHeader.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = newParsed(dtypes.RequestTypeRFP, m[1], m[2])
			continue
		}
		if m := reRogHeader.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = newParsed(dtypes.RequestTypeInterrogatory, m[1], m[2])
			continue
		}

		if current != nil {
			current.Text += "\n" + trimmed
		}
	}
	flush()
	return out
}

func newParsed(reqType dtypes.RequestType, number, body string) *dtypes.ParsedRequest {
	n, err := strconv.Atoi(number)
	if err != nil || n < 1 {
		return nil
	}
	return &dtypes.ParsedRequest{Type: reqType, Number: n, Text: strings.TrimSpace(body)}
}

// normalizeType maps CSV type cells onto the RequestType enum.
func normalizeType(cell string) (dtypes.RequestType, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "rfp", "request for production":
		return dtypes.RequestTypeRFP, true
	case "interrogatory", "rog":
		return dtypes.RequestTypeInterrogatory, true
	}
	return "", false
}
