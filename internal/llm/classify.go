package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Code classifies one model reply.
type Code string

const (
	CodeSuccess              Code = "SUCCESS"
	CodeSchemaMismatch       Code = "SCHEMA_MISMATCH"
	CodeInvalidRequest       Code = "INVALID_REQUEST"
	CodeComplexQuery         Code = "COMPLEX_QUERY"
	CodeNoData               Code = "NO_DATA"
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"
	CodeNotSQLRequest        Code = "NOT_SQL_REQUEST"
)

// Messages maps each code to its fixed user-facing copy.
var Messages = map[Code]string{
	CodeSuccess:              "Here is the SQL for your request.",
	CodeSchemaMismatch:       "The request references tables or columns that do not exist in your current schema.",
	CodeInvalidRequest:       "The request could not be understood. Try rephrasing it.",
	CodeComplexQuery:         "Answering this needs a query too large for this tool. Try breaking the request into smaller steps.",
	CodeNoData:               "Your current schema has no data that can answer this request.",
	CodeUnsupportedOperation: "The requested operation is not supported by the practice database.",
	CodeNotSQLRequest:        "That doesn't look like a question about your data. Ask something about the tables in your practice schema.",
}

// Outcome is the structured interpretation of one raw model reply.
// Contract: Code != SUCCESS implies SQL == "".
type Outcome struct {
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	SQL         string `json:"sql,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

const (
	// maxSQLLines is the ceiling on non-blank lines in an extracted statement.
	maxSQLLines = 50

	// minUsefulLen is the shortest fragment worth salvaging as SQL or explanation.
	minUsefulLen = 10
)

const codeAlt = `(SUCCESS|SCHEMA_MISMATCH|INVALID_REQUEST|COMPLEX_QUERY|NO_DATA|UNSUPPORTED_OPERATION|NOT_SQL_REQUEST)`

// The four marker families a reply may carry its classification in,
// tried in order; first match wins.
var codeMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^CODE:\s*` + codeAlt),
	regexp.MustCompile(`(?i)^` + codeAlt + `\s*:`),
	regexp.MustCompile(`(?i)\[` + codeAlt + `\]`),
	regexp.MustCompile(`(?i)^` + codeAlt + `\s+-`),
}

var (
	fencedSQLRe     = regexp.MustCompile("(?is)```sql[ \t]*\n?(.*?)```")
	sqlMarkerRe     = regexp.MustCompile(`(?is)SQL_STATEMENT:\s*(.*?)(?:EXPLANATION:|$)`)
	explanationRe   = regexp.MustCompile(`(?is)EXPLANATION:[ \t]*(.*?)(?:\n[ \t]*\n|$)`)
	notSQLBodyRe    = regexp.MustCompile(`(?i)^\s*NOT_SQL_REQUEST\b`)
	notSQLSalvageRe = regexp.MustCompile(`(?is)NOT_SQL_REQUEST\s*\n\s*EXPLANATION:[ \t]*(.*)`)
	sqlVerbRe       = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|WITH|TRUNCATE)\b`)
	markerLineRe    = regexp.MustCompile(`(?i)^\s*(CODE:|SQL_STATEMENT:|EXPLANATION:)`)
	markerPrefixRe  = regexp.MustCompile(`(?i)^(?:CODE:\s*` + codeAlt + `|` + codeAlt + `\s*:|\[` + codeAlt + `\]|` + codeAlt + `\s+-)\s*`)
)

// classifyState is the mutable record threaded through the stage pipeline.
type classifyState struct {
	raw     string
	trimmed string
	out     Outcome
}

// classifyStages run in order; a later stage may overwrite fields set by
// an earlier one. That override behavior is the contract, not an accident:
// the reply comes from a non-deterministic model that misplaces markers,
// so "not a SQL request" and "too complex" must win over best-effort
// extraction no matter where the signal was found.
var classifyStages = []struct {
	name string
	run  func(*classifyState)
}{
	{"code-marker", detectCodeMarker},
	{"sql-body", extractSQLBody},
	{"explanation", extractExplanation},
	{"not-sql-post", enforceNotSQL},
	{"line-ceiling", enforceLineCeiling},
	{"sql-fallback", fallbackSQL},
	{"line-ceiling-recheck", enforceLineCeiling},
}

// Classify turns one raw model reply into a structured Outcome. It is
// total over all string inputs: it never fails, and degrades to SUCCESS
// with a best-effort (possibly empty) SQL body when the reply carries no
// recognizable structure. Callers must treat SUCCESS with empty SQL as
// "nothing usable was produced".
func Classify(raw string) Outcome {
	st := &classifyState{
		raw:     raw,
		trimmed: strings.TrimSpace(raw),
		out:     Outcome{Code: CodeSuccess, Message: Messages[CodeSuccess]},
	}

	for _, stage := range classifyStages {
		stage.run(st)
	}

	// SQL is only ever surfaced on SUCCESS.
	if st.out.Code != CodeSuccess {
		st.out.SQL = ""
	}

	return st.out
}

func detectCodeMarker(st *classifyState) {
	for _, re := range codeMarkers {
		m := re.FindStringSubmatch(st.trimmed)
		if m == nil {
			continue
		}
		code := Code(strings.ToUpper(m[1]))
		st.out.Code = code
		st.out.Message = Messages[code]
		return
	}
}

func extractSQLBody(st *classifyState) {
	if st.out.Code == CodeNotSQLRequest {
		return
	}

	var candidate string
	if m := fencedSQLRe.FindStringSubmatch(st.raw); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if m := sqlMarkerRe.FindStringSubmatch(st.raw); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else {
		candidate = scanSQLLines(st.raw)
	}
	if candidate == "" {
		return
	}

	// The model sometimes drops the classification into the SQL field.
	// A body that reads NOT_SQL_REQUEST is a refusal, never a statement.
	if notSQLBodyRe.MatchString(candidate) {
		st.out.Code = CodeNotSQLRequest
		st.out.Message = Messages[CodeNotSQLRequest]
		st.out.SQL = ""
		if m := explanationRe.FindStringSubmatch(candidate); m != nil {
			st.out.Explanation = strings.TrimSpace(m[1])
		}
		return
	}

	st.out.SQL = candidate
}

// scanSQLLines is the last extraction resort: skip marker lines, stop at
// EXPLANATION:, and collect contiguous lines from the first SQL verb to
// the next marker line.
func scanSQLLines(raw string) string {
	var collected []string
	collecting := false
	for _, line := range strings.Split(raw, "\n") {
		if markerLineRe.MatchString(line) {
			upper := strings.ToUpper(strings.TrimSpace(line))
			if strings.HasPrefix(upper, "EXPLANATION:") || collecting {
				break
			}
			continue
		}
		if !collecting {
			if !sqlVerbRe.MatchString(line) {
				continue
			}
			collecting = true
		}
		collected = append(collected, line)
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}

func extractExplanation(st *classifyState) {
	if st.out.Explanation != "" {
		return
	}
	if m := explanationRe.FindStringSubmatch(st.raw); m != nil {
		st.out.Explanation = strings.TrimSpace(m[1])
	}
}

func enforceNotSQL(st *classifyState) {
	if st.out.Code != CodeNotSQLRequest {
		return
	}
	st.out.SQL = ""

	if st.out.Explanation != "" || len(st.trimmed) <= minUsefulLen {
		return
	}
	if m := notSQLSalvageRe.FindStringSubmatch(st.raw); m != nil {
		st.out.Explanation = strings.TrimSpace(m[1])
		return
	}
	if rest := stripMarkerPrefix(st.trimmed); len(rest) > minUsefulLen {
		st.out.Explanation = rest
	}
}

func enforceLineCeiling(st *classifyState) {
	if st.out.Code != CodeSuccess || st.out.SQL == "" {
		return
	}

	lines := 0
	for _, line := range strings.Split(st.out.SQL, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines <= maxSQLLines {
		return
	}

	st.out.Code = CodeComplexQuery
	st.out.Message = Messages[CodeComplexQuery]
	st.out.SQL = ""
	if st.out.Explanation == "" {
		st.out.Explanation = fmt.Sprintf("The generated statement spans %d non-blank lines, above the %d-line ceiling.", lines, maxSQLLines)
	}
}

// fallbackSQL salvages replies with no markers at all: the model may have
// answered with bare SQL. Anything it produces here still has to survive
// the safety gate's parser, so prose sneaking through is rejected later
// rather than executed.
func fallbackSQL(st *classifyState) {
	if st.out.SQL != "" || st.out.Code == CodeNotSQLRequest {
		return
	}
	if rest := stripMarkerPrefix(st.trimmed); len(rest) > minUsefulLen {
		st.out.SQL = rest
	}
}

func stripMarkerPrefix(s string) string {
	return strings.TrimSpace(markerPrefixRe.ReplaceAllString(s, ""))
}
