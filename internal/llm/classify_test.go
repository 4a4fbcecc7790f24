package llm_test

import (
	"strings"
	"testing"

	"github.com/Rrens/sql-tutor/internal/llm"
)

func TestClassify_WellFormedReply(t *testing.T) {
	out := llm.Classify("CODE:SUCCESS\n\nSELECT 1;\n\nEXPLANATION: test")

	if out.Code != llm.CodeSuccess {
		t.Errorf("Code = %q, want SUCCESS", out.Code)
	}
	if out.SQL != "SELECT 1;" {
		t.Errorf("SQL = %q, want SELECT 1;", out.SQL)
	}
	if out.Explanation != "test" {
		t.Errorf("Explanation = %q, want test", out.Explanation)
	}
	if out.Message != llm.Messages[llm.CodeSuccess] {
		t.Errorf("Message = %q, want canonical SUCCESS message", out.Message)
	}
}

func TestClassify_CodeMarkerFamilies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want llm.Code
	}{
		{"code prefix", "CODE: NO_DATA\nnothing in the schema answers this", llm.CodeNoData},
		{"code prefix no space", "CODE:INVALID_REQUEST", llm.CodeInvalidRequest},
		{"bare code with colon", "SCHEMA_MISMATCH: the table orders does not exist", llm.CodeSchemaMismatch},
		{"bracketed code", "I could not help. [UNSUPPORTED_OPERATION] stored procedures are unavailable.", llm.CodeUnsupportedOperation},
		{"code with dash", "COMPLEX_QUERY - this would need a very large query", llm.CodeComplexQuery},
		{"lowercase marker", "code: no_data\nempty schema", llm.CodeNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := llm.Classify(tt.raw)
			if out.Code != tt.want {
				t.Errorf("Code = %q, want %q", out.Code, tt.want)
			}
			if out.Message != llm.Messages[tt.want] {
				t.Errorf("Message = %q, want canonical message for %q", out.Message, tt.want)
			}
			if out.SQL != "" {
				t.Errorf("SQL = %q, want empty on non-SUCCESS code", out.SQL)
			}
		})
	}
}

func TestClassify_SQLExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"fenced block",
			"Here you go:\n```sql\nSELECT name FROM students;\n```\nEnjoy.",
			"SELECT name FROM students;",
		},
		{
			"fenced block wins over marker",
			"SQL_STATEMENT: SELECT 2;\n```sql\nSELECT 1;\n```",
			"SELECT 1;",
		},
		{
			"sql statement marker",
			"CODE:SUCCESS\nSQL_STATEMENT:\nSELECT id, name\nFROM students;\nEXPLANATION: picks two columns",
			"SELECT id, name\nFROM students;",
		},
		{
			"line scan from first verb",
			"Sure, try this:\nSELECT count(*) FROM enrollments;\nEXPLANATION: counts rows",
			"SELECT count(*) FROM enrollments;",
		},
		{
			"multiline line scan",
			"WITH recent AS (SELECT * FROM grades)\nSELECT * FROM recent;",
			"WITH recent AS (SELECT * FROM grades)\nSELECT * FROM recent;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := llm.Classify(tt.raw)
			if out.Code != llm.CodeSuccess {
				t.Fatalf("Code = %q, want SUCCESS", out.Code)
			}
			if out.SQL != tt.want {
				t.Errorf("SQL = %q, want %q", out.SQL, tt.want)
			}
		})
	}
}

func TestClassify_NotSQLRequest(t *testing.T) {
	t.Run("explicit marker", func(t *testing.T) {
		out := llm.Classify("CODE: NOT_SQL_REQUEST\nEXPLANATION: asking about the weather is not a data question")
		if out.Code != llm.CodeNotSQLRequest {
			t.Fatalf("Code = %q, want NOT_SQL_REQUEST", out.Code)
		}
		if out.SQL != "" {
			t.Errorf("SQL = %q, want empty", out.SQL)
		}
		if !strings.Contains(out.Explanation, "weather") {
			t.Errorf("Explanation = %q, want the model's reasoning kept", out.Explanation)
		}
	})

	t.Run("refusal dropped into the sql field", func(t *testing.T) {
		out := llm.Classify("SQL_STATEMENT:\nNOT_SQL_REQUEST\nEXPLANATION: that is a joke, not a query")
		if out.Code != llm.CodeNotSQLRequest {
			t.Fatalf("Code = %q, want NOT_SQL_REQUEST", out.Code)
		}
		if out.SQL != "" {
			t.Errorf("SQL = %q, want empty", out.SQL)
		}
	})

	t.Run("never carries sql", func(t *testing.T) {
		out := llm.Classify("CODE: NOT_SQL_REQUEST\nSELECT * FROM students;")
		if out.SQL != "" {
			t.Errorf("SQL = %q, want empty even when a statement is present", out.SQL)
		}
	})
}

func TestClassify_LineCeiling(t *testing.T) {
	var b strings.Builder
	b.WriteString("CODE:SUCCESS\nSQL_STATEMENT:\nSELECT\n")
	for i := 0; i < 50; i++ {
		b.WriteString("  col_a,\n")
	}
	b.WriteString("  col_b\nFROM students;")

	out := llm.Classify(b.String())
	if out.Code != llm.CodeComplexQuery {
		t.Fatalf("Code = %q, want COMPLEX_QUERY", out.Code)
	}
	if out.SQL != "" {
		t.Errorf("SQL = %q, want empty", out.SQL)
	}
	if out.Explanation == "" {
		t.Error("Explanation is empty, want a synthesized one")
	}
	if out.Message != llm.Messages[llm.CodeComplexQuery] {
		t.Errorf("Message = %q, want canonical COMPLEX_QUERY message", out.Message)
	}
}

func TestClassify_Fallback(t *testing.T) {
	t.Run("bare sql reply", func(t *testing.T) {
		out := llm.Classify("SELECT id FROM students WHERE id = 1")
		if out.Code != llm.CodeSuccess {
			t.Fatalf("Code = %q, want SUCCESS", out.Code)
		}
		if out.SQL != "SELECT id FROM students WHERE id = 1" {
			t.Errorf("SQL = %q", out.SQL)
		}
	})

	t.Run("unstructured prose", func(t *testing.T) {
		out := llm.Classify("I can certainly help you with that particular request")
		if out.Code != llm.CodeSuccess {
			t.Fatalf("Code = %q, want SUCCESS", out.Code)
		}
		// Prose survives classification but dies at the safety gate.
		if out.SQL == "" {
			t.Error("SQL is empty, want the best-effort body")
		}
	})

	t.Run("too short to salvage", func(t *testing.T) {
		out := llm.Classify("ok")
		if out.Code != llm.CodeSuccess {
			t.Fatalf("Code = %q, want SUCCESS", out.Code)
		}
		if out.SQL != "" {
			t.Errorf("SQL = %q, want empty", out.SQL)
		}
	})
}

func TestClassify_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t  ",
		"CODE:",
		"```sql\n```",
		strings.Repeat("x", 100000),
		"CODE: SUCCESS CODE: NO_DATA",
	}

	for _, raw := range inputs {
		out := llm.Classify(raw)
		if out.Code == "" || out.Message == "" {
			t.Errorf("Classify(%.20q) returned incomplete outcome: %+v", raw, out)
		}
		if out.Code != llm.CodeSuccess && out.SQL != "" {
			t.Errorf("Classify(%.20q): SQL = %q with code %q", raw, out.SQL, out.Code)
		}
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	out := llm.Classify("")
	if out.Code != llm.CodeSuccess {
		t.Errorf("Code = %q, want SUCCESS", out.Code)
	}
	if out.SQL != "" || out.Explanation != "" {
		t.Errorf("got SQL %q, Explanation %q, want both empty", out.SQL, out.Explanation)
	}
}

func TestClassify_SchemaMismatchReply(t *testing.T) {
	out := llm.Classify("SCHEMA_MISMATCH: the table 'invoices' does not exist\n\nEXPLANATION: No invoices table in this schema.")

	if out.Code != llm.CodeSchemaMismatch {
		t.Fatalf("Code = %q, want SCHEMA_MISMATCH", out.Code)
	}
	if out.SQL != "" {
		t.Errorf("SQL = %q, want empty", out.SQL)
	}
	if out.Explanation != "No invoices table in this schema." {
		t.Errorf("Explanation = %q", out.Explanation)
	}
	if out.Message != llm.Messages[llm.CodeSchemaMismatch] {
		t.Errorf("Message = %q, want canonical SCHEMA_MISMATCH message", out.Message)
	}
}

func TestClassify_NonSuccessNeverCarriesSQL(t *testing.T) {
	out := llm.Classify("CODE: SCHEMA_MISMATCH\nSQL_STATEMENT:\nSELECT * FROM no_such_table;\nEXPLANATION: the table is missing")
	if out.Code != llm.CodeSchemaMismatch {
		t.Fatalf("Code = %q, want SCHEMA_MISMATCH", out.Code)
	}
	if out.SQL != "" {
		t.Errorf("SQL = %q, want empty", out.SQL)
	}
	if !strings.Contains(out.Explanation, "missing") {
		t.Errorf("Explanation = %q, want the model's explanation kept", out.Explanation)
	}
}
