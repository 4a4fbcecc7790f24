package llm_test

import (
	"strings"
	"testing"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/llm"
)

func TestBuildPrompt_Generate(t *testing.T) {
	req := llm.Request{
		Mode:      domain.ModeGenerate,
		Question:  "Show me all students with a passing grade",
		SchemaDDL: "CREATE TABLE students (id INT, name VARCHAR, grade INT);",
	}

	prompt := llm.BuildPrompt(req)

	mustContain := []string{
		req.Question,
		req.SchemaDDL,
		"CODE:",
		"SQL_STATEMENT:",
		"EXPLANATION:",
		"NOT_SQL_REQUEST",
		"SCHEMA_MISMATCH",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing %q", s)
		}
	}
}

func TestBuildPrompt_Fix(t *testing.T) {
	req := llm.Request{
		Mode:        domain.ModeFix,
		SQL:         "SELEC * FROM students",
		EngineError: `syntax error at or near "SELEC"`,
		SchemaDDL:   "CREATE TABLE students (id INT);",
	}

	prompt := llm.BuildPrompt(req)

	mustContain := []string{
		req.SQL,
		req.EngineError,
		req.SchemaDDL,
		"CODE:",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing %q", s)
		}
	}

	if strings.Contains(prompt, "Request: ") {
		t.Error("fix prompt contains the generate-mode request section")
	}
}
