package llm

import (
	"fmt"

	"github.com/Rrens/sql-tutor/internal/domain"
)

// replyContract tells the model how to shape its reply so the classifier
// can pick it apart. The model does not follow it reliably; the classifier
// compensates.
const replyContract = `Reply in exactly this format:

CODE:<one of SUCCESS, SCHEMA_MISMATCH, INVALID_REQUEST, COMPLEX_QUERY, NO_DATA, UNSUPPORTED_OPERATION, NOT_SQL_REQUEST>
SQL_STATEMENT:
<the SQL statement, only when CODE is SUCCESS>
EXPLANATION: <one short paragraph for a SQL learner>

Classification rules:
- SUCCESS: you produced a working SQL statement for the request
- SCHEMA_MISMATCH: the request names tables or columns missing from the schema
- INVALID_REQUEST: the request is about data but cannot be understood
- COMPLEX_QUERY: a correct answer would need an unreasonably large query
- NO_DATA: the schema holds nothing that can answer the request
- UNSUPPORTED_OPERATION: the operation is not available in this database
- NOT_SQL_REQUEST: the request is not about the data at all`

// BuildPrompt creates the assist prompt for a request
func BuildPrompt(req Request) string {
	if req.Mode == domain.ModeFix {
		return fmt.Sprintf(`You are a patient SQL tutor. A learner ran a statement against their practice PostgreSQL database and it failed. Repair it.

Database Schema:
%s

Failing statement:
%s

Database error:
%s

%s`, req.SchemaDDL, req.SQL, req.EngineError, replyContract)
	}

	return fmt.Sprintf(`You are a patient SQL tutor. A learner wants a SQL statement for their practice PostgreSQL database.

Rules:
1. Use only tables and columns from the provided schema
2. Prefer explicit column names over SELECT *
3. Keep statements as simple as the request allows
4. Handle NULL values appropriately

Database Schema:
%s

Request: %s

%s`, req.SchemaDDL, req.Question, replyContract)
}
