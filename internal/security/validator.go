package security

import (
	"fmt"
	"regexp"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// allowedKinds is the fixed set of permitted statement kinds. It is broad
// on purpose: the statement runs inside a per-tab, sandboxed browser
// database, so even DROP or TRUNCATE only touches the caller's own
// scratch schema. The residual risk surface (meta-commands, privilege
// statements, extension loading) is covered by blockedPatterns instead.
var allowedKinds = map[string]bool{
	"select":   true,
	"insert":   true,
	"update":   true,
	"delete":   true,
	"create":   true,
	"drop":     true,
	"alter":    true,
	"truncate": true,
	"with":     true,
}

const allowedKindsList = "SELECT, INSERT, UPDATE, DELETE, CREATE, DROP, ALTER, TRUNCATE, WITH"

// blockedPattern pairs a raw-text regex with the label used in rejection
// reasons. These are matched against the entire input, not per statement:
// constructs like \copy are psql meta-commands the parser never models as
// a distinct statement, so the raw text is the only reliable surface.
type blockedPattern struct {
	re    *regexp.Regexp
	label string
}

var blockedPatterns = []blockedPattern{
	{regexp.MustCompile(`(?i)\\copy\b`), `\copy meta-command`},
	{regexp.MustCompile(`(?i)\bCOPY\s+\S+\s+(FROM|TO)\b`), "COPY FROM/TO"},
	{regexp.MustCompile(`(?i)\bGRANT\b`), "GRANT"},
	{regexp.MustCompile(`(?i)\bREVOKE\b`), "REVOKE"},
	{regexp.MustCompile(`(?i)\bCREATE\s+EXTENSION\b`), "CREATE EXTENSION"},
	{regexp.MustCompile(`(?i)\bload_extension\b`), "load_extension"},
	{regexp.MustCompile(`(?i)\b(CREATE|ALTER|DROP)\s+(USER|ROLE)\b`), "user/role management"},
	{regexp.MustCompile(`(?i)\bpg_(read_file|write_file|ls_dir)\b`), "file system access functions"},
	{regexp.MustCompile(`(?i)\blo_(import|export)\b`), "large object import/export"},
	{regexp.MustCompile(`(?i)\bdblink\b`), "dblink"},
}

// ValidationError is a fail-closed rejection from the SQL gate
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// SQLValidator gates candidate SQL before it is handed to the execution
// engine. Validation is all-or-nothing across every statement in the
// input; there is no partial success.
type SQLValidator struct{}

// NewSQLValidator creates a new SQL validator
func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Validate parses sql into PostgreSQL AST statements and checks each one
// against the kind allow-list, the blocked-pattern list and, when
// allowedTables is non-empty, the table allow-list. On success it returns
// the parsed statements; any failure rejects the whole batch with a
// *ValidationError carrying the human-readable reason.
func (v *SQLValidator) Validate(sql string, allowedTables []string) ([]*pg_query.RawStmt, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, &ValidationError{Reason: "Empty SQL"}
	}

	// Pre-check only. Statements are parsed from the original text below:
	// splitting a multi-clause WITH on ';' would corrupt it, so the split
	// just confirms there is something to parse.
	hasFragment := false
	for _, frag := range strings.Split(trimmed, ";") {
		if strings.TrimSpace(frag) != "" {
			hasFragment = true
			break
		}
	}
	if !hasFragment {
		return nil, &ValidationError{Reason: "Empty SQL"}
	}

	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, &ValidationError{Reason: "SQL parse error: " + err.Error()}
	}

	allowed := make(map[string]bool, len(allowedTables))
	for _, t := range allowedTables {
		allowed[strings.ToLower(t)] = true
	}

	for _, stmt := range result.GetStmts() {
		kind := statementKind(stmt.GetStmt())
		if !allowedKinds[kind] {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("Statement type %q is not allowed. Allowed: %s", kind, allowedKindsList),
			}
		}

		for _, bp := range blockedPatterns {
			if bp.re.MatchString(sql) {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("Blocked operation: %s", bp.label),
				}
			}
		}

		if len(allowed) > 0 {
			for _, table := range referencedTables(stmt.GetStmt()) {
				if table == "" {
					continue
				}
				if !allowed[strings.ToLower(table)] {
					return nil, &ValidationError{
						Reason: fmt.Sprintf("Table %q is not allowed. Allowed tables: %s", table, strings.Join(allowedTables, ", ")),
					}
				}
			}
		}
	}

	return result.GetStmts(), nil
}

// statementKind derives the lower-cased syntactic category from the AST
// node type. The CREATE family collapses into "create"; a SELECT carrying
// a WITH clause reports as "with".
func statementKind(node *pg_query.Node) string {
	if node == nil || node.Node == nil {
		return "unknown"
	}

	switch node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		if node.GetSelectStmt().GetWithClause() != nil {
			return "with"
		}
		return "select"
	case *pg_query.Node_InsertStmt:
		return "insert"
	case *pg_query.Node_UpdateStmt:
		return "update"
	case *pg_query.Node_DeleteStmt:
		return "delete"
	case *pg_query.Node_CreateStmt, *pg_query.Node_CreateTableAsStmt,
		*pg_query.Node_ViewStmt, *pg_query.Node_IndexStmt,
		*pg_query.Node_CreateSeqStmt, *pg_query.Node_CreateSchemaStmt:
		return "create"
	case *pg_query.Node_DropStmt:
		return "drop"
	case *pg_query.Node_AlterTableStmt, *pg_query.Node_RenameStmt:
		return "alter"
	case *pg_query.Node_TruncateStmt:
		return "truncate"
	default:
		// Fall back to the generated type name: Node_GrantStmt -> "grant".
		name := fmt.Sprintf("%T", node.Node)
		name = name[strings.LastIndex(name, "_")+1:]
		return strings.ToLower(strings.TrimSuffix(name, "Stmt"))
	}
}

// referencedTables extracts the table names a statement touches. This is
// a heuristic shape-walk over FROM, JOIN and DML-target positions, not a
// semantic resolver: CTE-defined names and subquery aliases are not
// resolved, so a CTE whose name collides with a restricted table is
// gated as if it were that table.
func referencedTables(node *pg_query.Node) []string {
	if node == nil || node.Node == nil {
		return nil
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		return selectTables(n.SelectStmt)
	case *pg_query.Node_InsertStmt:
		tables := []string{n.InsertStmt.GetRelation().GetRelname()}
		// INSERT ... SELECT reads from the select's sources too.
		return append(tables, referencedTables(n.InsertStmt.GetSelectStmt())...)
	case *pg_query.Node_UpdateStmt:
		tables := []string{n.UpdateStmt.GetRelation().GetRelname()}
		for _, item := range n.UpdateStmt.GetFromClause() {
			tables = append(tables, fromItemTables(item)...)
		}
		return tables
	case *pg_query.Node_DeleteStmt:
		tables := []string{n.DeleteStmt.GetRelation().GetRelname()}
		for _, item := range n.DeleteStmt.GetUsingClause() {
			tables = append(tables, fromItemTables(item)...)
		}
		return tables
	case *pg_query.Node_TruncateStmt:
		var tables []string
		for _, rel := range n.TruncateStmt.GetRelations() {
			if rv := rel.GetRangeVar(); rv != nil {
				tables = append(tables, rv.GetRelname())
			}
		}
		return tables
	}
	return nil
}

func selectTables(sel *pg_query.SelectStmt) []string {
	if sel == nil {
		return nil
	}
	var tables []string
	for _, item := range sel.GetFromClause() {
		tables = append(tables, fromItemTables(item)...)
	}
	// Set operations (UNION etc.) hang their branches off Larg/Rarg.
	tables = append(tables, selectTables(sel.GetLarg())...)
	tables = append(tables, selectTables(sel.GetRarg())...)
	return tables
}

func fromItemTables(node *pg_query.Node) []string {
	if node == nil || node.Node == nil {
		return nil
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_RangeVar:
		return []string{n.RangeVar.GetRelname()}
	case *pg_query.Node_JoinExpr:
		tables := fromItemTables(n.JoinExpr.GetLarg())
		return append(tables, fromItemTables(n.JoinExpr.GetRarg())...)
	}
	return nil
}
