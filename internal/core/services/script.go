package services

import (
	"fmt"
	"strings"

	"github.com/enunezf/routinesync/internal/core/domain"
)

const (
	// DefaultSchema owns procedures and triggers in drop statements
	DefaultSchema = "dbo"

	// ErrorVariable holds the name of the object being applied when the
	// batch fails
	ErrorVariable = "@error_object_name"

	// RollbackErrorNumber is raised after rollback with ErrorVariable as message
	RollbackErrorNumber = 50000

	// MissingObjectErrorNumber is raised when an object is absent after create
	MissingObjectErrorNumber = 70000
)

var (
	scriptPreamble = "DECLARE " + ErrorVariable + " varchar(300);\n" +
		"BEGIN TRY;\n" +
		"BEGIN TRANSACTION;\n\n"

	scriptTrailer = "COMMIT TRANSACTION;\n" +
		"END TRY\n" +
		"BEGIN CATCH;\n" +
		"\tROLLBACK TRANSACTION;\n" +
		fmt.Sprintf("\tTHROW %d,\n", RollbackErrorNumber) +
		"\t" + ErrorVariable + ", 1;\n" +
		"END CATCH;\n"
)

// ScriptBuilder generates the transactional migration script
type ScriptBuilder struct {
	schema string
}

// NewScriptBuilder creates a builder that targets DefaultSchema
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{schema: DefaultSchema}
}

// Build emits drop-if-exists, the verbatim definition and an existence
// assertion for every object, in order, inside a single transaction. Any
// failure rolls the whole batch back and rethrows with the name of the last
// object whose drop statement ran.
func (b *ScriptBuilder) Build(changed []domain.SqlObject) (string, error) {
	statements := make([]string, 0, len(changed)*3)

	for _, obj := range changed {
		drop, err := b.DropIfExists(obj)
		if err != nil {
			return "", err
		}
		assert, err := b.ThrowIfNotExists(obj)
		if err != nil {
			return "", err
		}

		statements = append(statements,
			labelledSubStatement(drop, obj.Name),
			subStatement(obj.Text),
			subStatement(assert),
		)
	}

	var sb strings.Builder
	sb.WriteString(scriptPreamble)
	sb.WriteString(strings.Join(statements, "\n"))
	sb.WriteString(scriptTrailer)
	return sb.String(), nil
}

// DropIfExists returns the guarded DROP statement for obj
func (b *ScriptBuilder) DropIfExists(obj domain.SqlObject) (string, error) {
	exists, err := b.existsPredicate(obj)
	if err != nil {
		return "", err
	}

	var drop string
	switch {
	case obj.Kind == domain.KindTrigger:
		drop = fmt.Sprintf("DROP TRIGGER [%s].[%s];", quoteIdent(b.schema), quoteIdent(obj.Name))
	case obj.Kind == domain.KindStoredProcedure:
		drop = fmt.Sprintf("DROP PROCEDURE [%s].[%s];", quoteIdent(b.schema), quoteIdent(obj.Name))
	default:
		// Unqualified and unbracketed, the form deployed scripts have always used
		drop = fmt.Sprintf("DROP FUNCTION %s;", obj.Name)
	}

	return "IF EXISTS " + exists + " " + drop, nil
}

// ThrowIfNotExists returns the statement that fails when obj is missing
func (b *ScriptBuilder) ThrowIfNotExists(obj domain.SqlObject) (string, error) {
	exists, err := b.existsPredicate(obj)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("IF NOT EXISTS %s THROW %d, '%s does not exist!', 1;",
		exists, MissingObjectErrorNumber, quoteLiteral(obj.Name)), nil
}

// existsPredicate returns the catalog subquery locating obj
func (b *ScriptBuilder) existsPredicate(obj domain.SqlObject) (string, error) {
	switch obj.Kind {
	case domain.KindTrigger:
		return fmt.Sprintf("(SELECT * FROM sys.objects WHERE [name] = N'%s' AND [type] = 'TR')",
			quoteLiteral(obj.Name)), nil
	case domain.KindStoredProcedure:
		return fmt.Sprintf("( SELECT * FROM   sysobjects WHERE  id = object_id(N'[%s].[%s]') and OBJECTPROPERTY(id, N'IsProcedure') = 1 )",
			quoteLiteral(quoteIdent(b.schema)), quoteLiteral(quoteIdent(obj.Name))), nil
	case domain.KindScalarFunction, domain.KindInlineTableValuedFunction, domain.KindTableValuedFunction:
		return fmt.Sprintf("(SELECT * FROM sysobjects WHERE id = object_id(N'%s') AND xtype IN (N'FN', N'IF', N'TF'))",
			quoteLiteral(obj.Name)), nil
	default:
		return "", &domain.UnsupportedKindError{Kind: obj.Kind.String()}
	}
}

// labelledSubStatement records name in the error variable, then runs query
func labelledSubStatement(query, name string) string {
	return fmt.Sprintf("SET %s = '%s'\n", ErrorVariable, quoteLiteral(name)) + subStatement(query)
}

// subStatement wraps query in sp_ExecuteSQL
func subStatement(query string) string {
	return "EXEC sp_ExecuteSQL N'\n" + quoteLiteral(query) + "\n';\n"
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quoteIdent(s string) string {
	return strings.ReplaceAll(s, "]", "]]")
}
