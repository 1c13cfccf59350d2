package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/schemerhq/schemer/pkg/parser"
)

func TestParseSingleModel(t *testing.T) {
	schema, err := ParseString(`model User { id Serial @pk  email VarChar(255) @notnull @unique }`)
	require.NoError(t, err)

	models := schema.Models()
	require.Len(t, models, 1)
	require.Empty(t, schema.RawStatements())

	user := models[0]
	require.Equal(t, "User", user.Name)
	require.Len(t, user.Columns, 2)

	id := user.Columns[0]
	require.Equal(t, "id", id.Name)
	require.Equal(t, "Serial", id.Type.Name)
	require.Empty(t, id.Type.Args)
	require.Len(t, id.Decorators, 1)
	require.Equal(t, DecoratorPrimaryKey, id.Decorators[0].Name())

	email := user.Columns[1]
	require.Equal(t, "email", email.Name)
	require.Equal(t, "VarChar", email.Type.Name)
	require.Len(t, email.Type.Args, 1)
	require.Equal(t, "255", email.Type.Args[0].Value())
	require.Len(t, email.Decorators, 2)
	require.Equal(t, DecoratorNotNull, email.Decorators[0].Name())
	require.Equal(t, DecoratorUnique, email.Decorators[1].Name())
}

func TestParseModelOrderIsPreserved(t *testing.T) {
	schema, err := ParseString(`
		model Account { id Serial @pk }
		model User { id Serial @pk }
		model Session { id Uuid @pk }
	`)
	require.NoError(t, err)

	models := schema.Models()
	require.Len(t, models, 3)
	require.Equal(t, "Account", models[0].Name)
	require.Equal(t, "User", models[1].Name)
	require.Equal(t, "Session", models[2].Name)
}

func TestParseDecoratorArguments(t *testing.T) {
	schema, err := ParseString(`
		model Post {
			id      Serial @pk
			userId  Int @notnull @references(User.id) @ondelete('cascade')
			title   VarChar(200) @default('untitled')
			views   Int @default(0)
			created Timestamp @default(now)
		}
	`)
	require.NoError(t, err)

	post := schema.Models()[0]

	userID := post.Columns[1]
	ref := userID.Decorator(DecoratorReferences)
	require.NotNil(t, ref)
	require.Len(t, ref.Args, 1)
	table, column, ok := ref.Args[0].Reference()
	require.True(t, ok)
	require.Equal(t, "User", table)
	require.Equal(t, "id", column)

	onDelete := userID.Decorator(DecoratorOnDelete)
	require.NotNil(t, onDelete)
	require.Equal(t, "cascade", onDelete.Args[0].Value())
	require.True(t, onDelete.Args[0].IsString())

	title := post.Columns[2]
	require.Equal(t, "untitled", title.Decorator(DecoratorDefault).Args[0].Value())

	views := post.Columns[3]
	arg := views.Decorator(DecoratorDefault).Args[0]
	require.True(t, arg.IsNumber())
	require.Equal(t, "0", arg.Value())

	created := post.Columns[4]
	arg = created.Decorator(DecoratorDefault).Args[0]
	require.True(t, arg.IsIdent())
	require.Equal(t, "now", arg.Value())
}

func TestParseTypeArguments(t *testing.T) {
	schema, err := ParseString(`
		model Product {
			id    Serial @pk
			price Decimal(10, 2)
			state Enum('draft', 'active', 'retired')
		}
	`)
	require.NoError(t, err)

	product := schema.Models()[0]

	price := product.Columns[1]
	require.Len(t, price.Type.Args, 2)
	require.Equal(t, "10", price.Type.Args[0].Value())
	require.Equal(t, "2", price.Type.Args[1].Value())

	state := product.Columns[2]
	require.Len(t, state.Type.Args, 3)
	require.Equal(t, "draft", state.Type.Args[0].Value())
	require.Equal(t, "retired", state.Type.Args[2].Value())
}

func TestParseRawStatements(t *testing.T) {
	schema, err := ParseString(`
		model User { id Serial @pk }
		> CREATE INDEX users_idx ON users (id);
		> INSERT INTO users (id) VALUES (1);
	`)
	require.NoError(t, err)

	raws := schema.RawStatements()
	require.Len(t, raws, 2)
	require.Equal(t, "CREATE INDEX users_idx ON users (id);", raws[0].Statement())
	require.Equal(t, "INSERT INTO users (id) VALUES (1);", raws[1].Statement())
}

func TestParseMultiLineDefault(t *testing.T) {
	schema, err := ParseString("model Note { body Text @default('first\nsecond') }")
	require.NoError(t, err)

	def := schema.Models()[0].Columns[0].Decorator(DecoratorDefault)
	require.Equal(t, "first\nsecond", def.Args[0].Value())
}

func TestParseRawSQLAfterCodeFails(t *testing.T) {
	_, err := ParseString(`model User { id Serial } > stray`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "raw SQL must start its own line")
}

func TestParseStringEscapeResolution(t *testing.T) {
	schema, err := ParseString(`model Log { note Text @default('line\none\ttab\\slash\'quote') }`)
	require.NoError(t, err)

	def := schema.Models()[0].Columns[0].Decorator(DecoratorDefault)
	require.Equal(t, "line\none\ttab\\slash'quote", def.Args[0].Value())
}

func TestParseEmptyModelFails(t *testing.T) {
	_, err := ParseString(`model Ghost { }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one column")
	require.Contains(t, err.Error(), "Ghost")
}

func TestParseUnexpectedTopLevelTokenFails(t *testing.T) {
	_, err := ParseString(`table User { id Serial }`)
	require.Error(t, err)
}

func TestParseMissingBraceFails(t *testing.T) {
	_, err := ParseString(`model User id Serial }`)
	require.Error(t, err)
}

func TestParseDuplicateDecoratorFails(t *testing.T) {
	_, err := ParseString(`model User { email VarChar(255) @unique @unique }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate decorator @unique")
	require.Contains(t, err.Error(), "email")
}

func TestParseDuplicateModelFails(t *testing.T) {
	_, err := ParseString(`
		model User { id Serial @pk }
		model User { id Serial @pk }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate model name")
}

func TestParseDuplicateColumnFails(t *testing.T) {
	_, err := ParseString(`model User { id Serial @pk  id Int }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), `duplicate column "id"`)
}
