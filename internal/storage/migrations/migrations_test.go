package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x String)
ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y String DEFAULT 'it''s') ENGINE = MergeTree() ORDER BY y;
`
	stmts, err := splitStatements(input)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE a")
	assert.Contains(t, stmts[1], "CREATE TABLE b")
}

func TestSplitStatementsRejectsQuotedSemicolon(t *testing.T) {
	_, err := splitStatements("SELECT 'a;b'")
	assert.ErrorIs(t, err, errQuotedSemicolon)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/rewards")
	require.NoError(t, err)
	assert.Equal(t, "rewards", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestLoadEmbeddedMigrations(t *testing.T) {
	pg, err := load("postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Equal(t, "001_tracked_wallets", pg[0].version)
	assert.Contains(t, pg[0].sql, "tracked_wallets")

	ch, err := load("clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	assert.Equal(t, "001_reward_snapshots", ch[0].version)

	stmts, err := splitStatements(ch[0].sql)
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestLoadVersionOrder(t *testing.T) {
	for _, dir := range []string{"postgres", "clickhouse"} {
		ms, err := load(dir)
		require.NoError(t, err)
		for i := 1; i < len(ms); i++ {
			assert.Less(t, ms[i-1].version, ms[i].version)
		}
	}
}
