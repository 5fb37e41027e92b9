package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
create table if not exists collections (
    id integer primary key,
    name text not null unique
);
`

func TestOpenLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cards.db")
	config := Struct{File: path}
	require.False(t, config.Remote())
	require.Equal(t, path, config.Describe())

	db, err := config.OpenDB(testSchema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec("insert into collections(name) values ('BT1')")
	require.NoError(t, err)
	db.Close()

	// the schema is applied again on every open
	db, err = config.OpenDB(testSchema)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("select count(*) from collections").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenErrors(t *testing.T) {
	_, err := Struct{}.OpenDB(testSchema)
	require.Error(t, err)

	_, err = Struct{Url: "ftp://example.com/db"}.OpenDB(testSchema)
	require.ErrorContains(t, err, "unsupported")
}
