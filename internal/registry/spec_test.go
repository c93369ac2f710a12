package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbclients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSpecsAliasPrecedence(t *testing.T) {
	path := writeTempSpec(t, `
dbs:
  - name: from-dbs
    rdbms: postgresql
databases:
  - name: from-databases
    rdbms: postgresql
`)
	specs, err := loadSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "from-dbs", specs[0].Name)
}

func TestLoadSpecsSkipsNonArrayAlias(t *testing.T) {
	path := writeTempSpec(t, `
dbs: not-an-array
db_clients:
  - name: main
    rdbms: postgresql
`)
	specs, err := loadSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "main", specs[0].Name)
}

func TestLoadSpecsNoAlias(t *testing.T) {
	path := writeTempSpec(t, "something_else: []\n")
	_, err := loadSpecs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbs, db_clients, databases")
}

func TestLoadSpecsJSONDocument(t *testing.T) {
	path := writeTempSpec(t, `{"databases": [{"name": "main", "rdbms": "postgresql", "connection_info": "host=db port=5432 dbname=app user=app password=s"}]}`)
	specs, err := loadSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "main", specs[0].Name)
	assert.NotEmpty(t, specs[0].ConnectionInfo)
}

func TestSpecDefaults(t *testing.T) {
	s := ClientSpec{Engine: "postgresql", Host: "db", Port: 5432, DBName: "app", User: "app", Password: "s"}
	s.normalize()

	assert.Equal(t, "default", s.Name)
	assert.Equal(t, "require", s.SSLMode)
	assert.Equal(t, int32(1), s.poolSize())
}

func TestSpecPoolSizeAliases(t *testing.T) {
	s := ClientSpec{NumberOfConnections: 4}
	assert.Equal(t, int32(4), s.poolSize())

	s.ConnectionNumber = 8
	assert.Equal(t, int32(8), s.poolSize(), "connection_number wins over number_of_connections")
}

func TestSpecValidate(t *testing.T) {
	s := ClientSpec{Engine: "sqlite"}
	s.normalize()
	err := s.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported rdbms")

	s = ClientSpec{Engine: "postgresql", Host: "db"}
	s.normalize()
	err = s.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing connection fields")
	assert.Contains(t, err.Error(), "dbname")

	s = ClientSpec{Engine: "postgresql", ConnectionInfo: "host=db"}
	s.normalize()
	assert.NoError(t, s.validate(), "precomposed descriptor needs no discrete fields")
}

func TestSpecConnString(t *testing.T) {
	s := ClientSpec{Engine: "postgresql", Host: "db", Port: 5433, DBName: "app", User: "svc", Password: "hunter2"}
	s.normalize()

	dsn := s.connString()
	assert.Equal(t, "host=db port=5433 dbname=app user=svc password=hunter2 sslmode=require connect_timeout=10", dsn)
}

func TestSpecConnStringPrecomposedPassThrough(t *testing.T) {
	s := ClientSpec{Engine: "postgresql", ConnectionInfo: "host=db port=1 dbname=x user=y password=z"}
	s.normalize()
	assert.Equal(t, s.ConnectionInfo, s.connString())
}

func TestLocateEnumeratesCandidates(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Locate("missing.yaml")
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.GreaterOrEqual(t, len(nf.Tried), 4)
	assert.Contains(t, err.Error(), "missing.yaml")
	for _, tried := range nf.Tried {
		assert.Contains(t, err.Error(), tried)
	}
}

func TestLocateFindsCwdFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("dbs: []"), 0o600))
	t.Chdir(dir)

	path, err := Locate("x.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", path)
}

func TestLocateFindsParent(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "build")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("dbs: []"), 0o600))
	t.Chdir(sub)

	path, err := Locate("x.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "x.yaml"), path)
}

func TestLocateIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "x.yaml"), 0o755))
	t.Chdir(dir)

	_, err := Locate("x.yaml")
	require.Error(t, err)
}
