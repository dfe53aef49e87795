package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	_, err := ParseDSN("")
	assert.Error(t, err)

	_, err = ParseDSN("postgres://u:p@host:notaport/db")
	assert.Error(t, err)

	cc, err := ParseDSN("postgres://u:p@db.internal:5433/library?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cc.Host)
	assert.Equal(t, uint16(5433), cc.Port)
	assert.Equal(t, "library", cc.Database)
	assert.Equal(t, ApplicationName, cc.RuntimeParams["application_name"])
}

func TestParseDSN_KeepsExplicitApplicationName(t *testing.T) {
	cc, err := ParseDSN("postgres://u:p@localhost:5432/db?application_name=ops-shell")
	require.NoError(t, err)
	assert.Equal(t, "ops-shell", cc.RuntimeParams["application_name"])
}

func TestNewDB_UnreachableFailsFast(t *testing.T) {
	_, err := NewDB("postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1", false)
	assert.Error(t, err)
}
