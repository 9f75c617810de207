package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Options {
	return &Options{
		Port:          DefaultAddress,
		MongoDatabase: DefaultMongoDatabase,
		TokenSecret:   DefaultTokenSecret,
		TokenTTL:      DefaultTokenTTL,
		LogLevel:      DefaultLogLevel,
	}
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	o := defaults()
	err := o.applyEnv(envMap(map[string]string{
		"PORT":             "8081",
		"MONGO_PUBLIC_URL": "mongodb://public:27017",
		"MONGO_URL":        "mongodb://private:27017",
		"TOKEN_TTL":        "30m",
		"LOG_LEVEL":        "Debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8081", o.Port)
	assert.Equal(t, "mongodb://private:27017", o.MongoURI, "MONGO_URL wins over MONGO_PUBLIC_URL")
	assert.Equal(t, 30*time.Minute, o.TokenTTL)
	assert.Equal(t, "Debug", o.LogLevel)
}

func TestApplyEnv_ServerAddressBeatsPort(t *testing.T) {
	o := defaults()
	require.NoError(t, o.applyEnv(envMap(map[string]string{
		"PORT":           "8081",
		"SERVER_ADDRESS": "0.0.0.0:9000",
	})))
	assert.Equal(t, "0.0.0.0:9000", o.Port)
}

func TestApplyEnv_BadTTL(t *testing.T) {
	o := defaults()
	err := o.applyEnv(envMap(map[string]string{"TOKEN_TTL": "soon"}))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"address":":7000","mongo_uri":"mongodb://db:27017","token_ttl":"2h","log_level":"Warn"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	o := defaults()
	o.Config = path
	require.NoError(t, o.loadFile())

	assert.Equal(t, ":7000", o.Port)
	assert.Equal(t, "mongodb://db:27017", o.MongoURI)
	assert.Equal(t, 2*time.Hour, o.TokenTTL)
	assert.Equal(t, "Warn", o.LogLevel)
	assert.Equal(t, DefaultMongoDatabase, o.MongoDatabase, "unset keys keep defaults")
}

func TestLoadFile_Missing(t *testing.T) {
	o := defaults()
	o.Config = filepath.Join(t.TempDir(), "absent.json")
	require.NoError(t, o.loadFile())
	assert.Equal(t, DefaultAddress, o.Port)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	o := defaults()
	o.Config = path
	assert.Error(t, o.loadFile())
}

func TestTLSEnabled(t *testing.T) {
	o := defaults()
	assert.False(t, o.TLSEnabled())
	o.TLSCert = "server.crt"
	assert.False(t, o.TLSEnabled())
	o.TLSKey = "server.key"
	assert.True(t, o.TLSEnabled())
}
