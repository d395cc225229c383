package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	devConfig "github.com/Daskott/zantag/dev/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Should load the dev config", func(t *testing.T) {
		path := filepath.Join(dir, "server.yml")
		require.Nil(t, os.WriteFile(path, []byte(devConfig.SERVER_YML), 0600))

		config, err := loadServerConfig(path)
		require.Nil(t, err)
		assert.Equal(t, "passphrase", config.Sqlite.PassPhrase)
		assert.Equal(t, 3000, config.Zantag.Listener.Port)
		assert.Equal(t, []string{"eng"}, config.OCR.Languages)
		assert.Equal(t, 10, config.Redis.LeadSubmissionsPerMinute)
		assert.False(t, config.Google.Storage.Configured())
	})

	t.Run("Should let env vars override the file", func(t *testing.T) {
		path := filepath.Join(dir, "env.yml")
		require.Nil(t, os.WriteFile(path, []byte(devConfig.SERVER_YML), 0600))
		t.Setenv("ZANTAG_SQLITE_PASSPHRASE", "from-env")

		config, err := loadServerConfig(path)
		require.Nil(t, err)
		assert.Equal(t, "from-env", config.Sqlite.PassPhrase)
	})

	t.Run("Should reject an invalid config", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yml")
		invalid := strings.Replace(devConfig.SERVER_YML, `appUrl: "http://localhost:3000"`, `appUrl: "not a url"`, 1)
		require.Nil(t, os.WriteFile(path, []byte(invalid), 0600))

		_, err := loadServerConfig(path)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "invalid server config")
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		_, err := loadServerConfig(filepath.Join(dir, "missing.yml"))
		assert.NotNil(t, err)
	})
}
