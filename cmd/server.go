package cmd

import (
	"os"
	"path/filepath"
	"strings"

	devConfig "github.com/Daskott/zantag/dev/config"
	"github.com/Daskott/zantag/server"
	"github.com/Daskott/zantag/server/ocr/tesseract"
	"github.com/Daskott/zantag/shared"
	"github.com/Daskott/zantag/utils"
	"github.com/go-playground/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "ZANTAG"

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a zantag server",
	Long: `Start the zantag API: public cards, lead capture, card scanning & the
admin console. In dev mode the config in ./dev/config/server.yml is used,
and created when missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isDevEnv {
			path, err := ensureDevConfig()
			if err != nil {
				return err
			}
			serverConfigFile = path
		}

		if serverConfigFile == "" {
			return formattedError("--sconfig is required outside dev mode")
		}

		config, err := loadServerConfig(serverConfigFile)
		if err != nil {
			return err
		}

		server.Start(config, isDevEnv, tesseract.NewTesseractEngine(config.OCR.Languages...))
		return nil
	},
}

var serverConfigFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config file for the server")
}

// loadServerConfig reads & validates the server config at path. Every key can
// be overridden by an env var, e.g. ZANTAG_SQLITE_PASSPHRASE for sqlite.passPhrase.
func loadServerConfig(path string) (*shared.ServerConfig, error) {
	config := viper.New()
	config.SetConfigFile(path)
	config.SetEnvPrefix(ENV_PREFIX)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	serverConfig := shared.ServerConfig{}
	if err := config.Unmarshal(&serverConfig); err != nil {
		return nil, formattedError("error parsing server config file: %v", err)
	}

	if err := validator.New().Struct(serverConfig); err != nil {
		return nil, formattedError("invalid server config: %v", err)
	}

	return &serverConfig, nil
}

// ensureDevConfig writes the default dev config unless one exists & returns its path.
func ensureDevConfig() (string, error) {
	configDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	configDir = filepath.Join(configDir, "dev", "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(configDir, "server.yml")
	if utils.FileExist(path) {
		return path, nil
	}

	return path, os.WriteFile(path, []byte(devConfig.SERVER_YML), 0600)
}
