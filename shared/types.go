package shared

type ServerConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite" validate:"required"`
	Zantag ZantagConfig `mapstructure:"zantag" validate:"required"`
	Google GoogleConfig `mapstructure:"google"`
	Twilio TwilioConfig `mapstructure:"twilio"`
	Redis  RedisConfig  `mapstructure:"redis"`
	OCR    OCRConfig    `mapstructure:"ocr"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type ZantagConfig struct {
	// PrivateKeyPem may be left empty in dev mode, an ephemeral key is generated instead.
	PrivateKeyPem string         `mapstructure:"privateKeyPem"`
	AppURL        string         `mapstructure:"appUrl" validate:"required,url"`
	MaxUploadMb   int            `mapstructure:"maxUploadMb" validate:"omitempty,min=1,max=50"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
	Gmail                  GmailConfig   `mapstructure:"gmail"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port              int  `mapstructure:"port" validate:"required"`
	TrustProxyHeaders bool `mapstructure:"trustProxyHeaders"`
}

type StorageConfig struct {
	Bucket                    string `mapstructure:"bucket"`
	Prefix                    string `mapstructure:"prefix"`
	SqliteBackupSchedule      string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync bool   `mapstructure:"enableSqliteBackupAndSync"`
}

type GmailConfig struct {
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
	RefreshToken string `mapstructure:"refreshToken"`
	Sender       string `mapstructure:"sender" validate:"omitempty,email"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
}

type RedisConfig struct {
	URL                      string `mapstructure:"url"`
	LeadSubmissionsPerMinute int    `mapstructure:"leadSubmissionsPerMinute" validate:"min=0"`
	LoginAttemptsPerMinute   int    `mapstructure:"loginAttemptsPerMinute" validate:"min=0"`
}

type OCRConfig struct {
	Languages []string `mapstructure:"languages"`
}

// Configured reports whether every credential needed to send mail through Gmail is present.
func (c GmailConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "" && c.Sender != ""
}

// Configured reports whether twilio credentials are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSid != "" && c.AuthToken != "" && c.MessagingServiceSid != ""
}

// Configured reports whether a storage bucket is set.
func (c StorageConfig) Configured() bool {
	return c.Bucket != ""
}
