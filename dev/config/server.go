package config

// SERVER_YML is the config written for `zantag server --dev`. No private key
// is set, a throwaway one is generated on every dev start.
const SERVER_YML = `
zantag:
  appUrl: "http://localhost:3000"
  maxUploadMb: 10
  cron:
    timeZone: "America/Toronto"
  listener:
    port: 3000
    trustProxyHeaders: false

sqlite:
  passPhrase: passphrase

google:
  applicationCredentials:
  storage:
    bucket:
    prefix: "zantag-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  gmail:
    clientId:
    clientSecret:
    refreshToken:
    sender:

twilio:
  accountSid:
  authToken:
  messagingServiceSid:

redis:
  url:
  leadSubmissionsPerMinute: 10
  loginAttemptsPerMinute: 20

ocr:
  languages:
    - eng
`
