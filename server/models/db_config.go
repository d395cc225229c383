package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/Daskott/zantag/server/logger"
	"github.com/Daskott/zantag/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "zantag.db"

var logg = logger.NewNamedLogger("models")
var db *gorm.DB

// AutoMigrate opens the encrypted db under dbRootDir, migrates the schema & inserts seed data
func AutoMigrate(passPhrase string, dbRootDir string) error {
	err := openDB(passPhrase, dbRootDir)
	if err != nil {
		return err
	}

	err = db.AutoMigrate(
		&JobStatus{}, &Job{}, &Role{},
		&Organization{}, &User{}, &Profile{},
		&Link{}, &Document{}, &Contact{},
		&InviteCode{}, &SystemSetting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return populateDBWithSeedData()
}

// DbFilePath returns the location of the sqlite file under dbRootDir.
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// Checkpoint flushes the WAL into the main db file so it can be copied safely.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func openDB(passPhrase string, dbRootDir string) error {
	var err error
	var dbDSNVal string

	dbDSNVal, err = dbDSN(passPhrase, dbRootDir)
	if err != nil {
		return fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err = gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func populateDBWithSeedData() error {
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		err = db.Create(&[]JobStatus{{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB}}).Error
		if err != nil {
			return err
		}
	}

	if err := db.First(&Role{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'Role'")
		err = db.Create(&[]Role{
			{Name: SUPER_ADMIN_ROLE},
			{Name: BUSINESS_ADMIN_ROLE},
			{Name: BUSINESS_STAFF_ROLE},
			{Name: INDIVIDUAL_ROLE},
		}).Error
		if err != nil {
			return err
		}
	}

	if _, err := GetSetting(INVITATION_ONLY_SETTING); errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'SystemSetting'")
		if err = SetInvitationOnly(true); err != nil {
			return err
		}
	}

	return nil
}

func dbDSN(passPhrase string, dbRootDir string) (string, error) {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000",
		dbFilePath,
		passPhrase,
	), nil
}
