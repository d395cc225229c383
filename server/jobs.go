package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/zantag/server/gstorage"
	"github.com/Daskott/zantag/server/mailer"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/twilio"
	"github.com/Daskott/zantag/server/work"
	"github.com/Daskott/zantag/utils"
)

const (
	SEND_VERIFICATION_EMAIL = "send_verification_email"
	NOTIFY_NEW_LEAD         = "notify_new_lead"
	DELETE_STORED_OBJECT    = "delete_stored_object"
	BACKUP_SQLITE_DB        = "backup_sqlite_db"

	jobTimeout = 30 * time.Second
)

func registerJobHandlers(wpa *work.WorkerPoolAdapter) error {
	handlers := map[string]work.Handler{
		SEND_VERIFICATION_EMAIL: sendVerificationEmail,
		NOTIFY_NEW_LEAD:         notifyNewLead,
		DELETE_STORED_OBJECT:    deleteStoredObject,
		BACKUP_SQLITE_DB:        backupSqliteDb,
	}

	for name, handler := range handlers {
		if err := wpa.Register(name, handler); err != nil {
			return fmt.Errorf("register %v: %v", name, err)
		}
	}

	return nil
}

func enqueuePeriodicJobs(wpa *work.WorkerPoolAdapter) error {
	storageConfig := appConfig.Google.Storage
	if !storageConfig.EnableSqliteBackupAndSync || backupStore == nil {
		return nil
	}

	return wpa.PeriodicallyPerform(storageConfig.SqliteBackupSchedule, work.JobParams{
		Name:    BACKUP_SQLITE_DB,
		Handler: BACKUP_SQLITE_DB,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
}

func sendVerificationEmail(args map[string]interface{}) error {
	user, err := models.FindUserBy("id", args["user_id"])
	if err != nil {
		return err
	}

	token, err := models.VerificationTokenFor(user.ID)
	if err != nil {
		return err
	}

	// Verified since the job was enqueued
	if token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	return mailClient.Send(ctx, mailer.VerificationMessage(appConfig.Zantag.AppURL, user.Email, user.Name, token))
}

func notifyNewLead(args map[string]interface{}) error {
	profile, err := models.FindProfileByID(args["profile_id"])
	if err != nil {
		return err
	}

	contact, err := profile.FindContact(args["contact_id"])
	if errors.Is(err, models.ErrRecordNotFound) {
		// Deleted before we got to it
		return nil
	}
	if err != nil {
		return err
	}

	owner, err := models.FindUserBy("id", profile.UserID)
	if err != nil {
		return err
	}

	return smsClient.SendMessage(
		owner.PhoneNumber,
		twilio.NewLeadMessage(profile.DisplayName, contact.Name, contact.Email, contact.Phone),
	)
}

func deleteStoredObject(args map[string]interface{}) error {
	objectKey, _ := args["key"].(string)
	if objectKey == "" {
		return fmt.Errorf("missing object key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	err := objectStore.Delete(ctx, objectKey)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return nil
	}

	return err
}

func backupSqliteDb(map[string]interface{}) error {
	if backupStore == nil {
		return nil
	}

	if err := models.Checkpoint(); err != nil {
		return fmt.Errorf("checkpoint: %v", err)
	}

	dbFilePath, err := models.DbFilePath(configDir)
	if err != nil {
		return err
	}

	return backupStore.UploadFile(dbFilePath)
}

// restoreSqliteDb pulls the last backup when there is no local db yet.
func restoreSqliteDb() error {
	dbFilePath, err := models.DbFilePath(configDir)
	if err != nil {
		return err
	}

	if utils.FileExist(dbFilePath) {
		return nil
	}

	err = backupStore.DownloadFile(models.DB_NAME, dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Info("No sqlite backup found, starting with an empty db")
		return nil
	}

	return err
}

func enqueueObjectDeletion(objectKey string) {
	enqueue(work.JobParams{
		Name:    fmt.Sprintf("%v_%v", DELETE_STORED_OBJECT, objectKey),
		Handler: DELETE_STORED_OBJECT,
		Unique:  true,
		Args:    map[string]interface{}{"key": objectKey},
	})
}
