package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/work"
	"github.com/Daskott/zantag/utils"
	"github.com/go-playground/validator"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeData(rw http.ResponseWriter, data interface{}, statusCode int) {
	writeResponse(rw, ResponsePayload{Success: true, Data: data}, statusCode)
}

func writeErrors(rw http.ResponseWriter, statusCode int, errs ...string) {
	writeResponse(rw, ResponsePayload{Errors: errs}, statusCode)
}

// writeModelError maps err to a status: missing records are 404, known
// conflicts 400 & anything else 500.
func writeModelError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeErrors(rw, http.StatusNotFound, "record not found")
	case errors.Is(err, models.ErrEmailTaken),
		errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrProfileExists),
		errors.Is(err, models.ErrInviteCodeInvalid),
		errors.Is(err, models.ErrInviteCodeRequired),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrSlugTaken):
		writeErrors(rw, http.StatusBadRequest, err.Error())
	default:
		writeErrors(rw, http.StatusInternalServerError, err.Error())
	}
}

// decodeAndValidate reads a JSON body into data & validates it, writing a 400
// & returning false when either fails.
func decodeAndValidate(rw http.ResponseWriter, r *http.Request, data interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		writeErrors(rw, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	if errs := validate.Struct(data); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return false
	}

	return true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		return 1
	}
	return page
}

// clientIP is the peer address, or the first X-Forwarded-For hop when the
// listener sits behind a trusted proxy.
func clientIP(r *http.Request) string {
	if appConfig.Zantag.Listener.TrustProxyHeaders {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			return strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func enqueue(job work.JobParams) {
	if err := jobQueue.Perform(job); err != nil {
		logg.Error(err)
	}
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return models.ValidUsername(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("hex_color", func(fl validator.FieldLevel) bool {
		return models.ValidColor(fl.Field().String())
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.RoleNameMap[fl.Field().String()]
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("link_type", func(fl validator.FieldLevel) bool {
		return models.LinkTypeMap[fl.Field().String()]
	})
	if err != nil {
		return err
	}

	// Website & social links (the default type) must be absolute URLs
	return validate.RegisterValidation("link_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strings.IndexFunc(value, unicode.IsControl) >= 0 {
			return false
		}

		var linkType string
		switch link := fl.Parent().Interface().(type) {
		case models.Link:
			linkType = link.Type
		case *models.Link:
			linkType = link.Type
		}

		if linkType == models.PHONE_LINK || linkType == models.EMAIL_LINK {
			return true
		}
		return validate.Var(value, "url") == nil
	})
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("ZanTag server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backupDb bool) {
	// Stop all jobs i.e. workers & periodic jobs
	workerPool.Stop()

	if backupDb {
		if err := backupSqliteDb(nil); err != nil {
			logg.Error(err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("ZanTag server shutdown failed:%+s", err)
	}

	logg.Infof("ZanTag server stopped properly")
}

// configDirectory retrieves the directory to store zantag data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use '.zantag' folder in home directory for prod
	configFolderName := ".zantag"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
