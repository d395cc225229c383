package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Daskott/zantag/server/auth"
	"github.com/Daskott/zantag/server/auth/key"
	"github.com/Daskott/zantag/server/gstorage"
	"github.com/Daskott/zantag/server/mailer"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/ratelimit"
	"github.com/Daskott/zantag/server/twilio"
	"github.com/Daskott/zantag/server/work"
	"github.com/Daskott/zantag/shared"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []work.JobParams
}

func (q *recordingQueue) Perform(job work.JobParams) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) handlers() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	handlers := []string{}
	for _, job := range q.jobs {
		handlers = append(handlers, job.Handler)
	}
	return handlers
}

type scriptedEngine struct {
	text string
	err  error
}

func (e *scriptedEngine) Name() string { return "scripted" }

func (e *scriptedEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return e.text, e.err
}

type testServer struct {
	router *mux.Router
	queue  *recordingQueue
}

// setupTestServer points every package level dependency at an in-process fake
// backed by a fresh db.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	models.InitializeTestDb()

	var err error
	authKeyPair, err = key.GenerateKeyPair()
	require.Nil(t, err)

	objectStore, err = gstorage.NewDiskStore(t.TempDir())
	require.Nil(t, err)

	queue := &recordingQueue{}
	appConfig = shared.ServerConfig{Zantag: shared.ZantagConfig{AppURL: "http://localhost:3000", MaxUploadMb: 1}}
	jobQueue = queue
	backupStore = nil
	ocrEngine = nil
	mailClient = mailer.LogMailer{}
	smsClient = twilio.NewClient(shared.TwilioConfig{}, true)
	limiter = ratelimit.NewLimiter(nil, shared.RedisConfig{})

	return &testServer{router: newRouter(), queue: queue}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, ResponsePayload) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.Nil(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return ts.serve(t, req, token)
}

func (ts *testServer) upload(t *testing.T, path, token, fileName string, file []byte, fields map[string]string) (*httptest.ResponseRecorder, ResponsePayload) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.Nil(t, writer.WriteField(name, value))
	}

	part, err := writer.CreateFormFile("file", fileName)
	require.Nil(t, err)
	_, err = part.Write(file)
	require.Nil(t, err)
	require.Nil(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return ts.serve(t, req, token)
}

func (ts *testServer) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, ResponsePayload) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	payload := ResponsePayload{}
	if rec.Header().Get("Content-Type") == "" || rec.Header().Get("Content-Type") == "application/json" {
		json.Unmarshal(rec.Body.Bytes(), &payload)
	}
	return rec, payload
}

// createTestUser stores a user with role & returns them with a signed token.
func createTestUser(t *testing.T, email, role string, verified bool) (*models.User, string) {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, Password: "password1"}
	require.Nil(t, models.CreateUser(&user, role))

	if verified {
		verificationToken, err := models.VerificationTokenFor(user.ID)
		require.Nil(t, err)
		_, err = models.VerifyEmail(verificationToken)
		require.Nil(t, err)
	}

	found, err := models.FindUserBy("id", user.ID)
	require.Nil(t, err)

	token, err := auth.EncodeJWT(auth.NewClaims(fmt.Sprint(found.ID), found.Name, found.RoleName(), found.OrganizationID), authKeyPair)
	require.Nil(t, err)

	return found, token
}

func createTestProfile(t *testing.T, ts *testServer, token, username string) {
	t.Helper()

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/me/profile", token, map[string]string{
		"username":     username,
		"display_name": "Jane Smith",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func dataMap(t *testing.T, payload ResponsePayload) map[string]interface{} {
	t.Helper()

	data, ok := payload.Data.(map[string]interface{})
	require.True(t, ok, "expected an object, got %#v", payload.Data)
	return data
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.White)
		}
	}

	buf := &bytes.Buffer{}
	require.Nil(t, png.Encode(buf, img))
	return buf.Bytes()
}

func formatID(id interface{}) string {
	return fmt.Sprintf("%.0f", id)
}
