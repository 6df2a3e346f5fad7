package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/infrastructure/memory"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
	"github.com/oksasatya/interview-tracker/pkg/validation"
)

type envelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    json.RawMessage      `json:"data"`
	Count   *int                 `json:"count"`
	Stats   []entity.StatusCount `json:"stats"`
	Error   map[string]string    `json:"error"`
}

type fakeStorage struct {
	paths []string
}

func (f *fakeStorage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	return "https://storage.example/" + objectPath, nil
}

type testServer struct {
	engine     *gin.Engine
	candidates *application.CandidateService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	store := memory.NewStore()
	logger := helpers.NewDiscardLogger()
	creds := application.NewCredentialStore(store.Interviewers(), helpers.NewBcryptHasher(bcrypt.MinCost))
	candidates := application.NewCandidateService(store.Candidates(), logger)

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg, Deps{
		Interviewers: application.NewInterviewerService(creds, helpers.NewJWTManager("test-secret", time.Hour), logger),
		Candidates:   candidates,
		Cookies:      helpers.NewCookie("token", "", false),
		Metrics:      prometheus.NewRegistry(),
		Logger:       logger,
	})
	reg.RegisterAll()
	return &testServer{engine: engine, candidates: candidates}
}

// client remembers the session cookie between calls, like a browser.
type client struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client { return &client{t: t, srv: s} }

func (c *client) send(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.srv.engine.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "token" {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(c.t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *client) register(name, email string) *entity.Interviewer {
	c.t.Helper()
	w, env := c.do(http.MethodPost, "/api/auth/register", gin.H{"name": name, "email": email, "password": "secret1"})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var me entity.Interviewer
	require.NoError(c.t, json.Unmarshal(env.Data, &me))
	return &me
}

func (c *client) createCandidate(body gin.H) entity.CandidateView {
	c.t.Helper()
	w, env := c.do(http.MethodPost, "/api/candidate", body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var v entity.CandidateView
	require.NoError(c.t, json.Unmarshal(env.Data, &v))
	return v
}

func candidateBody(name, status string) gin.H {
	b := gin.H{
		"fullName":       name,
		"email":          name + "@example.com",
		"position":       "Backend Engineer",
		"interviewDate":  "2026-11-02",
		"interviewField": "Go",
		"interviewRound": "Technical",
	}
	if status != "" {
		b["status"] = status
	}
	return b
}

func TestSystemRoutes(t *testing.T) {
	c := newTestServer(t).client(t)

	w, _ := c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server is reachable"}`, w.Body.String())

	w, _ = c.do(http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w, _ = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	me := c.register("Ann", "Ann@Example.com")
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, entity.DefaultRole, me.Role)
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)

	w, env := c.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "password")

	w, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, c.cookie)

	w, env = c.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", env.Message)

	w, env = c.do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", env.Message)
	assert.NotNil(t, c.cookie)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).register("Ann", "ann@example.com")

	w, env := srv.client(t).do(http.MethodPost, "/api/auth/register", gin.H{"name": "Other", "email": "ANN@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", env.Message)
}

func TestRegister_InvalidPayload(t *testing.T) {
	c := newTestServer(t).client(t)

	w, env := c.do(http.MethodPost, "/api/auth/register", gin.H{"email": "not-an-email", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "name")
	assert.Contains(t, env.Error, "email")
	assert.Contains(t, env.Error, "password")

	w, env = c.do(http.MethodPost, "/api/auth/register", `{"name": }`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid json", env.Error["payload"])
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).register("Ann", "ann@example.com")

	unknown, _ := srv.client(t).do(http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@example.com", "password": "secret1"})
	wrong, _ := srv.client(t).do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "wrong-pass"})

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Contains(t, unknown.Body.String(), "Invalid credentials")
}

func TestUpdateProfile(t *testing.T) {
	srv := newTestServer(t)
	srv.client(t).register("Bob", "bob@example.com")
	c := srv.client(t)
	c.register("Ann", "ann@example.com")

	w, env := c.do(http.MethodPatch, "/api/auth/profile", gin.H{"currentPassword": "nope", "newPassword": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", env.Message)

	w, env = c.do(http.MethodPatch, "/api/auth/profile", gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", env.Message)

	w, env = c.do(http.MethodPatch, "/api/auth/profile", gin.H{"name": "Annie", "currentPassword": "secret1", "newPassword": "secret2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Profile updated successfully", env.Message)
	assert.Contains(t, string(env.Data), `"name":"Annie"`)

	w, _ = srv.client(t).do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOverlongPasswordsAreRejected(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	long := strings.Repeat("x", 80)

	w, env := c.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": "ann@example.com", "password": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at most 72 characters long", env.Error["password"])

	// multi-byte runes fit the character count but not bcrypt's byte limit
	w, env = c.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Ann", "email": "ann@example.com", "password": strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at most 72 bytes long", env.Error["password"])

	c.register("Ann", "ann@example.com")
	w, env = c.do(http.MethodPatch, "/api/auth/profile", gin.H{"currentPassword": "secret1", "newPassword": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "newPassword")

	w, env = c.do(http.MethodPatch, "/api/auth/profile", gin.H{"currentPassword": "secret1", "newPassword": strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at most 72 bytes long", env.Error["newPassword"])

	w, _ = srv.client(t).do(http.MethodPost, "/api/auth/login", gin.H{"email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCandidateRoutes_RequireSession(t *testing.T) {
	c := newTestServer(t).client(t)
	for _, path := range []string{"/api/candidate", "/api/candidate/all", "/api/candidate/search?q=a", "/api/candidate/x"} {
		w, env := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "Not authorized", env.Message, path)
	}
}

func TestCandidateLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ann := srv.client(t)
	me := ann.register("Ann", "ann@example.com")

	// empty list is [] with empty stats
	w, env := ann.do(http.MethodGet, "/api/candidate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	assert.Contains(t, w.Body.String(), `"stats":[]`)

	created := ann.createCandidate(candidateBody("ada", ""))
	assert.Equal(t, entity.StatusScheduled, created.Status)
	assert.Equal(t, me.ID, created.InterviewerID)
	assert.Equal(t, "Ann", created.InterviewerName)
	assert.Equal(t, "ann@example.com", created.InterviewerEmail)
	ann.createCandidate(candidateBody("grace", "scheduled"))
	ann.createCandidate(candidateBody("alan", "selected"))

	w, env = ann.do(http.MethodGet, "/api/candidate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, *env.Count)
	assert.Equal(t, []entity.StatusCount{
		{Status: entity.StatusScheduled, Count: 2},
		{Status: entity.StatusSelected, Count: 1},
	}, env.Stats)

	w, env = ann.do(http.MethodGet, "/api/candidate/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got entity.CandidateView
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "ada", got.FullName)

	// partial update touches only status
	w, env = ann.do(http.MethodPatch, "/api/candidate/"+created.ID, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Candidate updated successfully", env.Message)
	var updated entity.CandidateView
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, got.FullName, updated.FullName)
	assert.Equal(t, got.Position, updated.Position)
	assert.True(t, got.InterviewDate.Equal(updated.InterviewDate))

	w, env = ann.do(http.MethodPatch, "/api/candidate/"+created.ID, gin.H{"score": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "score")

	w, env = ann.do(http.MethodDelete, "/api/candidate/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Candidate deleted successfully", env.Message)
	assert.Equal(t, []entity.StatusCount{
		{Status: entity.StatusScheduled, Count: 1},
		{Status: entity.StatusSelected, Count: 1},
	}, env.Stats)

	w, _ = ann.do(http.MethodGet, "/api/candidate/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCandidate_OtherInterviewerSeesNotFound(t *testing.T) {
	srv := newTestServer(t)
	ann := srv.client(t)
	ann.register("Ann", "ann@example.com")
	bob := srv.client(t)
	bob.register("Bob", "bob@example.com")

	cand := ann.createCandidate(candidateBody("ada", ""))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/candidate/" + cand.ID},
		{http.MethodPatch, "/api/candidate/" + cand.ID},
		{http.MethodDelete, "/api/candidate/" + cand.ID},
		{http.MethodGet, "/api/candidate/not-a-uuid"},
	} {
		var body any
		if tc.method == http.MethodPatch {
			body = gin.H{"status": "rejected"}
		}
		w, env := bob.do(tc.method, tc.path, body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Candidate not found or not authorized", env.Message)
	}

	w, env := bob.do(http.MethodGet, "/api/candidate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, *env.Count)

	w, env = bob.do(http.MethodGet, "/api/candidate/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)
	assert.Equal(t, []entity.StatusCount{{Status: entity.StatusScheduled, Count: 1}}, env.Stats)
}

func TestCreateCandidate_Validation(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("Ann", "ann@example.com")

	w, env := c.do(http.MethodPost, "/api/candidate", gin.H{"fullName": "ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please fill all required fields", env.Message)
	for _, field := range []string{"position", "interviewDate", "interviewField", "interviewRound"} {
		assert.Contains(t, env.Error, field)
	}

	bad := candidateBody("ada", "hired")
	bad["interviewRound"] = "Final"
	w, env = c.do(http.MethodPost, "/api/candidate", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "status")
	assert.Contains(t, env.Error, "interviewRound")

	bad = candidateBody("ada", "")
	bad["interviewDate"] = "next tuesday"
	w, env = c.do(http.MethodPost, "/api/candidate", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "interviewDate")
}

func TestSearchFallsBackToStore(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("Ann", "ann@example.com")
	c.createCandidate(candidateBody("ada", ""))
	c.createCandidate(candidateBody("grace", ""))

	w, env := c.do(http.MethodGet, "/api/candidate/search?q=ADA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *env.Count)

	w, env = c.do(http.MethodGet, "/api/candidate/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "is required", env.Error["q"])
}

func multipartResume(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadResume(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)
	c.register("Ann", "ann@example.com")
	cand := c.createCandidate(candidateBody("ada", ""))
	path := "/api/candidate/" + cand.ID + "/resume"

	w, _ := c.send(multipartResume(t, path, "cv.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	storage := &fakeStorage{}
	srv.candidates.Storage = storage

	w, env := c.send(multipartResume(t, path, "cv.exe", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "resume")

	w, env = c.send(multipartResume(t, path, "cv.pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view entity.CandidateView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, storage.paths, 1)
	assert.Equal(t, "https://storage.example/"+storage.paths[0], view.ResumeURL)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w, env = c.send(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJSONBodyLimit(t *testing.T) {
	c := newTestServer(t).client(t)
	huge := `{"name":"` + string(bytes.Repeat([]byte("a"), 20<<10)) + `","email":"a@b.co","password":"secret1"}`

	w, env := c.do(http.MethodPost, "/api/auth/register", huge)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body too large", env.Error["payload"])
}
