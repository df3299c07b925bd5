package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/config"
	"github.com/ebogdum/todoapi/core"
	"github.com/ebogdum/todoapi/store"
)

// memStore is an in-memory store.Store used to exercise the full router
type memStore struct {
	mu    sync.Mutex
	users map[string]*store.User
	tasks map[uuid.UUID]*store.Task
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*store.User),
		tasks: make(map[uuid.UUID]*store.Task),
	}
}

func (m *memStore) GetByLogin(ctx context.Context, login string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[login]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateUser(ctx context.Context, user *store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Login]; ok {
		return store.ErrAlreadyExists
	}
	m.users[user.Login] = user
	return nil
}

func (m *memStore) CreateTask(ctx context.Context, task *store.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*store.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return task, nil
}

func (m *memStore) Update(ctx context.Context, task *store.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) SetCompletedForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return store.ErrNotFound
	}
	task.Completed = true
	return nil
}

func (m *memStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) ListForOwner(ctx context.Context, ownerID uuid.UUID, completed bool) ([]*store.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tasks []*store.Task
	for _, task := range m.tasks {
		if task.OwnerID == ownerID && task.Completed == completed {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *memStore) Close() error { return nil }

type testAPI struct {
	server *httptest.Server
	store  *memStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.AppConfig{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Auth.TokenSecret = "router-test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.LoginRatePerSecond = 1000
	cfg.Auth.LoginBurst = 1000
	cfg.Metrics.Enabled = false

	logger := zap.NewNop()
	st := newMemStore()
	codec := auth.NewTokenCodec(cfg.Auth.TokenSecret)
	hasher := auth.NewPasswordHasherWithCost(cfg.Auth.BcryptCost)
	service := auth.NewService(st, hasher, codec, logger)
	engine := core.NewEngine(st, logger)

	router := NewRouter(service, codec, st, engine, cfg, logger)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{server: server, store: st}
}

// do issues a JSON request and decodes the JSON response into out (when
// out is non-nil and a body came back)
func (a *testAPI) do(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		payload = &bytes.Buffer{}
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, payload)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func (a *testAPI) registerAndLogin(t *testing.T, login, password string) string {
	t.Helper()

	credentials := map[string]string{"login": login, "password": password}
	if code := a.do(t, http.MethodPost, "/auth/register", "", credentials, nil); code != http.StatusCreated {
		t.Fatalf("register returned %d", code)
	}

	var loginResp struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if code := a.do(t, http.MethodPost, "/auth/login", "", credentials, &loginResp); code != http.StatusOK {
		t.Fatalf("login returned %d", code)
	}
	if loginResp.TokenType != "bearer" {
		t.Errorf("token_type = %q, want %q", loginResp.TokenType, "bearer")
	}
	if loginResp.ExpiresIn != 7200 {
		t.Errorf("expires_in = %d, want 7200", loginResp.ExpiresIn)
	}
	if loginResp.AccessToken == "" {
		t.Fatal("login returned an empty token")
	}
	return loginResp.AccessToken
}

func taskBody(title string) map[string]interface{} {
	due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	return map[string]interface{}{
		"title":       title,
		"description": "test task",
		"due_date":    due,
	}
}

func TestRegisterLoginAndTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "s3cret")

	// Create
	var created struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Completed bool      `json:"completed"`
	}
	if code := api.do(t, http.MethodPost, "/tasks", token, taskBody("buy milk"), &created); code != http.StatusCreated {
		t.Fatalf("create returned %d", code)
	}
	if created.Title != "buy milk" || created.Completed {
		t.Errorf("unexpected created task: %+v", created)
	}

	// Read back
	var fetched struct {
		ID    uuid.UUID `json:"id"`
		Title string    `json:"title"`
	}
	if code := api.do(t, http.MethodGet, "/tasks/"+created.ID.String(), token, nil, &fetched); code != http.StatusOK {
		t.Fatalf("get returned %d", code)
	}
	if fetched.ID != created.ID {
		t.Errorf("fetched id %v, want %v", fetched.ID, created.ID)
	}

	// Update
	var updated struct {
		Title string `json:"title"`
	}
	if code := api.do(t, http.MethodPut, "/tasks/"+created.ID.String(), token, taskBody("buy oat milk"), &updated); code != http.StatusOK {
		t.Fatalf("update returned %d", code)
	}
	if updated.Title != "buy oat milk" {
		t.Errorf("title after update = %q", updated.Title)
	}

	// Uncompleted list contains the task
	var list []struct {
		ID uuid.UUID `json:"id"`
	}
	if code := api.do(t, http.MethodGet, "/tasks", token, nil, &list); code != http.StatusOK {
		t.Fatalf("list returned %d", code)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Complete and move to the completed list
	if code := api.do(t, http.MethodPatch, "/tasks/completed/"+created.ID.String(), token, nil, nil); code != http.StatusNoContent {
		t.Fatalf("complete returned %d", code)
	}
	if code := api.do(t, http.MethodGet, "/tasks", token, nil, nil); code != http.StatusNotFound {
		t.Errorf("uncompleted list after completion returned %d, want 404", code)
	}
	var completedList []struct {
		ID        uuid.UUID `json:"id"`
		Completed bool      `json:"completed"`
	}
	if code := api.do(t, http.MethodGet, "/tasks/completed", token, nil, &completedList); code != http.StatusOK {
		t.Fatalf("completed list returned %d", code)
	}
	if len(completedList) != 1 || !completedList[0].Completed {
		t.Fatalf("unexpected completed list: %+v", completedList)
	}

	// Delete
	if code := api.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), token, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete returned %d", code)
	}
	if code := api.do(t, http.MethodGet, "/tasks/"+created.ID.String(), token, nil, nil); code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", code)
	}
}

func TestAnonymousTaskAccessIsForbidden(t *testing.T) {
	api := newTestAPI(t)

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		Status     string `json:"status"`
		Message    string `json:"errorMessage"`
	}
	code := api.do(t, http.MethodGet, "/tasks", "", nil, &envelope)
	if code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", code)
	}
	if envelope.Status != "FORBIDDEN" || envelope.Message != "Access denied." {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
}

func TestInvalidTokenIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"errorMessage"`
	}
	code := api.do(t, http.MethodGet, "/tasks", "not.a.token", nil, &envelope)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
	if envelope.Message != "Invalid token." {
		t.Errorf("message = %q, want %q", envelope.Message, "Invalid token.")
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	api := newTestAPI(t)
	api.registerAndLogin(t, "alice", "s3cret")

	var unknown, wrongPass struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"errorMessage"`
	}
	codeUnknown := api.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"login": "nobody", "password": "s3cret"}, &unknown)
	codeWrong := api.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"login": "alice", "password": "wrong"}, &wrongPass)

	if codeUnknown != http.StatusUnauthorized || codeWrong != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", codeUnknown, codeWrong)
	}
	if unknown.Message != wrongPass.Message {
		t.Errorf("failure messages differ: %q vs %q", unknown.Message, wrongPass.Message)
	}
	if unknown.Message != "Invalid login or password." {
		t.Errorf("message = %q, want %q", unknown.Message, "Invalid login or password.")
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	api := newTestAPI(t)
	api.registerAndLogin(t, "alice", "s3cret")

	var envelope struct {
		Message string `json:"errorMessage"`
	}
	code := api.do(t, http.MethodPost, "/auth/register", "",
		map[string]string{"login": "alice", "password": "another"}, &envelope)
	if code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", code)
	}
	if envelope.Message != "User already exists." {
		t.Errorf("message = %q, want %q", envelope.Message, "User already exists.")
	}
}

func TestRegistrationValidation(t *testing.T) {
	api := newTestAPI(t)

	var envelope struct {
		StatusCode int               `json:"statusCode"`
		Errors     map[string]string `json:"errors"`
	}
	code := api.do(t, http.MethodPost, "/auth/register", "",
		map[string]string{"login": "  ", "password": ""}, &envelope)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if len(envelope.Errors) != 2 {
		t.Fatalf("got %d field errors, want 2: %+v", len(envelope.Errors), envelope.Errors)
	}
	for _, field := range []string{"login", "password"} {
		if _, ok := envelope.Errors[field]; !ok {
			t.Errorf("missing field error for %q", field)
		}
	}
}

func TestTaskValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "s3cret")

	var envelope struct {
		Errors map[string]string `json:"errors"`
	}
	code := api.do(t, http.MethodPost, "/tasks", token,
		map[string]interface{}{"title": "", "description": "x"}, &envelope)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if _, ok := envelope.Errors["title"]; !ok {
		t.Error("missing field error for title")
	}
	if _, ok := envelope.Errors["due_date"]; !ok {
		t.Error("missing field error for due_date")
	}
}

func TestMalformedTaskID(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "alice", "s3cret")

	var envelope struct {
		Errors map[string]string `json:"errors"`
	}
	code := api.do(t, http.MethodGet, "/tasks/not-a-uuid", token, nil, &envelope)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if _, ok := envelope.Errors["taskId"]; !ok {
		t.Error("missing field error for taskId")
	}
}

func TestOwnershipIsOpaque(t *testing.T) {
	// A task addressed by id that belongs to another user answers exactly
	// like a task that does not exist.
	api := newTestAPI(t)
	aliceToken := api.registerAndLogin(t, "alice", "s3cret")
	bobToken := api.registerAndLogin(t, "bob", "s3cret")

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if code := api.do(t, http.MethodPost, "/tasks", aliceToken, taskBody("private"), &created); code != http.StatusCreated {
		t.Fatalf("create returned %d", code)
	}

	var foreign, missing struct {
		StatusCode int    `json:"statusCode"`
		Status     string `json:"status"`
		Message    string `json:"errorMessage"`
	}
	codeForeign := api.do(t, http.MethodGet, "/tasks/"+created.ID.String(), bobToken, nil, &foreign)
	codeMissing := api.do(t, http.MethodGet, "/tasks/"+uuid.NewString(), bobToken, nil, &missing)

	if codeForeign != http.StatusNotFound || codeMissing != http.StatusNotFound {
		t.Fatalf("statuses = %d, %d, want 404, 404", codeForeign, codeMissing)
	}
	if foreign.Message != missing.Message || foreign.Status != missing.Status {
		t.Errorf("foreign and missing responses differ: %+v vs %+v", foreign, missing)
	}

	// Mutations are equally opaque
	for _, tc := range []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPut, "/tasks/" + created.ID.String(), taskBody("stolen")},
		{http.MethodPatch, "/tasks/completed/" + created.ID.String(), nil},
		{http.MethodDelete, "/tasks/" + created.ID.String(), nil},
	} {
		if code := api.do(t, tc.method, tc.path, bobToken, tc.body, nil); code != http.StatusNotFound {
			t.Errorf("%s %s returned %d, want 404", tc.method, tc.path, code)
		}
	}

	// Alice still owns an intact task
	if code := api.do(t, http.MethodGet, "/tasks/"+created.ID.String(), aliceToken, nil, nil); code != http.StatusOK {
		t.Errorf("owner lost access to the task: %d", code)
	}
}

func TestAdminRegistrationGate(t *testing.T) {
	api := newTestAPI(t)
	userToken := api.registerAndLogin(t, "alice", "s3cret")

	newAdmin := map[string]string{"login": "root2", "password": "s3cret"}

	// Anonymous and plain users are rejected before the handler runs
	if code := api.do(t, http.MethodPost, "/admin/register", "", newAdmin, nil); code != http.StatusForbidden {
		t.Errorf("anonymous admin registration returned %d, want 403", code)
	}
	if code := api.do(t, http.MethodPost, "/admin/register", userToken, newAdmin, nil); code != http.StatusForbidden {
		t.Errorf("user admin registration returned %d, want 403", code)
	}
	if _, err := api.store.GetByLogin(context.Background(), "root2"); err == nil {
		t.Fatal("rejected registration reached the store")
	}

	// Seed an admin directly and let it mint another admin
	hash, err := auth.NewPasswordHasherWithCost(bcrypt.MinCost).Hash("s3cret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := api.store.CreateUser(context.Background(), &store.User{
		ID:           uuid.New(),
		Login:        "root",
		PasswordHash: hash,
		Role:         string(auth.RoleAdmin),
	}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if code := api.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"login": "root", "password": "s3cret"}, &loginResp); code != http.StatusOK {
		t.Fatalf("admin login returned %d", code)
	}

	if code := api.do(t, http.MethodPost, "/admin/register", loginResp.AccessToken, newAdmin, nil); code != http.StatusCreated {
		t.Fatalf("admin registration returned %d, want 201", code)
	}
	created, err := api.store.GetByLogin(context.Background(), "root2")
	if err != nil {
		t.Fatalf("created admin not in store: %v", err)
	}
	if created.Role != string(auth.RoleAdmin) {
		t.Errorf("created role = %q, want ADMIN", created.Role)
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.server.Client().Get(api.server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.server.Client().Get(api.server.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestMalformedJSONBody(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodPost, api.server.URL+"/auth/login",
		bytes.NewBufferString(`{"login": `))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var envelope struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := envelope.Errors["body"]; !ok {
		t.Errorf("missing body field error: %+v", envelope.Errors)
	}
}

func TestLoginRateLimit(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Auth.TokenSecret = "router-test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.LoginRatePerSecond = 0.001
	cfg.Auth.LoginBurst = 2

	logger := zap.NewNop()
	st := newMemStore()
	codec := auth.NewTokenCodec(cfg.Auth.TokenSecret)
	hasher := auth.NewPasswordHasherWithCost(cfg.Auth.BcryptCost)
	service := auth.NewService(st, hasher, codec, logger)
	engine := core.NewEngine(st, logger)

	server := httptest.NewServer(NewRouter(service, codec, st, engine, cfg, logger))
	defer server.Close()

	body := func() *bytes.Buffer {
		return bytes.NewBufferString(`{"login":"alice","password":"s3cret"}`)
	}

	var last int
	for i := 0; i < 3; i++ {
		resp, err := server.Client().Post(server.URL+"/auth/login", "application/json", body())
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		last = resp.StatusCode
		resp.Body.Close()
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third login returned %d, want 429", last)
	}
}
