package caseclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// fakeBackend is a minimal in-memory stand-in for the cases API. It
// records requests so tests can assert on methods and auth headers.
type fakeBackend struct {
	t               *testing.T
	nextID          int64
	cases           map[int64]map[string]interface{}
	users           map[string]bool
	requests        []string
	vivaRateLimited bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		t:      t,
		nextID: 1,
		cases:  map[int64]map[string]interface{}{},
		users:  map[string]bool{},
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		var in map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		if f.users[in["username"]] {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "Username already exists."})
			return
		}
		f.users[in["username"]] = true
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully."})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		var in map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials."})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful.", "token": "tok-" + in["username"]})
	})
	mux.HandleFunc("/api/cases", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodPost:
			id := f.nextID
			f.nextID++
			var in map[string]interface{}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
			f.cases[id] = in
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "case_title": in["case_title"]})
		case http.MethodGet:
			json.NewEncoder(w).Encode([]interface{}{})
		}
	})
	mux.HandleFunc("/api/viva/chat", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		if f.vivaRateLimited {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"message": "AI service rate limit exceeded."})
			return
		}
		var in struct {
			ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		require.NotEmpty(f.t, in.ConversationHistory)
		json.NewEncoder(w).Encode(map[string]string{"response": "Describe the deformity."})
	})
	mux.HandleFunc("/api/cases/", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid or expired token."})
			return
		}
		id, err := strconv.ParseInt(path.Base(r.URL.Path), 10, 64)
		if err != nil || f.cases[id] == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Case not found or access denied."})
			return
		}
		switch r.Method {
		case http.MethodPut:
			var in map[string]interface{}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
			f.cases[id] = in
			json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "case_title": in["case_title"]})
		case http.MethodDelete:
			delete(f.cases, id)
			json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"id": id, "case_title": f.cases[id]["case_title"], "case_data": f.cases[id]["case_data"]})
		}
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeBackend) {
	backend := newFakeBackend(t)
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, NewMemoryCredentials()), backend
}

func doc(name string) domain.FormDocument {
	d := domain.NewFormDocument()
	d.Fields["patient-name"] = name
	return d
}

func TestAuthedCallsRequireLogin(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Register(context.Background(), "alice", "secret1", "", "", "", ""))

	err := client.Register(context.Background(), "alice", "secret1", "", "", "", "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "Username already exists.")
}

func TestLoginStoresToken(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	_, err := client.List(context.Background())
	assert.NoError(t, err)
}

func TestLoginFailureLeavesCredentialsClear(t *testing.T) {
	client, _ := newTestClient(t)
	err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "Invalid credentials.")

	_, err = client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	client, backend := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	sum, err := client.Save(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.ID)
	assert.Equal(t, int64(1), client.CurrentID())

	// A second save of the loaded case must be an update, not a create.
	_, err = client.Save(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)
	assert.Contains(t, backend.requests, "PUT /api/cases/1")
	assert.Len(t, backend.cases, 1)
}

func TestDeleteCurrentCaseClearsMemory(t *testing.T) {
	client, backend := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	sum, err := client.Create(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)
	require.NoError(t, client.Delete(context.Background(), sum.ID))
	assert.Zero(t, client.CurrentID())

	// The next save makes a fresh record.
	_, err = client.Save(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)
	creates := 0
	for _, req := range backend.requests {
		if req == "POST /api/cases" {
			creates++
		}
	}
	assert.Equal(t, 2, creates)
}

func TestDeleteOtherCaseKeepsMemory(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	first, err := client.Create(context.Background(), "first", doc("A"))
	require.NoError(t, err)
	second, err := client.Create(context.Background(), "second", doc("B"))
	require.NoError(t, err)
	require.Equal(t, second.ID, client.CurrentID())

	require.NoError(t, client.Delete(context.Background(), first.ID))
	assert.Equal(t, second.ID, client.CurrentID())
}

func TestGetRemembersCase(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	sum, err := client.Create(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)
	client.SetCurrent(0)

	record, err := client.Get(context.Background(), sum.ID)
	require.NoError(t, err)
	assert.Equal(t, sum.ID, record.ID)
	assert.Equal(t, sum.ID, client.CurrentID())
}

func TestGetMissingCaseIsNotFound(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))

	_, err := client.Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Case not found or access denied.")
}

func TestChatReturnsReplyText(t *testing.T) {
	client, _ := newTestClient(t)

	// No credential is needed for the chat endpoint.
	reply, err := client.Chat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "Ready."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Describe the deformity.", reply)
}

func TestChatSurfacesRateLimit(t *testing.T) {
	client, backend := newTestClient(t)
	backend.vivaRateLimited = true

	_, err := client.Chat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "Ready."},
	})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Contains(t, err.Error(), "AI service rate limit exceeded.")
}

func TestLogoutClearsTokenAndCurrentCase(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background(), "alice", "secret1"))
	_, err := client.Create(context.Background(), "Jane Doe", doc("Jane Doe"))
	require.NoError(t, err)

	client.Logout()
	assert.Zero(t, client.CurrentID())
	_, err = client.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
