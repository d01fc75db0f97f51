package caseclient

// CredentialStore abstracts the durable client-side storage that holds
// the auth token and display username between runs.
type CredentialStore interface {
	Token() string
	Username() string
	SetCredentials(token, username string)
	Clear()
}

// MemoryCredentials is an in-memory CredentialStore, used directly in
// tests and as the in-process cache over any durable backing.
type MemoryCredentials struct {
	token    string
	username string
}

// NewMemoryCredentials returns an empty credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (m *MemoryCredentials) Token() string    { return m.token }
func (m *MemoryCredentials) Username() string { return m.username }

func (m *MemoryCredentials) SetCredentials(token, username string) {
	m.token = token
	m.username = username
}

func (m *MemoryCredentials) Clear() {
	m.token = ""
	m.username = ""
}
