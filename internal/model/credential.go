package model

// Credential is an API-key identity. Only the argon2id hash of the secret is
// stored; the plaintext secret is returned to the caller exactly once at
// issuance and is never retrievable again.
type Credential struct {
	ID           string // credential UUID
	PasswordHash string // PHC-encoded argon2id hash of the secret
	Active       bool   // inactive credentials never verify
}
