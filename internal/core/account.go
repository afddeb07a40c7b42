package core

// User is a registered account. Every ledger row belongs to exactly one user
// and all queries are scoped to the authenticated one.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    int64 // epoch millis
	UpdatedAt    int64
}
