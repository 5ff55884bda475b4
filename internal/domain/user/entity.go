package user

// User represents a registered account.
type User struct {
	ID           int64  // ID is the store-internal identifier, never exposed
	Username     string // Username is unique across all users
	Email        string // Email is unique across all users
	PhoneNo      string
	PasswordHash string // PasswordHash is the bcrypt hash of the password
}
