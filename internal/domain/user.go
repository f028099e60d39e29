package domain

// User represents a registered account. Usernames are unique across the
// store; the id is assigned by the store on insert.
type User struct {
	ID       string
	Username string
}
