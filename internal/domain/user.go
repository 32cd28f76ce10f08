package domain

// User represents an account managed by the API.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password"`
	IsAdmin      bool   `db:"isadmin"`
}

// UserUpdate carries the fields of a partial update. Nil fields are left
// unchanged in the store.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.PasswordHash == nil
}
