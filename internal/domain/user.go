package domain

const (
	RoleUser     = "USER"
	RoleEmployee = "EMPLOYE"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}

// Staff reports whether the user may use the back-office.
func (u *User) Staff() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleEmployee)
}

// LogID identifies the user in log entries.
func (u *User) LogID() string { return u.ID }
