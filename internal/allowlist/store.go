package allowlist

import "time"

// Member is an entry in either the admin or the user set.
type Member struct {
	UserID  int64
	Name    string
	AddedAt time.Time
	AddedBy int64
}

// Store defines the interface for allowlist persistence. Admins hold full
// authorization; users may only approve or deny requests. Membership in the
// admin set implies user-level rights.
type Store interface {
	// AddAdmin adds or updates an admin entry
	AddAdmin(m Member) error

	// RemoveAdmin removes an admin entry
	RemoveAdmin(userID int64) error

	// AddUser adds or updates a user entry
	AddUser(m Member) error

	// RemoveUser removes a user entry
	RemoveUser(userID int64) error

	// ListAdmins returns all admins
	ListAdmins() ([]Member, error)

	// ListUsers returns all users
	ListUsers() ([]Member, error)

	// IsAdmin checks admin membership
	IsAdmin(userID int64) (bool, error)

	// IsUser checks user membership only, ignoring the admin set
	IsUser(userID int64) (bool, error)

	// IsAuthorizedUser reports whether userID may approve or deny requests,
	// true for members of either set
	IsAuthorizedUser(userID int64) (bool, error)

	// Close releases resources
	Close() error
}
