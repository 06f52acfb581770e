package db

import (
	"errors"
	"time"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

// ErrAccountNotFound is returned by Lookup when no account matches login.
var ErrAccountNotFound = errors.New("db: account not found")

// ErrAccountExists is returned by Create when login is already taken.
var ErrAccountExists = errors.New("db: account already exists")

// Account is a registered login. Password is stored scrambled (XOR 0xFF),
// not hashed, matching the wire's own scrambling scheme (spec.md's
// Non-goals exclude real password hashing).
type Account struct {
	ID         int64
	Login      string
	Password   []byte
	Name       string
	Access     wire.AccessPrivileges
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// AccountStore looks up and manages registered accounts. Login comparison
// is case-insensitive, matching the original service's COLLATE NOCASE
// lookup.
type AccountStore interface {
	Lookup(login string) (Account, error)
	GetByID(id int64) (Account, error)
	Create(login string, password []byte, name string, access wire.AccessPrivileges) (Account, error)
	UpdatePassword(id int64, password []byte) error
	List() ([]Account, error)
	Close() error
}
