package db

import (
	"path/filepath"
	"testing"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	s, err := OpenSQLiteStore(path, wire.AccessReadChat, wire.AccessDeleteUser)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSQLiteStoreSeedsDefaults(t *testing.T) {
	s := openTestStore(t)

	guest, err := s.Lookup("guest")
	if err != nil {
		t.Fatalf("Lookup(guest): %v", err)
	}
	if guest.Access != wire.AccessReadChat {
		t.Errorf("guest access = %v, want %v", guest.Access, wire.AccessReadChat)
	}

	admin, err := s.Lookup("ADMIN")
	if err != nil {
		t.Fatalf("Lookup is expected to be case-insensitive: %v", err)
	}
	if admin.Login != "admin" {
		t.Errorf("Login = %q, want %q", admin.Login, "admin")
	}
}

func TestCreateAndLookupAccount(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Create("alice", []byte{0x01, 0x02}, "Alice", wire.AccessSendChat)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("Create did not assign an id")
	}

	found, err := s.Lookup("Alice") // case-insensitive
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found.ID != created.ID || found.Access != wire.AccessSendChat {
		t.Errorf("Lookup = %+v, want id=%d access=%v", found, created.ID, wire.AccessSendChat)
	}
}

func TestCreateDuplicateLoginFails(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Create("bob", nil, "Bob", 0); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := s.Create("BOB", nil, "Bob2", 0); err != ErrAccountExists {
		t.Errorf("second Create error = %v, want ErrAccountExists", err)
	}
}

func TestLookupMissingAccount(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Lookup("nobody"); err != ErrAccountNotFound {
		t.Errorf("Lookup error = %v, want ErrAccountNotFound", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Create("carol", []byte("old"), "Carol", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.UpdatePassword(created.ID, []byte("new")); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	found, err := s.Lookup("carol")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if string(found.Password) != "new" {
		t.Errorf("Password = %q, want %q", found.Password, "new")
	}
}

func TestListOrdersByLogin(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Create("zed", nil, "Zed", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	accounts, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) < 3 { // guest, admin, zed
		t.Fatalf("List returned %d accounts, want at least 3", len(accounts))
	}
	for i := 1; i < len(accounts); i++ {
		if accounts[i-1].Login > accounts[i].Login {
			t.Errorf("List not ordered by login: %q before %q", accounts[i-1].Login, accounts[i].Login)
		}
	}
}
