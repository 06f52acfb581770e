package netsrv

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/protocol"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/wire"
)

type noopAccounts struct{}

func (noopAccounts) Lookup(login string) (db.Account, error) { return db.Account{}, db.ErrAccountNotFound }
func (noopAccounts) Create(login string, password []byte, name string, access wire.AccessPrivileges) (db.Account, error) {
	return db.Account{}, nil
}
func (noopAccounts) GetByID(id int64) (db.Account, error)          { return db.Account{}, db.ErrAccountNotFound }
func (noopAccounts) UpdatePassword(id int64, password []byte) error { return nil }
func (noopAccounts) List() ([]db.Account, error)                    { return nil, nil }
func (noopAccounts) Close() error                                   { return nil }

func testTaskConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowGuest = true
	cfg.IdleTimeoutSecs = 0
	return cfg
}

func TestSessionTaskHandshakeAndGuestLoginFlow(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	registry := session.NewRegistry(10)
	hub := broadcast.NewHub(registry)
	task, err := NewSessionTask(server, registry, hub, noopAccounts{}, testTaskConfig())
	if err != nil {
		t.Fatalf("NewSessionTask: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		task.Run(ctx)
		close(runDone)
	}()

	// Client handshake.
	if _, err := client.Write([]byte("TRTPHOTL\x00\x01\x00\x02")); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	replyBuf := make([]byte, 8)
	if _, err := io.ReadFull(client, replyBuf); err != nil {
		t.Fatalf("read handshake reply: %v", err)
	}
	if string(replyBuf[0:4]) != "TRTP" {
		t.Fatalf("handshake reply magic = %q", replyBuf[0:4])
	}

	// Guest Login.
	loginTx := protocol.Transaction{IsReply: false, Kind: protocol.TranLogin, ID: 1}
	if err := protocol.WriteTransaction(client, loginTx); err != nil {
		t.Fatalf("write login: %v", err)
	}
	loginReply, err := protocol.DecodeTransaction(client)
	if err != nil {
		t.Fatalf("decode login reply: %v", err)
	}
	if loginReply.ErrorCode != protocol.ErrOk {
		t.Fatalf("login reply error = %v", loginReply.ErrorCode)
	}

	// Agreed.
	agreedTx := protocol.Transaction{
		IsReply: false,
		Kind:    protocol.TranAgreed,
		ID:      2,
		Fields:  []protocol.Field{{ID: protocol.FieldUserName, Bytes: []byte("guest1")}},
	}
	if err := protocol.WriteTransaction(client, agreedTx); err != nil {
		t.Fatalf("write agreed: %v", err)
	}
	agreedReply, err := protocol.DecodeTransaction(client)
	if err != nil {
		t.Fatalf("decode agreed reply: %v", err)
	}
	if agreedReply.ErrorCode != protocol.ErrOk {
		t.Fatalf("agreed reply error = %v", agreedReply.ErrorCode)
	}

	if registry.Count() != 1 {
		t.Fatalf("registry count = %d, want 1", registry.Count())
	}

	client.Close()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("SessionTask.Run did not return after client closed")
	}

	if registry.Count() != 0 {
		t.Errorf("registry count after close = %d, want 0", registry.Count())
	}
}

func TestSessionTaskRejectsInvalidHandshake(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	registry := session.NewRegistry(10)
	hub := broadcast.NewHub(registry)
	task, err := NewSessionTask(server, registry, hub, noopAccounts{}, testTaskConfig())
	if err != nil {
		t.Fatalf("NewSessionTask: %v", err)
	}

	runDone := make(chan struct{})
	go func() {
		task.Run(context.Background())
		close(runDone)
	}()

	if _, err := client.Write([]byte("NOPE00000000")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("SessionTask.Run did not close on invalid handshake")
	}
	if registry.Count() != 0 {
		t.Errorf("registry count = %d, want 0 after handshake rejection", registry.Count())
	}
}
