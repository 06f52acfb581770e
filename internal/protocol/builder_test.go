package protocol

import "testing"

func TestBuilderReply(t *testing.T) {
	tx := NewBuilder().
		Uint16(FieldVersion, 0x00C5).
		Uint32(FieldBannerID, 0).
		String(FieldServerName, "rhxd Test Server").
		Reply(1, TranLogin, ErrOk)

	if !tx.IsReply || tx.ID != 1 || tx.Kind != TranLogin || tx.ErrorCode != ErrOk {
		t.Fatalf("unexpected transaction shape: %+v", tx)
	}
	if len(tx.Fields) != 3 {
		t.Fatalf("Fields = %d, want 3", len(tx.Fields))
	}
	if f, ok := First(tx.Fields, FieldServerName); !ok || string(f.Bytes) != "rhxd Test Server" {
		t.Errorf("ServerName field = %+v, ok=%v", f, ok)
	}
}

func TestBuilderNotification(t *testing.T) {
	tx := NewBuilder().String(FieldUserName, "A").Notification(TranNotifyChangeUser)
	if tx.IsReply {
		t.Errorf("notification should not be a reply")
	}
	if tx.Kind != TranNotifyChangeUser {
		t.Errorf("Kind = %v, want NotifyChangeUser", tx.Kind)
	}
}

func TestErrorReplyIncludesMessage(t *testing.T) {
	tx := ErrorReply(9, TranGetClientInfoText, ErrPermissionDenied, "no permission")
	f, ok := First(tx.Fields, FieldErrorString)
	if !ok || string(f.Bytes) != "no permission" {
		t.Errorf("ErrorString field = %+v, ok=%v", f, ok)
	}
	if tx.ErrorCode != ErrPermissionDenied {
		t.Errorf("ErrorCode = %v, want PermissionDenied", tx.ErrorCode)
	}
}

func TestErrorReplyOmitsEmptyMessage(t *testing.T) {
	tx := ErrorReply(9, TranLogin, ErrOk, "")
	if len(tx.Fields) != 0 {
		t.Errorf("expected no fields for empty message, got %+v", tx.Fields)
	}
}

// TestErrorReplyCarriesRequestKind guards against regressing to a fixed
// wire kind on error replies: the client keys pending requests by the
// transaction type it sent, so the reply's Kind must echo tx.Kind.
func TestErrorReplyCarriesRequestKind(t *testing.T) {
	tx := ErrorReply(42, TranSendChat, ErrNotImplemented, "")
	if tx.Kind != TranSendChat {
		t.Errorf("Kind = %v, want SendChat", tx.Kind)
	}
}
