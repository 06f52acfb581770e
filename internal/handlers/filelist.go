package handlers

import "github.com/DaCodeChick/rhxd/internal/protocol"

// handleGetFileNameList implements GetFileNameList (200): spec.md §6 lists
// 200 as a stub in the core's implemented set, with the full file-transfer
// listing reserved. It replies with an empty field list.
func handleGetFileNameList(ctx Context, tx protocol.Transaction) (protocol.Transaction, bool) {
	return protocol.NewBuilder().Reply(tx.ID, tx.Kind, protocol.ErrOk), true
}
