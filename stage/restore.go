package stage

// RestorePoint captures the sizes of a building block's accumulating
// slices at the moment a transaction push began, so a recoverable failure
// can roll back exactly the mutation that transaction made without
// disturbing anything pushed before it (spec §4.4, glossary "block
// restore point").
type RestorePoint struct {
	pendingTransactions int
	actionDigests       int
	receiptDigests      int
}

// CaptureRestorePoint records the current sizes of b's accumulating state.
func CaptureRestorePoint(b *BuildingBlock) RestorePoint {
	return RestorePoint{
		pendingTransactions: len(b.PendingTransactions),
		actionDigests:       len(b.ActionDigests),
		receiptDigests:      len(b.ReceiptDigests),
	}
}

// Rollback truncates b's accumulating state back to the sizes captured at
// rp, discarding everything appended since.
func (rp RestorePoint) Rollback(b *BuildingBlock) {
	b.PendingTransactions = b.PendingTransactions[:rp.pendingTransactions]
	b.ActionDigests = b.ActionDigests[:rp.actionDigests]
	b.ReceiptDigests = b.ReceiptDigests[:rp.receiptDigests]
}
