package domain

// ValidateBill checks the bill invariants the engine depends on:
// 0 <= balance <= total_amount, and balance == 0 exactly when the bill is
// paid. Violations come back as DataIntegrityError so callers can report the
// offending record without aborting a batch.
func ValidateBill(bill Bill) error {
	if bill.Balance.IsNegative() {
		return DataIntegrityError{BillID: bill.ID, Field: "balance", Reason: "balance is negative"}
	}
	if bill.Balance.GreaterThan(bill.TotalAmount) {
		return DataIntegrityError{BillID: bill.ID, Field: "balance", Reason: "balance exceeds total amount"}
	}
	if bill.Status == BillStatusPaid && !bill.Balance.IsZero() {
		return DataIntegrityError{BillID: bill.ID, Field: "status", Reason: "paid bill carries a non-zero balance"}
	}
	if bill.Status != BillStatusPaid && bill.Balance.IsZero() && bill.TotalAmount.IsPositive() {
		return DataIntegrityError{BillID: bill.ID, Field: "status", Reason: "zero balance without paid status"}
	}
	return nil
}
