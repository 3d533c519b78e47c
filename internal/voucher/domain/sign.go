package domain

import "fmt"

// LegRole names the two sides of every voucher's postings. The counter leg is
// the cash/bank ledger on financial vouchers and the sales/purchase control
// ledger on goods vouchers.
type LegRole string

const (
	LegParty   LegRole = "party"
	LegCounter LegRole = "counter"
)

type signKey struct {
	voucherType VoucherType
	role        LegRole
}

var signTable = map[signKey]int64{
	{VoucherTypePayment, LegParty}:    1,
	{VoucherTypePayment, LegCounter}:  -1,
	{VoucherTypeReceipt, LegParty}:    -1,
	{VoucherTypeReceipt, LegCounter}:  1,
	{VoucherTypeSales, LegParty}:      -1,
	{VoucherTypeSales, LegCounter}:    1,
	{VoucherTypePurchase, LegParty}:   1,
	{VoucherTypePurchase, LegCounter}: -1,
}

// Sign returns +1 or -1 for the leg of a voucher type.
func Sign(voucherType VoucherType, role LegRole) (int64, error) {
	sign, ok := signTable[signKey{voucherType, role}]
	if !ok {
		return 0, fmt.Errorf("no sign defined for %s/%s", voucherType, role)
	}
	return sign, nil
}

// LegRoles lists roles in posting order.
func LegRoles() []LegRole {
	return []LegRole{LegParty, LegCounter}
}

// RoleForIndex maps a stored order_index back to its leg.
func RoleForIndex(index int) LegRole {
	if index == 0 {
		return LegParty
	}
	return LegCounter
}
