package payment

import "github.com/shopspring/decimal"

// paystackEvent is the envelope Paystack posts to the webhook URL
type paystackEvent struct {
	Event string           `json:"event"`
	Data  paystackTxnData  `json:"data"`
}

// paystackTxnData carries the transaction fields this system reads.
// Amount is in the currency's subunit (kobo for NGN).
type paystackTxnData struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}
