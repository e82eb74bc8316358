package payment

import "github.com/shopspring/decimal"

// flutterwaveEvent is the envelope Flutterwave posts to the webhook URL
type flutterwaveEvent struct {
	Event string              `json:"event"`
	Data  flutterwaveTxnData  `json:"data"`
}

// flutterwaveTxnData carries the transaction fields this system reads
type flutterwaveTxnData struct {
	ID       int64           `json:"id"`
	TxRef    string          `json:"tx_ref"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
