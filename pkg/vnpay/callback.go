package vnpay

import "net/url"

// SuccessCode is the sentinel VNPay places in both callback code fields
// when a transaction settled.
const SuccessCode = "00"

const (
	paramResponseCode      = "vnp_ResponseCode"
	paramTransactionStatus = "vnp_TransactionStatus"
	paramTxnRef            = "vnp_TxnRef"
)

// Callback is the untrusted query-parameter payload the gateway appends
// when redirecting the shopper back to the return URL.
type Callback struct {
	ResponseCode      string
	TransactionStatus string
	TxnRef            string
}

// ParseCallback extracts the gateway fields from redirect query params.
func ParseCallback(values url.Values) Callback {
	return Callback{
		ResponseCode:      values.Get(paramResponseCode),
		TransactionStatus: values.Get(paramTransactionStatus),
		TxnRef:            values.Get(paramTxnRef),
	}
}

// Succeeded reports whether both code fields carry the success sentinel.
func (c Callback) Succeeded() bool {
	return c.ResponseCode == SuccessCode && c.TransactionStatus == SuccessCode
}
