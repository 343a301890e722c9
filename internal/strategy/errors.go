package strategy

import "errors"

var (
	ErrContract = errors.New("contract")
	ErrHistory  = errors.New("history")
	ErrLedger   = errors.New("ledger")
)
