package prediction

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"predictionBot/internal/chain"
	"predictionBot/internal/model"
	"predictionBot/internal/receipt"
	"predictionBot/internal/units"
)

const (
	defaultReceiptTimeout = 60 * time.Second
	fallbackGasLimit      = uint64(250_000)
)

// Backend is the part of the chain client the contract needs.
type Backend interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config holds contract client settings.
type Config struct {
	Address        common.Address
	PrivateKeyHex  string
	ChainID        *big.Int
	ReceiptTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Contract submits bets and claims to the prediction contract.
type Contract struct {
	backend Backend
	abi     abi.ABI
	cfg     Config
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	logger  *zap.Logger
}

// NewContract builds a Contract. When cfg.ChainID is nil it is read from the node.
func NewContract(ctx context.Context, backend Backend, cfg Config, logger *zap.Logger) (*Contract, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		return nil, fmt.Errorf("chain backend is nil")
	}
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("contract address is required")
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = defaultReceiptTimeout
	}

	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse prediction abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	chainID := cfg.ChainID
	if chainID == nil || chainID.Sign() == 0 {
		chainID, err = backend.GetChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("get chain id: %w", err)
		}
	}

	return &Contract{
		backend: backend,
		abi:     parsed,
		cfg:     cfg,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		logger:  logger,
	}, nil
}

// From returns the wallet address used for bets and claims.
func (c *Contract) From() common.Address {
	return c.from
}

// PlaceBet sends betBull (up) or betBear (down) for epoch with amount in
// native token units attached as value.
func (c *Contract) PlaceBet(ctx context.Context, dir model.Direction, amount decimal.Decimal, epoch model.Epoch) (model.Receipt, error) {
	method, err := betMethod(dir)
	if err != nil {
		return model.Receipt{}, err
	}
	data, err := c.abi.Pack(method, epoch.Big())
	if err != nil {
		return model.Receipt{}, fmt.Errorf("pack %s: %w", method, err)
	}
	value := units.ParseEther(amount)
	if value.Sign() <= 0 {
		return model.Receipt{}, fmt.Errorf("bet amount must be positive, got %s", amount)
	}
	minBet, err := c.MinBetAmount(ctx)
	if err != nil {
		return model.Receipt{}, err
	}
	if amount.LessThan(minBet) {
		return model.Receipt{}, fmt.Errorf("bet amount %s below contract minimum %s", amount, minBet)
	}

	c.logger.Info("submit bet",
		zap.String("method", method),
		zap.String("round", epoch.String()),
		zap.String("amount", amount.String()),
	)
	return c.submit(ctx, method, data, value)
}

// IsClaimable reports whether the wallet can claim epoch.
func (c *Contract) IsClaimable(ctx context.Context, epoch model.Epoch) (bool, error) {
	values, err := c.call(ctx, "claimable", epoch.Big(), c.from)
	if err != nil {
		return false, err
	}
	claimable, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("claimable unexpected type %T", values[0])
	}
	return claimable, nil
}

// Claim sends a claim transaction for epochs.
func (c *Contract) Claim(ctx context.Context, epochs []model.Epoch) (model.ClaimOutcome, error) {
	if len(epochs) == 0 {
		return model.ClaimOutcome{}, fmt.Errorf("no epochs to claim")
	}
	list := make([]*big.Int, 0, len(epochs))
	rounds := make([]string, 0, len(epochs))
	for _, e := range epochs {
		list = append(list, e.Big())
		rounds = append(rounds, e.String())
	}
	data, err := c.abi.Pack("claim", list)
	if err != nil {
		return model.ClaimOutcome{}, fmt.Errorf("pack claim: %w", err)
	}

	c.logger.Info("submit claim", zap.Strings("rounds", rounds))
	rcpt, err := c.submit(ctx, "claim", data, big.NewInt(0))
	if err != nil {
		return model.ClaimOutcome{}, err
	}
	return receipt.Claim(rcpt), nil
}

// CurrentEpoch returns the contract's current round.
func (c *Contract) CurrentEpoch(ctx context.Context) (model.Epoch, error) {
	values, err := c.call(ctx, "currentEpoch")
	if err != nil {
		return model.Epoch{}, err
	}
	n, ok := values[0].(*big.Int)
	if !ok {
		return model.Epoch{}, fmt.Errorf("currentEpoch unexpected type %T", values[0])
	}
	return model.EpochFromBig(n), nil
}

// MinBetAmount returns the contract minimum bet in native token units.
func (c *Contract) MinBetAmount(ctx context.Context) (decimal.Decimal, error) {
	values, err := c.call(ctx, "minBetAmount")
	if err != nil {
		return decimal.Zero, err
	}
	n, ok := values[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("minBetAmount unexpected type %T", values[0])
	}
	return units.FormatEther(n), nil
}

// call runs a read-only method with retries.
func (c *Contract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := c.cfg.Address
	msg := ethereum.CallMsg{From: c.from, To: &to, Data: data}

	var resp []byte
	err = chain.WithRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		resp, err = c.backend.CallContract(ctx, msg, nil)
		if err != nil {
			c.logger.Warn("contract call failed", zap.String("method", method), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

// submit signs, sends and waits for a transaction.
//
// Failures to reach the node before signing are returned as errors. Once
// the transaction is being submitted, failures become an exception receipt.
func (c *Contract) submit(ctx context.Context, method string, data []byte, value *big.Int) (model.Receipt, error) {
	nonce, err := c.backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("%s: nonce: %w", method, err)
	}
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("%s: gas price: %w", method, err)
	}

	to := c.cfg.Address
	gasLimit, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     c.from,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		// estimation runs the call, so a failure here is an expected revert
		c.logger.Warn("gas estimate failed", zap.String("method", method), zap.Error(err))
		return model.ExceptionReceipt("", fmt.Errorf("estimate gas: %w", err)), nil
	}
	gasLimit = gasLimit * 12 / 10
	if gasLimit == 0 {
		gasLimit = fallbackGasLimit
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.key)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("%s: sign tx: %w", method, err)
	}
	txHash := signed.Hash()

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		c.logger.Warn("send transaction failed", zap.String("method", method), zap.String("tx", txHash.Hex()), zap.Error(err))
		return model.ExceptionReceipt(txHash.Hex(), fmt.Errorf("send tx: %w", err)), nil
	}
	c.logger.Info("transaction sent", zap.String("method", method), zap.String("tx", txHash.Hex()))

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	mined, err := c.backend.WaitForReceipt(waitCtx, txHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Receipt{}, fmt.Errorf("%s: wait receipt: %w", method, ctxErr)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("receipt lookup failed", zap.String("tx", txHash.Hex()), zap.Error(err))
		}
		return model.ExceptionReceipt(txHash.Hex(), fmt.Errorf("wait receipt: %w", err)), nil
	}

	return fromReceipt(mined, gasPrice), nil
}

func fromReceipt(r *types.Receipt, fallbackPrice *big.Int) model.Receipt {
	price := r.EffectiveGasPrice
	if price == nil {
		price = fallbackPrice
	}
	return model.Receipt{
		Status:            r.Status,
		GasUsed:           new(big.Int).SetUint64(r.GasUsed),
		EffectiveGasPrice: new(big.Int).Set(price),
		TxHash:            r.TxHash.Hex(),
	}
}

func betMethod(dir model.Direction) (string, error) {
	switch dir {
	case model.DirectionUp:
		return "betBull", nil
	case model.DirectionDown:
		return "betBear", nil
	default:
		return "", fmt.Errorf("invalid direction: %q", dir)
	}
}
