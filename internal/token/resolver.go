package token

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"mintwatch/internal/chain"
	"mintwatch/internal/model"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver loads ERC-20 symbol/decimals and caches them per contract for the
// process lifetime. Token metadata is immutable, so entries are never evicted.
type Resolver struct {
	caller       ContractCaller
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration

	mu    sync.RWMutex
	cache map[common.Address]model.TokenMeta
}

// NewResolver builds a Resolver around a contract caller.
func NewResolver(caller ContractCaller, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		caller:       caller,
		logger:       logger,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		cache:        make(map[common.Address]model.TokenMeta),
	}
}

// Resolve returns cached metadata or fetches symbol and decimals from the
// contract. Each call is retried independently; if either ultimately fails
// the error is returned and nothing is cached, so a later event retries.
func (r *Resolver) Resolve(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	r.mu.RLock()
	meta, ok := r.cache[token]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	symbol, err := r.fetchSymbol(ctx, token)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("symbol %s: %w", token.Hex(), err)
	}

	decimals, err := r.fetchDecimals(ctx, token)
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("decimals %s: %w", token.Hex(), err)
	}

	meta = model.TokenMeta{Address: token.Hex(), Decimals: decimals, Symbol: symbol}

	r.mu.Lock()
	r.cache[token] = meta
	r.mu.Unlock()

	return meta, nil
}

func (r *Resolver) fetchSymbol(ctx context.Context, token common.Address) (string, error) {
	var symbol string
	err := chain.WithRetry(ctx, r.maxRetries, r.retryBackoff, 1.5, func(ctx context.Context) error {
		stringABI, err := erc20ABIStringInstance()
		if err != nil {
			return fmt.Errorf("parse erc20 string abi: %w", err)
		}

		values, err := r.call(ctx, token, stringABI, "symbol")
		if err == nil {
			if s, ok := values[0].(string); ok {
				symbol = s
				return nil
			}
			return fmt.Errorf("unexpected symbol type %T", values[0])
		}

		// Some older tokens return symbol as bytes32.
		bytes32ABI, abiErr := erc20ABIBytes32Instance()
		if abiErr != nil {
			return fmt.Errorf("parse erc20 bytes32 abi: %w", abiErr)
		}
		values, b32Err := r.call(ctx, token, bytes32ABI, "symbol")
		if b32Err != nil {
			r.logger.Warn("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
			return err
		}
		s, ok := bytes32ToString(values[0])
		if !ok {
			return fmt.Errorf("unexpected symbol type %T", values[0])
		}
		symbol = s
		return nil
	})
	return symbol, err
}

func (r *Resolver) fetchDecimals(ctx context.Context, token common.Address) (uint8, error) {
	var decimals uint8
	err := chain.WithRetry(ctx, r.maxRetries, r.retryBackoff, 1.5, func(ctx context.Context) error {
		stringABI, err := erc20ABIStringInstance()
		if err != nil {
			return fmt.Errorf("parse erc20 string abi: %w", err)
		}

		values, err := r.call(ctx, token, stringABI, "decimals")
		if err != nil {
			r.logger.Warn("decimals call failed", zap.String("token", token.Hex()), zap.Error(err))
			return err
		}
		d, err := asUint8(values[0])
		if err != nil {
			return err
		}
		decimals = d
		return nil
	})
	return decimals, err
}

func (r *Resolver) call(ctx context.Context, token common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &token, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
