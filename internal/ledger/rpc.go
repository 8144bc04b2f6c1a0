package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

// Values of the marker self-transfer: 0.001 ether, the minimum transfer gas
// and a 1 gwei gas price.
const (
	markerValueWei = "0x38d7ea4c68000"
	markerGas      = "0x5208"
	markerGasPrice = "0x3b9aca00"
)

// ErrMissingAccount indicates that no sending account was configured.
var ErrMissingAccount = errors.New("ledger: rpc account is required")

// RPCOptions configures an RPCRecorder.
type RPCOptions struct {
	URL            string
	Account        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// RPCRecorder records entries as self-transfers on an Ethereum-compatible dev
// chain whose node holds the sending account unlocked.
type RPCRecorder struct {
	url        string
	account    string
	httpClient *http.Client
	logger     *infra.Logger
	seq        atomic.Int64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcTransaction struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewRPCRecorder constructs a recorder pointed at a JSON-RPC endpoint.
func NewRPCRecorder(opts RPCOptions) (*RPCRecorder, error) {
	account := strings.TrimSpace(opts.Account)
	if account == "" {
		return nil, ErrMissingAccount
	}
	endpoint := strings.TrimSpace(opts.URL)
	if endpoint == "" {
		endpoint = "http://localhost:8545"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &RPCRecorder{url: endpoint, account: account, httpClient: httpClient, logger: logger}, nil
}

// Record sends the marker transaction and returns the chain transaction hash.
func (r *RPCRecorder) Record(ctx context.Context, entry Entry) (string, error) {
	hash, err := r.send(ctx)
	if err != nil {
		r.logger.Error().Err(err).Int64("ngo_id", entry.NGOID).Str("type", string(entry.Type)).Msg("ledger: rpc record failed")
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerFailure, err)
	}
	r.logger.Info().Int64("ngo_id", entry.NGOID).Str("type", string(entry.Type)).Str("hash", hash).Msg("ledger: recorded on chain")
	return hash, nil
}

func (r *RPCRecorder) send(ctx context.Context) (string, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_sendTransaction",
		Params: []any{rpcTransaction{
			From:     r.account,
			To:       r.account,
			Value:    markerValueWei,
			Gas:      markerGas,
			GasPrice: markerGasPrice,
		}},
		ID: r.seq.Add(1),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ledger: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ledger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ledger: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ledger: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ledger: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("ledger: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("ledger: rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if !ValidHash(decoded.Result) {
		return "", fmt.Errorf("ledger: malformed transaction hash %q", decoded.Result)
	}
	return decoded.Result, nil
}
