package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ngoledger/internal/domain"
)

type staticSource struct {
	hash  string
	err   error
	calls int
}

func (s *staticSource) LatestHash(context.Context) (string, error) {
	s.calls++
	return s.hash, s.err
}

func TestHashChainLinksFromStoredHead(t *testing.T) {
	head := "0x" + strings.Repeat("ab", 32)
	src := &staticSource{hash: head}
	chain := NewHashChain(src, nil)
	chain.nonce = func() string { return "n" }
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := Entry{NGOID: 7, Type: domain.TransactionDonation, AmountMinor: 50000, Reference: "order_1", At: at}

	first, err := chain.Record(context.Background(), entry)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if want := Link(head, entry, at, "n"); first != want {
		t.Fatalf("first hash = %s, want %s", first, want)
	}
	if !ValidHash(first) {
		t.Fatalf("hash %q is not 0x + 64 hex", first)
	}
	src.hash = first
	second, _ := chain.Record(context.Background(), entry)
	if second == first {
		t.Fatalf("chained hashes must differ")
	}
	if want := Link(first, entry, at, "n"); second != want {
		t.Fatalf("second hash = %s, want %s", second, want)
	}
	if src.calls != 2 {
		t.Fatalf("head loaded %d times, want 2", src.calls)
	}
	if chain.Head() != second {
		t.Fatalf("Head = %s, want %s", chain.Head(), second)
	}
}

func TestHashChainWithoutSourceKeepsHead(t *testing.T) {
	chain := NewHashChain(nil, nil)
	entry := Entry{NGOID: 1, Type: domain.TransactionExpense, AmountMinor: 700, At: time.Unix(0, 0)}
	first, _ := chain.Record(context.Background(), entry)
	second, _ := chain.Record(context.Background(), entry)
	if first == second || chain.Head() != second {
		t.Fatalf("head did not advance: %s %s %s", first, second, chain.Head())
	}
}

func TestHashChainSeedFailure(t *testing.T) {
	chain := NewHashChain(&staticSource{err: errors.New("db down")}, nil)
	_, err := chain.Record(context.Background(), Entry{NGOID: 1, Type: domain.TransactionExpense, AmountMinor: 1})
	if !errors.Is(err, domain.ErrLedgerFailure) {
		t.Fatalf("err = %v, want ErrLedgerFailure", err)
	}
}

func TestRPCRecorderSendsSelfTransfer(t *testing.T) {
	txHash := "0x" + strings.Repeat("1f", 32)
	var captured rpcRequest
	var params []rpcTransaction
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			rpcRequest
			Params []rpcTransaction `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode: %v", err)
		}
		captured = raw.rpcRequest
		params = raw.Params
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"` + txHash + `"}`))
	}))
	defer srv.Close()

	rec, err := NewRPCRecorder(RPCOptions{URL: srv.URL, Account: "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"})
	if err != nil {
		t.Fatalf("NewRPCRecorder: %v", err)
	}
	got, err := rec.Record(context.Background(), Entry{NGOID: 1, Type: domain.TransactionDonation, AmountMinor: 100})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got != txHash {
		t.Fatalf("hash = %s, want %s", got, txHash)
	}
	if captured.Method != "eth_sendTransaction" || captured.JSONRPC != "2.0" {
		t.Fatalf("unexpected request %+v", captured)
	}
	if len(params) != 1 || params[0].From != params[0].To || params[0].Value != markerValueWei || params[0].Gas != markerGas {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestRPCRecorderFailures(t *testing.T) {
	cases := map[string]string{
		"rpc error": `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"sender account not recognized"}}`,
		"bad hash":  `{"jsonrpc":"2.0","id":1,"result":"0x12"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			rec, _ := NewRPCRecorder(RPCOptions{URL: srv.URL, Account: "0xabc"})
			if _, err := rec.Record(context.Background(), Entry{}); !errors.Is(err, domain.ErrLedgerFailure) {
				t.Fatalf("err = %v, want ErrLedgerFailure", err)
			}
		})
	}
}

func TestNewRPCRecorderRequiresAccount(t *testing.T) {
	if _, err := NewRPCRecorder(RPCOptions{URL: "http://localhost:8545"}); !errors.Is(err, ErrMissingAccount) {
		t.Fatalf("err = %v, want ErrMissingAccount", err)
	}
}
