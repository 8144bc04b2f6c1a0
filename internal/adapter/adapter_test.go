package adapter

import (
	"context"
	"testing"

	"ngoledger/internal/infra"
)

func TestOpenMemory(t *testing.T) {
	repos, closeFn, err := Open(context.Background(), &infra.Config{Store: infra.StoreMemory}, *infra.DiscardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	if repos.Users == nil || repos.NGOs == nil || repos.Transactions == nil || repos.Orders == nil {
		t.Fatalf("missing repositories: %+v", repos)
	}
}

func TestOpenRejectsUnknownStore(t *testing.T) {
	if _, _, err := Open(context.Background(), &infra.Config{Store: "redis"}, *infra.DiscardLogger()); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
