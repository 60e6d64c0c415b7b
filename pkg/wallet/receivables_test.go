package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/nanokit/nanokit/pkg/ledger"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

func TestListReceivables_ThresholdFilter(t *testing.T) {
	lg := &fakeLedger{
		receivables: []ledger.ReceivableEntry{
			{BlockHash: types.Hash{0x01}, Amount: raw.FromUint64(10)},
			{BlockHash: types.Hash{0x02}, Amount: raw.FromUint64(100)},
			{BlockHash: types.Hash{0x03}, Amount: raw.FromUint64(1)},
		},
	}
	w := newTestWallet(t, lg)

	entries, err := w.ListReceivables(context.Background(), raw.FromUint64(10))
	if err != nil {
		t.Fatalf("ListReceivables: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Largest first.
	if entries[0].BlockHash != (types.Hash{0x02}) || entries[1].BlockHash != (types.Hash{0x01}) {
		t.Errorf("order = %s, %s", entries[0].BlockHash, entries[1].BlockHash)
	}
}

func TestReceiveByHash(t *testing.T) {
	source := types.Hash{0x61}
	receiveHash := types.Hash{0xE1}
	sender := otherAccount(3)
	lg := &fakeLedger{
		blocks: map[types.Hash]*ledger.BlockInfo{
			source: {BlockAccount: sender, Amount: raw.FromUint64(2500), Subtype: "send"},
		},
		processQueue: []processReply{{hash: receiveHash}},
	}
	w := newTestWallet(t, lg)

	block, err := w.ReceiveByHash(context.Background(), source, SendOptions{})
	if err != nil {
		t.Fatalf("ReceiveByHash: %v", err)
	}
	if block.BlockHash != receiveHash {
		t.Errorf("hash = %s, want %s", block.BlockHash, receiveHash)
	}
	if block.Source != sender {
		t.Errorf("source = %s, want the sender", block.Source)
	}
	if block.Amount.String() != "2500" {
		t.Errorf("amount = %s, want 2500", block.Amount)
	}
	if block.Confirmed {
		t.Error("confirmation was not requested")
	}
}

func TestReceiveAll_SequentialDrain(t *testing.T) {
	s1 := types.Hash{0x71}
	s2 := types.Hash{0x72}
	lg := &fakeLedger{
		receivables: []ledger.ReceivableEntry{
			{BlockHash: s1, Amount: raw.FromUint64(300), Source: otherAccount(1)},
			{BlockHash: s2, Amount: raw.FromUint64(200), Source: otherAccount(2)},
		},
		blocks: map[types.Hash]*ledger.BlockInfo{
			s1: {BlockAccount: otherAccount(1), Amount: raw.FromUint64(300), Subtype: "send"},
			s2: {BlockAccount: otherAccount(2), Amount: raw.FromUint64(200), Subtype: "send"},
		},
		processQueue: []processReply{{hash: types.Hash{0xE1}}, {hash: types.Hash{0xE2}}},
	}
	lg.trackState()
	w := newTestWallet(t, lg)

	received, err := w.ReceiveAll(context.Background(), raw.Amount{}, SendOptions{})
	if err != nil {
		t.Fatalf("ReceiveAll: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("received = %d, want 2", len(received))
	}
	// Largest receivable is claimed first.
	if received[0].Amount.String() != "300" || received[1].Amount.String() != "200" {
		t.Errorf("amounts = %s, %s", received[0].Amount, received[1].Amount)
	}
	if lg.processCalls != 2 {
		t.Errorf("process calls = %d, want 2", lg.processCalls)
	}
}

func TestReceiveAll_PartialFailureAggregates(t *testing.T) {
	// The larger receivable's source block is missing from the node, so
	// its receive fails; the drain must continue and claim the other.
	missing := types.Hash{0x81}
	present := types.Hash{0x82}
	lg := &fakeLedger{
		receivables: []ledger.ReceivableEntry{
			{BlockHash: missing, Amount: raw.FromUint64(900), Source: otherAccount(1)},
			{BlockHash: present, Amount: raw.FromUint64(100), Source: otherAccount(2)},
		},
		blocks: map[types.Hash]*ledger.BlockInfo{
			present: {BlockAccount: otherAccount(2), Amount: raw.FromUint64(100), Subtype: "send"},
		},
		processQueue: []processReply{{hash: types.Hash{0xE3}}},
	}
	w := newTestWallet(t, lg)

	received, err := w.ReceiveAll(context.Background(), raw.Amount{}, SendOptions{})
	if err == nil {
		t.Fatal("ReceiveAll should report the failed receivable")
	}
	var drain *DrainError
	if !errors.As(err, &drain) {
		t.Fatalf("err = %T, want *DrainError", err)
	}
	if len(drain.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(drain.Failures))
	}
	if drain.Failures[0].BlockHash != missing {
		t.Errorf("failed hash = %s, want %s", drain.Failures[0].BlockHash, missing)
	}
	if !IsKind(drain.Failures[0].Err, KindBlockNotFound) {
		t.Errorf("failure kind = %v, want KindBlockNotFound", drain.Failures[0].Err)
	}
	if len(received) != 1 || received[0].Amount.String() != "100" {
		t.Errorf("successes should survive the failure, got %d", len(received))
	}
}

func TestReceiveAll_NothingToDo(t *testing.T) {
	w := newTestWallet(t, &fakeLedger{})
	received, err := w.ReceiveAll(context.Background(), raw.Amount{}, SendOptions{})
	if err != nil {
		t.Fatalf("ReceiveAll: %v", err)
	}
	if len(received) != 0 {
		t.Errorf("received = %d, want 0", len(received))
	}
}
