package token

import (
	"context"
	"errors"
	"testing"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

var (
	usdc  = domain.MustParseAddress("0x00000000000000000000000000000000000000cc")
	alice = domain.MustParseAddress("0x000000000000000000000000000000000000a11c")
	bob   = domain.MustParseAddress("0x0000000000000000000000000000000000000b0b")
	shop  = domain.MustParseAddress("0x0000000000000000000000000000000000005b09")
)

func TestMemory_TransferFrom(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("spends allowance and moves balance", func(t *testing.T) {
		m := NewMemory(usdc, "mUSDC")
		mustMint(t, m, alice, 100)
		if err := m.Approve(alice, shop, domain.NewAmount(60)); err != nil {
			t.Fatalf("approve: %v", err)
		}

		ok, err := m.TransferFrom(ctx, shop, alice, shop, domain.NewAmount(25))
		if err != nil || !ok {
			t.Fatalf("expected success, got ok=%v err=%v", ok, err)
		}
		expectBalance(t, m, alice, 75)
		expectBalance(t, m, shop, 25)

		allowance, _ := m.Allowance(ctx, alice, shop)
		if !allowance.Equal(domain.NewAmount(35)) {
			t.Fatalf("expected allowance 35, got %s", allowance)
		}
	})

	t.Run("refuses without allowance", func(t *testing.T) {
		m := NewMemory(usdc, "mUSDC")
		mustMint(t, m, alice, 100)

		ok, err := m.TransferFrom(ctx, shop, alice, shop, domain.NewAmount(1))
		if err != nil || ok {
			t.Fatalf("expected refusal, got ok=%v err=%v", ok, err)
		}
		expectBalance(t, m, alice, 100)
	})

	t.Run("refuses beyond balance", func(t *testing.T) {
		m := NewMemory(usdc, "mUSDC")
		mustMint(t, m, alice, 10)
		_ = m.Approve(alice, shop, domain.NewAmount(50))

		ok, err := m.TransferFrom(ctx, shop, alice, shop, domain.NewAmount(11))
		if err != nil || ok {
			t.Fatalf("expected refusal, got ok=%v err=%v", ok, err)
		}
		allowance, _ := m.Allowance(ctx, alice, shop)
		if !allowance.Equal(domain.NewAmount(50)) {
			t.Fatalf("expected allowance untouched, got %s", allowance)
		}
	})

	t.Run("hook failure leaves state unchanged", func(t *testing.T) {
		m := NewMemory(usdc, "mUSDC")
		mustMint(t, m, alice, 10)
		_ = m.Approve(alice, shop, domain.NewAmount(10))
		boom := errors.New("boom")
		m.SetTransferHook(func(context.Context, domain.Address, domain.Address, domain.Amount) error {
			return boom
		})

		ok, err := m.TransferFrom(ctx, shop, alice, shop, domain.NewAmount(10))
		if ok || !errors.Is(err, boom) {
			t.Fatalf("expected hook error, got ok=%v err=%v", ok, err)
		}
		expectBalance(t, m, alice, 10)
	})
}

func TestMemory_Transfer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(usdc, "mUSDC")
	mustMint(t, m, shop, 40)

	if ok, err := m.Transfer(ctx, shop, bob, domain.NewAmount(41)); ok || err != nil {
		t.Fatalf("expected refusal, got ok=%v err=%v", ok, err)
	}
	if ok, err := m.Transfer(ctx, shop, domain.ZeroAddress, domain.NewAmount(1)); ok || err != ErrZeroRecipient {
		t.Fatalf("expected ErrZeroRecipient, got ok=%v err=%v", ok, err)
	}
	if ok, err := m.Transfer(ctx, shop, bob, domain.NewAmount(40)); !ok || err != nil {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
	expectBalance(t, m, shop, 0)
	expectBalance(t, m, bob, 40)
	if !m.TotalSupply().Equal(domain.NewAmount(40)) {
		t.Fatalf("expected supply unchanged by transfers, got %s", m.TotalSupply())
	}
}

func TestDirectory(t *testing.T) {
	t.Parallel()

	m := NewMemory(usdc, "mUSDC")
	d := NewDirectory(m)
	if got, ok := d.Lookup(usdc); !ok || got != m {
		t.Fatalf("expected registered token")
	}
	if _, ok := d.Lookup(alice); ok {
		t.Fatalf("expected unknown token")
	}
}

func mustMint(t *testing.T, m *Memory, to domain.Address, v uint64) {
	t.Helper()
	if err := m.Mint(to, domain.NewAmount(v)); err != nil {
		t.Fatalf("mint: %v", err)
	}
}

func expectBalance(t *testing.T, m *Memory, who domain.Address, v uint64) {
	t.Helper()
	got, err := m.BalanceOf(context.Background(), who)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !got.Equal(domain.NewAmount(v)) {
		t.Fatalf("expected balance %d for %s, got %s", v, who, got)
	}
}
