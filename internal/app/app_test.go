package app

import (
	"context"
	"testing"
	"time"

	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
	"github.com/Ryfitz11/NFT-Tickets/internal/journal"
	"github.com/Ryfitz11/NFT-Tickets/internal/ledger"
	"github.com/Ryfitz11/NFT-Tickets/internal/registry"
	"github.com/Ryfitz11/NFT-Tickets/internal/token"
)

var (
	factory = domain.MustParseAddress("0x00000000000000000000000000000000000fac70")
	usdc    = domain.MustParseAddress("0x00000000000000000000000000000000000000cc")
	venue   = domain.MustParseAddress("0x0000000000000000000000000000000000000001")
	fan     = domain.MustParseAddress("0x00000000000000000000000000000000000000f1")
	friend  = domain.MustParseAddress("0x00000000000000000000000000000000000000f2")
)

type fakeRegistry struct {
	Registry
	gotCaller domain.Address
	gotDesc   domain.EventDescriptor
}

func (f *fakeRegistry) CreateEvent(_ context.Context, caller domain.Address, desc domain.EventDescriptor) (*ledger.Ledger, error) {
	f.gotCaller = caller
	f.gotDesc = desc
	return ledger.New(ledger.Config{Address: factory, Owner: caller, Descriptor: desc}), nil
}

type world struct {
	clock   *clock.Manual
	coin    *token.Memory
	log     *journal.Log
	events  *EventService
	tickets *TicketService
	wallets *WalletService
	now     time.Time
}

func newWorld(t *testing.T) *world {
	t.Helper()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	coin := token.NewMemory(usdc, "mUSDC")
	log := journal.NewLog(nil)
	reg := registry.New(registry.Config{
		Address: factory,
		Tokens:  token.NewDirectory(coin),
		Clock:   clk,
		Emitter: log,
	})
	return &world{
		clock:   clk,
		coin:    coin,
		log:     log,
		events:  NewEventService(reg, WithDefaultPaymentToken(usdc)),
		tickets: NewTicketService(reg, log),
		wallets: NewWalletService(coin, WithMintLimit(domain.NewAmount(1_000_000_000))),
		now:     now,
	}
}

func (w *world) concert(t *testing.T) domain.EventSummary {
	t.Helper()
	ev, err := w.events.CreateEvent(context.Background(), CreateEventInput{
		Caller:           venue,
		CollectionName:   "Awesome Event Tickets",
		CollectionSymbol: "AET",
		EventName:        "The Grand Concert",
		EventDate:        w.now.Add(7 * 24 * time.Hour),
		TotalSupply:      100,
		TicketPrice:      domain.NewAmount(25_000_000),
		TicketLimit:      2,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func TestEventService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fills the default payment token", func(t *testing.T) {
		reg := &fakeRegistry{}
		svc := NewEventService(reg, WithDefaultPaymentToken(usdc))
		date := time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)

		_, err := svc.CreateEvent(ctx, CreateEventInput{Caller: venue, EventName: "x", EventDate: date})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if reg.gotCaller != venue || reg.gotDesc.PaymentToken != usdc || reg.gotDesc.EventTime != date.Unix() {
			t.Fatalf("unexpected forwarded input caller=%s desc=%+v", reg.gotCaller, reg.gotDesc)
		}
	})

	t.Run("requires a caller", func(t *testing.T) {
		svc := NewEventService(&fakeRegistry{})
		if _, err := svc.CreateEvent(ctx, CreateEventInput{EventName: "x"}); err != domain.ErrInvalidAddress {
			t.Fatalf("expected ErrInvalidAddress, got %v", err)
		}
	})

	t.Run("lists and gets events", func(t *testing.T) {
		w := newWorld(t)
		ev := w.concert(t)

		if addrs := w.events.ListAddresses(ctx); len(addrs) != 1 || addrs[0] != ev.Address {
			t.Fatalf("unexpected addresses %v", addrs)
		}
		if all := w.events.ListEvents(ctx, domain.ZeroAddress); len(all) != 1 {
			t.Fatalf("expected 1 event, got %d", len(all))
		}
		if mine := w.events.ListEvents(ctx, fan); len(mine) != 0 {
			t.Fatalf("expected none owned by fan, got %d", len(mine))
		}

		view, err := w.events.GetEvent(ctx, ev.Address)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if view.Details.Name != "The Grand Concert" || view.Owner != venue || view.TicketLimit != 2 {
			t.Fatalf("unexpected view %+v", view)
		}
		if _, err := w.events.GetEvent(ctx, fan); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestTicketService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("buy, transfer, use", func(t *testing.T) {
		w := newWorld(t)
		ev := w.concert(t)
		if _, err := w.wallets.Mint(ctx, fan, domain.NewAmount(50_000_000)); err != nil {
			t.Fatalf("mint: %v", err)
		}
		if _, err := w.wallets.Approve(ctx, ApproveInput{Owner: fan, Spender: ev.Address, Amount: domain.NewAmount(50_000_000)}); err != nil {
			t.Fatalf("approve: %v", err)
		}

		ticket, err := w.tickets.BuyTicket(ctx, BuyTicketInput{Event: ev.Address, Caller: fan})
		if err != nil {
			t.Fatalf("buy: %v", err)
		}
		if ticket.ID != 0 || ticket.Owner != fan || ticket.Used {
			t.Fatalf("unexpected ticket %+v", ticket)
		}

		moved, err := w.tickets.TransferTicket(ctx, TransferTicketInput{Event: ev.Address, Caller: fan, TicketID: 0, To: friend})
		if err != nil || moved.Owner != friend {
			t.Fatalf("transfer: %+v (%v)", moved, err)
		}

		if _, err := w.tickets.MarkTicketAsUsed(ctx, ev.Address, fan, 0); err != domain.ErrNotOwner {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		used, err := w.tickets.MarkTicketAsUsed(ctx, ev.Address, venue, 0)
		if err != nil || !used.Used {
			t.Fatalf("mark used: %+v (%v)", used, err)
		}

		h, err := w.tickets.Holding(ctx, ev.Address, fan)
		if err != nil {
			t.Fatalf("holding: %v", err)
		}
		if h.Bought != 1 || len(h.Tickets) != 0 || h.Refunded {
			t.Fatalf("unexpected holding %+v", h)
		}

		records, err := w.tickets.Records(ctx, ev.Address)
		if err != nil {
			t.Fatalf("records: %v", err)
		}
		want := []domain.RecordKind{
			domain.RecordEventCreated,
			domain.RecordTicketPurchased,
			domain.RecordTicketTransferred,
			domain.RecordTicketUsed,
		}
		if len(records) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(records))
		}
		for i, k := range want {
			if records[i].Kind != k {
				t.Fatalf("record %d: expected %s, got %s", i, k, records[i].Kind)
			}
		}
		if err := w.log.Verify(); err != nil {
			t.Fatalf("verify journal: %v", err)
		}
	})

	t.Run("cancel and refund", func(t *testing.T) {
		w := newWorld(t)
		ev := w.concert(t)
		_, _ = w.wallets.Mint(ctx, fan, domain.NewAmount(25_000_000))
		_, _ = w.wallets.Approve(ctx, ApproveInput{Owner: fan, Spender: ev.Address, Amount: domain.NewAmount(25_000_000)})
		if _, err := w.tickets.BuyTicket(ctx, BuyTicketInput{Event: ev.Address, Caller: fan}); err != nil {
			t.Fatalf("buy: %v", err)
		}

		if err := w.tickets.CancelEvent(ctx, ev.Address, venue); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		amount, err := w.tickets.ClaimRefund(ctx, ev.Address, fan)
		if err != nil || !amount.Equal(domain.NewAmount(25_000_000)) {
			t.Fatalf("refund: %s (%v)", amount, err)
		}
		bal, _ := w.wallets.Balance(ctx, fan)
		if !bal.Balance.Equal(domain.NewAmount(25_000_000)) || bal.Symbol != "mUSDC" || bal.Token != usdc {
			t.Fatalf("unexpected balance %+v", bal)
		}
	})

	t.Run("withdraw after the event", func(t *testing.T) {
		w := newWorld(t)
		ev := w.concert(t)
		_, _ = w.wallets.Mint(ctx, fan, domain.NewAmount(25_000_000))
		_, _ = w.wallets.Approve(ctx, ApproveInput{Owner: fan, Spender: ev.Address, Amount: domain.NewAmount(25_000_000)})
		_, _ = w.tickets.BuyTicket(ctx, BuyTicketInput{Event: ev.Address, Caller: fan})

		w.clock.Advance(8 * 24 * time.Hour)
		amount, err := w.tickets.WithdrawFunds(ctx, ev.Address, venue)
		if err != nil || !amount.Equal(domain.NewAmount(25_000_000)) {
			t.Fatalf("withdraw: %s (%v)", amount, err)
		}
	})

	t.Run("settings", func(t *testing.T) {
		w := newWorld(t)
		ev := w.concert(t)

		if err := w.tickets.SetTicketLimit(ctx, ev.Address, venue, 5); err != nil {
			t.Fatalf("set limit: %v", err)
		}
		if err := w.tickets.SetBaseURI(ctx, ev.Address, venue, "ipfs://base/"); err != nil {
			t.Fatalf("set base uri: %v", err)
		}
		view, _ := w.events.GetEvent(ctx, ev.Address)
		if view.TicketLimit != 5 {
			t.Fatalf("expected limit 5, got %d", view.TicketLimit)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		w := newWorld(t)
		if _, err := w.tickets.BuyTicket(ctx, BuyTicketInput{Event: fan, Caller: fan}); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if _, err := w.tickets.Records(ctx, fan); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if _, err := w.tickets.Ticket(ctx, fan, 0); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestWalletService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)

	if _, err := w.wallets.Mint(ctx, domain.ZeroAddress, domain.NewAmount(1)); err != domain.ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := w.wallets.Mint(ctx, fan, domain.Amount{}); err != domain.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := w.wallets.Mint(ctx, fan, domain.NewAmount(1_000_000_001)); err != domain.ErrMintLimitExceeded {
		t.Fatalf("expected ErrMintLimitExceeded, got %v", err)
	}
	bal, err := w.wallets.Mint(ctx, fan, domain.NewAmount(1_000_000_000))
	if err != nil || !bal.Balance.Equal(domain.NewAmount(1_000_000_000)) {
		t.Fatalf("mint: %+v (%v)", bal, err)
	}

	allowance, err := w.wallets.Approve(ctx, ApproveInput{Owner: fan, Spender: friend, Amount: domain.NewAmount(7)})
	if err != nil || !allowance.Amount.Equal(domain.NewAmount(7)) {
		t.Fatalf("approve: %+v (%v)", allowance, err)
	}
	if _, err := w.wallets.Approve(ctx, ApproveInput{Owner: fan, Amount: domain.NewAmount(7)}); err != domain.ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := newWorld(t)

	in := SeedInput{
		Events: []CreateEventInput{
			{Caller: venue, CollectionName: "A", CollectionSymbol: "A", EventName: "First",
				EventDate: w.now.Add(time.Hour), TotalSupply: 10, TicketPrice: domain.NewAmount(5), TicketLimit: 2},
			{Caller: venue, CollectionName: "B", CollectionSymbol: "B", EventName: "Second",
				EventDate: w.now.Add(2 * time.Hour), TotalSupply: 10, TicketPrice: domain.NewAmount(5), TicketLimit: 2},
		},
		Balances: []SeedBalance{{Address: fan, Amount: domain.NewAmount(5_000_000_000), Approve: domain.NewAmount(10)}},
	}

	created, err := Seed(ctx, w.events, w.wallets, in, nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 events, got %d", len(created))
	}
	bal, _ := w.wallets.Balance(ctx, fan)
	if !bal.Balance.Equal(domain.NewAmount(5_000_000_000)) {
		t.Fatalf("expected seed to bypass the faucet limit, got %s", bal.Balance)
	}
	for _, ev := range created {
		if _, err := w.tickets.BuyTicket(ctx, BuyTicketInput{Event: ev.Address, Caller: fan}); err != nil {
			t.Fatalf("buy on seeded %s: %v", ev.Descriptor.EventName, err)
		}
	}

	bad := SeedInput{Events: []CreateEventInput{{Caller: venue, EventName: "Broken"}}}
	if _, err := Seed(ctx, w.events, w.wallets, bad, nil); err == nil {
		t.Fatal("expected invalid seed to fail")
	}
}
