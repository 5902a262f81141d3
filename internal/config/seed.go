package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// SeedFile is the startup fixture: events to create and wallets to fund.
//
//	owner: "0x..."
//	events:
//	  - collection_name: Awesome Event Tickets
//	    collection_symbol: AET
//	    event_name: The Grand Concert
//	    event_date: 2026-12-31T20:00:00Z
//	    total_supply: 100
//	    ticket_price: "25000000"
//	    ticket_limit: 4
//	wallets:
//	  - address: "0x..."
//	    balance: "1000000000"
//	    approve: "100000000"
type SeedFile struct {
	Owner   string       `yaml:"owner"`
	Events  []SeedEvent  `yaml:"events"`
	Wallets []SeedWallet `yaml:"wallets"`
}

type SeedEvent struct {
	Owner            string    `yaml:"owner"`
	CollectionName   string    `yaml:"collection_name"`
	CollectionSymbol string    `yaml:"collection_symbol"`
	EventName        string    `yaml:"event_name"`
	EventDate        time.Time `yaml:"event_date"`
	TotalSupply      uint64    `yaml:"total_supply"`
	TicketPrice      string    `yaml:"ticket_price"`
	TicketLimit      uint64    `yaml:"ticket_limit"`
	PaymentToken     string    `yaml:"payment_token"`
	ImageURI         string    `yaml:"image_uri"`
}

type SeedWallet struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
	Approve string `yaml:"approve"`
}

// Seed is a parsed and checked SeedFile.
type Seed struct {
	Events  []SeedEventSpec
	Wallets []SeedWalletSpec
}

type SeedEventSpec struct {
	Owner            domain.Address
	CollectionName   string
	CollectionSymbol string
	EventName        string
	EventDate        time.Time
	TotalSupply      uint64
	TicketPrice      domain.Amount
	TicketLimit      uint64
	PaymentToken     domain.Address
	ImageURI         string
}

type SeedWalletSpec struct {
	Address domain.Address
	Balance domain.Amount
	Approve domain.Amount
}

func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(bytes.NewReader(data))
}

// ParseSeed decodes a seed document. Unknown keys are rejected.
func ParseSeed(r io.Reader) (Seed, error) {
	var file SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	var defaultOwner domain.Address
	if file.Owner != "" {
		owner, err := domain.ParseAddress(file.Owner)
		if err != nil {
			return Seed{}, fmt.Errorf("seed owner: %w", err)
		}
		defaultOwner = owner
	}

	var seed Seed
	for i, ev := range file.Events {
		spec := SeedEventSpec{
			Owner:            defaultOwner,
			CollectionName:   ev.CollectionName,
			CollectionSymbol: ev.CollectionSymbol,
			EventName:        ev.EventName,
			EventDate:        ev.EventDate,
			TotalSupply:      ev.TotalSupply,
			TicketLimit:      ev.TicketLimit,
			ImageURI:         ev.ImageURI,
		}
		if ev.Owner != "" {
			owner, err := domain.ParseAddress(ev.Owner)
			if err != nil {
				return Seed{}, fmt.Errorf("seed event %d owner: %w", i, err)
			}
			spec.Owner = owner
		}
		if spec.Owner.IsZero() {
			return Seed{}, fmt.Errorf("seed event %d: no owner", i)
		}
		price, err := domain.ParseAmount(ev.TicketPrice)
		if err != nil {
			return Seed{}, fmt.Errorf("seed event %d ticket price: %w", i, err)
		}
		spec.TicketPrice = price
		if ev.PaymentToken != "" {
			tok, err := domain.ParseAddress(ev.PaymentToken)
			if err != nil {
				return Seed{}, fmt.Errorf("seed event %d payment token: %w", i, err)
			}
			spec.PaymentToken = tok
		}
		seed.Events = append(seed.Events, spec)
	}

	for i, w := range file.Wallets {
		addr, err := domain.ParseAddress(w.Address)
		if err != nil {
			return Seed{}, fmt.Errorf("seed wallet %d: %w", i, err)
		}
		spec := SeedWalletSpec{Address: addr}
		if w.Balance != "" {
			if spec.Balance, err = domain.ParseAmount(w.Balance); err != nil {
				return Seed{}, fmt.Errorf("seed wallet %d balance: %w", i, err)
			}
		}
		if w.Approve != "" {
			if spec.Approve, err = domain.ParseAmount(w.Approve); err != nil {
				return Seed{}, fmt.Errorf("seed wallet %d approve: %w", i, err)
			}
		}
		seed.Wallets = append(seed.Wallets, spec)
	}
	return seed, nil
}
