// Package model defines domain types shared by the vending machine packages.
package model

import (
	"sort"
	"strconv"
)

// Amount is a monetary value in minor units. Coins and prices are whole units.
type Amount int64

func (a Amount) String() string { return strconv.FormatInt(int64(a), 10) }

// Product represents the current state of a catalog entry.
type Product struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price Amount `json:"price" yaml:"price"`
	Stock int    `json:"stock" yaml:"stock"`
}

// Breakdown maps a coin denomination to the number of coins of that value.
type Breakdown map[Amount]int

// CoinCount is one line of a Breakdown.
type CoinCount struct {
	Denomination Amount `json:"denomination"`
	Count        int    `json:"count"`
}

// Total returns the weighted sum of the breakdown.
func (b Breakdown) Total() Amount {
	var sum Amount
	for d, n := range b {
		sum += d * Amount(n)
	}
	return sum
}

// Entries lists the breakdown by descending denomination.
func (b Breakdown) Entries() []CoinCount {
	out := make([]CoinCount, 0, len(b))
	for d, n := range b {
		out = append(out, CoinCount{Denomination: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denomination > out[j].Denomination })
	return out
}
