package remote

import "github.com/christopherklint97/plantbill/internal/eph"

type Asset struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	DryRate   *float64 `json:"dryRate"`
	WetRate   *float64 `json:"wetRate"`
	DailyRate *float64 `json:"dailyRate"`
}

func (a Asset) Rates() eph.Rates {
	return eph.Rates{DryRate: a.DryRate, WetRate: a.WetRate, DailyRate: a.DailyRate}
}
