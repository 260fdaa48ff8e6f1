package models

// Quote is a company profile record returned by the upstream quote source.
// Fields the upstream adds beyond these are dropped.
type Quote struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	Changes     float64 `json:"changes"`
	VolAvg      float64 `json:"volAvg"`
	MktCap      float64 `json:"mktCap,omitempty"`
	Beta        float64 `json:"beta,omitempty"`
	LastDiv     float64 `json:"lastDiv,omitempty"`
	Range       string  `json:"range,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Exchange    string  `json:"exchange,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Website     string  `json:"website"`
	Image       string  `json:"image,omitempty"`
}

// WatchlistItem converts a quote into the shape posted to the watchlist
func (q Quote) WatchlistItem() WatchlistItem {
	changes := q.Changes
	volAvg := q.VolAvg
	return WatchlistItem{
		Symbol:      q.Symbol,
		CompanyName: q.CompanyName,
		Price:       q.Price,
		Changes:     &changes,
		VolAvg:      &volAvg,
		Website:     q.Website,
	}
}
