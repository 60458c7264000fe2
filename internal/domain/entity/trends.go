package entity

import "time"

// TrendScore is one search-interest datapoint for a tracked disease, scored
// 0-100 by the interest provider. Upserted on (disease, date).
type TrendScore struct {
	ID        int64
	Disease   string
	Date      time.Time
	Score     int
	CreatedAt time.Time
}

// RegionTrendScore is the per-country variant, upserted on
// (disease, region, date). Region holds the provider's name after
// normalization; CountryID is set when that name resolves to a stored country.
type RegionTrendScore struct {
	ID        int64
	Disease   string
	Region    string
	CountryID *int64
	Date      time.Time
	Score     int
	CreatedAt time.Time
}
