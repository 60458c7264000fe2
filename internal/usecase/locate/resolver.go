// Package locate resolves free-text country and city mentions to canonical
// geography. Resolution is a layered cascade: exact and alias matching
// against the embedded country table, then case-insensitive and whole-word
// matching with data-driven collision rules, then the external geocoder, with
// the table's approximate centroids guaranteeing a plottable coordinate even
// when the geocoder is down. City-level geocoding is additive: best effort,
// superseding the centroid when it succeeds.
package locate

import (
	"context"
	"fmt"
	"log/slog"

	"outbreak-feed/internal/infra/geocoder"
	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/usecase/signal"
)

// Resolver implements the location stage of the pipeline.
type Resolver struct {
	table    *Table
	geocoder geocoder.Geocoder
}

// NewResolver creates a Resolver over the embedded country table.
func NewResolver(g geocoder.Geocoder) (*Resolver, error) {
	table, err := LoadTable()
	if err != nil {
		return nil, fmt.Errorf("NewResolver: %w", err)
	}
	if g == nil {
		g = geocoder.NewNoOp()
	}
	return &Resolver{table: table, geocoder: g}, nil
}

// Resolve turns a free-text (country, city) pair into a canonical location,
// or (nil, nil) when the country cannot be resolved. Table hits never invoke
// the geocoder for the country itself; the geocoder is the fallback for
// names the table does not know. Geocoder errors are absorbed into the
// cascade and never surface to the caller.
func (r *Resolver) Resolve(ctx context.Context, country, city string) (*signal.Location, error) {
	if country == "" {
		metrics.RecordLocationResolution(metrics.TierUnresolved)
		return nil, nil
	}

	loc := r.resolveCountry(ctx, country)
	if loc == nil {
		metrics.RecordLocationResolution(metrics.TierUnresolved)
		return nil, nil
	}

	if city != "" {
		r.refineWithCity(ctx, loc, city)
	}

	return loc, nil
}

// resolveCountry runs the country cascade.
func (r *Resolver) resolveCountry(ctx context.Context, country string) *signal.Location {
	// Tier 1: exact name or alias.
	if entry := r.table.MatchExact(country); entry != nil {
		metrics.RecordLocationResolution(metrics.TierAlias)
		return entryLocation(entry)
	}

	// Tier 2: case-insensitive, then whole-word containment with collision
	// rules ("outbreak in southern Niger" style mentions).
	if entry := r.table.MatchFolded(country); entry != nil {
		metrics.RecordLocationResolution(metrics.TierFold)
		return entryLocation(entry)
	}
	if entry := r.table.MatchContained(country); entry != nil {
		metrics.RecordLocationResolution(metrics.TierFold)
		return entryLocation(entry)
	}

	// Tier 3: external geocoding. The result is cross-checked against the
	// table by name or ISO code; a table hit canonicalizes the name while
	// keeping the geocoder's coordinates.
	result, err := r.geocoder.Geocode(ctx, country)
	if err != nil {
		slog.Debug("country geocoding unavailable",
			slog.String("country", country),
			slog.Any("error", err))
		metrics.RecordLocationResolution(metrics.TierUnresolved)
		return nil
	}
	if result == nil || result.CountryName == "" {
		metrics.RecordLocationResolution(metrics.TierUnresolved)
		return nil
	}

	metrics.RecordLocationResolution(metrics.TierGeocoder)

	entry := r.table.MatchFolded(result.CountryName)
	if entry == nil {
		entry = r.table.MatchByCode(result.CountryCode)
	}
	if entry != nil {
		loc := entryLocation(entry)
		// The geocoder's coordinates are finer than the table centroid;
		// the centroid must not override them.
		loc.Latitude = result.Latitude
		loc.Longitude = result.Longitude
		return loc
	}

	// Geocoded but outside the canonical table: keep the provider's naming
	// so the country can still be created on demand downstream.
	return &signal.Location{
		CountryName: result.CountryName,
		CountryCode: result.CountryCode,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
	}
}

// refineWithCity upgrades the location's coordinates to city level when the
// geocoder can place "city, country". Failure keeps the country coordinate;
// the city label itself is retained by the caller either way.
func (r *Resolver) refineWithCity(ctx context.Context, loc *signal.Location, city string) {
	result, err := r.geocoder.Geocode(ctx, city+", "+loc.CountryName)
	if err != nil {
		slog.Debug("city geocoding unavailable, keeping country coordinates",
			slog.String("city", city),
			slog.String("country", loc.CountryName),
			slog.Any("error", err))
		metrics.RecordLocationResolution(metrics.TierCentroid)
		return
	}
	if result == nil {
		metrics.RecordLocationResolution(metrics.TierCentroid)
		return
	}

	// A result placed in a different country means the city string was
	// ambiguous; trusting it would plot the signal on the wrong continent.
	if result.CountryCode != "" && loc.CountryCode != "" && result.CountryCode != loc.CountryCode {
		slog.Debug("city geocode landed in a different country, keeping centroid",
			slog.String("city", city),
			slog.String("expected", loc.CountryCode),
			slog.String("got", result.CountryCode))
		metrics.RecordLocationResolution(metrics.TierCentroid)
		return
	}

	loc.Latitude = result.Latitude
	loc.Longitude = result.Longitude
}

func entryLocation(entry *CountryEntry) *signal.Location {
	return &signal.Location{
		CountryName: entry.Name,
		CountryCode: entry.Code,
		Continent:   entry.Continent,
		Latitude:    entry.Lat,
		Longitude:   entry.Lng,
	}
}
