package routes

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldCity normalizes a city name for comparison: trimmed and lowercased
// with Turkish casing rules, so İstanbul/ISTANBUL/istanbul all match.
func FoldCity(name string) string {
	return cases.Lower(language.Turkish).String(strings.TrimSpace(name))
}

// FullStops returns the ordered stop list [FromCity, stations..., ToCity].
// RouteStations must already be sorted by Order; the repository guarantees
// that on every load.
func (r *Route) FullStops() []string {
	stops := make([]string, 0, len(r.RouteStations)+2)
	stops = append(stops, r.FromCity)
	for _, s := range r.RouteStations {
		stops = append(stops, s.Station)
	}
	stops = append(stops, r.ToCity)
	return stops
}

// LastStopIndex is the index of the destination in the full stop list.
func (r *Route) LastStopIndex() int {
	return len(r.RouteStations) + 1
}

// StopIndex returns the 0-based position of city in the full stop list,
// or -1 when the city is not on this route.
func (r *Route) StopIndex(city string) int {
	folded := FoldCity(city)
	for i, stop := range r.FullStops() {
		if FoldCity(stop) == folded {
			return i
		}
	}
	return -1
}

// ResolveSegment maps a city pair to a stop-index range. Unresolved names
// degrade to the full-route endpoints so an unknown sub-city never
// under-reports conflicts; resolved is false when that fallback was taken.
func (r *Route) ResolveSegment(fromCity, toCity string) (fromIndex, toIndex int, resolved bool) {
	fromIndex = r.StopIndex(fromCity)
	toIndex = r.StopIndex(toCity)

	resolved = fromIndex != -1 && toIndex != -1
	if fromIndex == -1 {
		fromIndex = 0
	}
	if toIndex == -1 {
		toIndex = r.LastStopIndex()
	}
	return fromIndex, toIndex, resolved
}

// DepartureAtStop is the scheduled departure for a given stop index: the
// route departure for the origin, the station's own time for intermediates.
// The destination has no departure; callers never pass the last index.
func (r *Route) DepartureAtStop(index int) time.Time {
	if index <= 0 || index > len(r.RouteStations) {
		return r.DepartureTime
	}
	return r.RouteStations[index-1].Time
}

// SegmentPriceFor finds the price override for an exact city pair, nil when
// the base full-route price applies.
func (r *Route) SegmentPriceFor(fromCity, toCity string) *SegmentPrice {
	from := FoldCity(fromCity)
	to := FoldCity(toCity)
	for i := range r.Prices {
		p := &r.Prices[i]
		if FoldCity(p.FromCity) == from && FoldCity(p.ToCity) == to {
			return p
		}
	}
	return nil
}
