package app

import (
	"sort"
	"strconv"
	"strings"

	"travclan_rates/internal/domain"
)

// Caps applied by the compaction pass. The upstream payload can carry dozens
// of rooms and hundreds of rates; everything beyond these limits is noise for
// the pricing tables.
const (
	maxHotelPhotos  = 10
	maxRoomTypes    = 5
	maxRatesPerRoom = 2
	maxRoomImages   = 3
)

// standardSize is the preferred image variant label in the payload's link
// lists.
const standardSize = "Standard"

// Compact reduces a raw booking-info response to a CompactHotel. It accepts
// both response shapes: the wrapped form {results:[{data:[hotel]}]} and a
// bare hotel object (recognized by id+name at top level). A nil/empty input
// or an unrecognizable shape yields nil, which callers treat as "skip this
// date", not as an error.
//
// Field access is optional-safe throughout: absent or malformed nested
// fields degrade to empty/nil output fields. The hotel id is taken verbatim
// from the payload even when missing (empty string), matching the upstream
// feed's permissiveness.
func Compact(raw map[string]any) *domain.CompactHotel {
	if len(raw) == 0 {
		return nil
	}

	hotel := locatePayload(raw)
	if hotel == nil {
		return nil
	}

	c := &domain.CompactHotel{
		HotelID:    coerceStr(hotel["id"]),
		Name:       coerceStr(hotel["name"]),
		StarRating: optStr(coerceStr(hotel["starRating"])),
		ChainName:  optStr(coerceStr(hotel["chainName"])),
		Location: domain.Location{
			Address: optStr(lookupStr(hotel, "contact.address.line1")),
			City:    optStr(lookupStr(hotel, "contact.address.city.name")),
			Country: optStr(lookupStr(hotel, "contact.address.country.name")),
		},
		Photos:    []string{},
		RoomTypes: []domain.CompactRoomType{},
	}

	if geo, ok := hotel["geoCode"].(map[string]any); ok {
		c.Location.GeoCode = &domain.GeoCode{
			Lat:  coerceStr(geo["lat"]),
			Long: coerceStr(geo["long"]),
		}
	}

	c.Photos = extractImageURLs(hotel["images"], maxHotelPhotos)

	rrd, _ := lookupAny(hotel, "roomRate").([]any)
	if len(rrd) == 0 {
		return c
	}
	plan, ok := rrd[0].(map[string]any)
	if !ok {
		return c
	}

	rooms, _ := plan["standardizedRooms"].(map[string]any)
	rates, _ := plan["rates"].(map[string]any)

	// Rooms and rates arrive as JSON objects keyed by opaque ids; Go maps
	// don't keep document order, so both are scanned in sorted key order to
	// keep "first 5 rooms" and "first 2 rates" deterministic.
	roomIDs := sortedKeys(rooms)
	if len(roomIDs) > maxRoomTypes {
		roomIDs = roomIDs[:maxRoomTypes]
	}
	rateIDs := sortedKeys(rates)

	for _, roomID := range roomIDs {
		room, ok := rooms[roomID].(map[string]any)
		if !ok {
			continue
		}
		rt := domain.CompactRoomType{
			ID:     coerceStr(room["id"]),
			Name:   coerceStr(room["name"]),
			Rates:  []domain.CompactRate{},
			Images: extractImageURLs(room["images"], maxRoomImages),
		}

		// Each room independently re-scans the rate set from the start,
		// stopping once it has collected its cap.
		for _, rateID := range rateIDs {
			if len(rt.Rates) >= maxRatesPerRoom {
				break
			}
			rate, ok := rates[rateID].(map[string]any)
			if !ok {
				continue
			}
			if !rateAppliesToRoom(rate, roomID) {
				continue
			}
			rt.Rates = append(rt.Rates, domain.CompactRate{
				ID:         coerceStr(rate["id"]),
				BaseRate:   coerceF64(rate["baseRate"]),
				FinalRate:  coerceF64(rate["finalRate"]),
				Currency:   coerceStr(rate["currency"]),
				Refundable: coerceBool(rate["refundable"]),
				BoardBasis: optStr(boardBasis(rate)),
			})
		}

		// A room with no qualifying rate carries no pricing signal; drop it.
		if len(rt.Rates) > 0 {
			c.RoomTypes = append(c.RoomTypes, rt)
		}
	}

	return c
}

// locatePayload resolves the hotel object out of either envelope shape.
func locatePayload(raw map[string]any) map[string]any {
	if results, ok := raw["results"].([]any); ok && len(results) > 0 {
		first, _ := results[0].(map[string]any)
		if first != nil {
			if data, ok := first["data"].([]any); ok && len(data) > 0 {
				hotel, _ := data[0].(map[string]any)
				return hotel
			}
		}
		return nil
	}
	if raw["id"] != nil && raw["name"] != nil {
		return raw
	}
	return nil
}

// PickImageURL chooses one URL from an image entry's link list: the variant
// labeled "Standard" when present, else the first link. Empty string when the
// list yields nothing usable.
func PickImageURL(links []any) string {
	var first string
	for _, l := range links {
		link, ok := l.(map[string]any)
		if !ok {
			continue
		}
		url := coerceStr(link["url"])
		if url == "" {
			continue
		}
		if first == "" {
			first = url
		}
		if coerceStr(link["size"]) == standardSize {
			return url
		}
	}
	return first
}

func extractImageURLs(v any, limit int) []string {
	out := []string{}
	entries, ok := v.([]any)
	if !ok {
		return out
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		img, ok := e.(map[string]any)
		if !ok {
			continue
		}
		links, _ := img["links"].([]any)
		if url := PickImageURL(links); url != "" {
			out = append(out, url)
		}
	}
	return out
}

// rateAppliesToRoom reports whether any occupancy entry references the room.
func rateAppliesToRoom(rate map[string]any, roomID string) bool {
	occs, ok := rate["occupancies"].([]any)
	if !ok {
		return false
	}
	for _, o := range occs {
		occ, ok := o.(map[string]any)
		if !ok {
			continue
		}
		if coerceStr(occ["stdRoomId"]) == roomID {
			return true
		}
	}
	return false
}

// boardBasis prefers the classification type over its free-text description.
func boardBasis(rate map[string]any) string {
	if s := lookupStr(rate, "boardBasis.type"); s != "" {
		return s
	}
	return lookupStr(rate, "boardBasis.description")
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
func lookupStr(m map[string]any, path string) string {
	return coerceStr(lookupAny(m, path))
}

// coerceStr renders strings and JSON numbers as strings; anything else is "".
func coerceStr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

func coerceF64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

func coerceBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
