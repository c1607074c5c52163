// Package ranking orders raw upstream players by market value and projects
// them into output rows.
package ranking

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
)

const (
	NotAvailable = "N/A"
	dateLayout   = "2006-1-2"
)

// RankedPlayer is one output row.
type RankedPlayer struct {
	PlayerID       string `json:"player_id"`
	League         string `json:"League"`
	Name           string `json:"Name"`
	Position       string `json:"Position"`
	Team           string `json:"Team"`
	Age            *int   `json:"Age"`
	MarketValue    string `json:"Market Value"`
	MarketValueInt *int64 `json:"Market Value Int"`
}

// Result is the ranked top slice of one league plus the names of players that
// were dropped for lacking an identifier.
type Result struct {
	Players       []RankedPlayer
	DroppedNoID   []string
	CandidateSize int
}

type Ranker struct {
	Now func() time.Time
}

func NewRanker() *Ranker {
	return &Ranker{Now: time.Now}
}

// Rank drops players without a usable id, sorts the rest by market value
// descending (missing values last, ties in input order) and keeps the first n.
func (r *Ranker) Rank(leagueName string, raws []player.Raw, n int) Result {
	now := time.Now
	if r != nil && r.Now != nil {
		now = r.Now
	}

	type candidate struct {
		raw   player.Raw
		id    string
		value *int64
	}

	var res Result
	candidates := make([]candidate, 0, len(raws))
	for _, raw := range raws {
		id, ok := raw.ID()
		if !ok {
			res.DroppedNoID = append(res.DroppedNoID, raw.Text("name", NotAvailable))
			continue
		}
		candidates = append(candidates, candidate{raw: raw, id: id, value: MarketValue(raw)})
	}
	res.CandidateSize = len(candidates)

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return compareDesc(a.value, b.value)
	})

	if n < 0 {
		n = 0
	}
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	today := now()
	res.Players = make([]RankedPlayer, 0, len(candidates))
	for _, c := range candidates {
		res.Players = append(res.Players, RankedPlayer{
			PlayerID:       c.id,
			League:         leagueName,
			Name:           c.raw.Text("name", NotAvailable),
			Position:       c.raw.Text("position", NotAvailable),
			Team:           c.raw.Text(player.ClubNameKey, NotAvailable),
			Age:            ageFromRaw(c.raw["dateOfBirth"], today),
			MarketValue:    FormatMarketValue(c.value),
			MarketValueInt: c.value,
		})
	}
	return res
}

// compareDesc orders larger values first and nil after every number.
func compareDesc(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}

// MarketValue reads the "marketValue" field. JSON numbers truncate toward
// zero and numeric strings parse as base-10 integers; anything else is nil.
func MarketValue(raw player.Raw) *int64 {
	switch v := raw["marketValue"].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil
		}
		out := int64(v)
		return &out
	case int:
		out := int64(v)
		return &out
	case int64:
		return &v
	case string:
		out, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil
		}
		return &out
	default:
		return nil
	}
}

// Age returns whole years between dob (YYYY-MM-DD, zero padding optional) and
// now, or nil when dob does not parse.
func Age(dob string, now time.Time) *int {
	born, err := time.Parse(dateLayout, dob)
	if err != nil {
		return nil
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return &years
}

func ageFromRaw(v any, now time.Time) *int {
	dob, ok := v.(string)
	if !ok || dob == "" {
		return nil
	}
	return Age(dob, now)
}

// FormatMarketValue renders "€" plus the comma-grouped value, or "N/A".
func FormatMarketValue(v *int64) string {
	if v == nil {
		return NotAvailable
	}

	digits := strconv.FormatInt(*v, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3 + 4)
	b.WriteString("€")
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
