// Package bulkfile reads the flat CSV tables consumed by the bulk loader.
package bulkfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/usecase"
)

const (
	LeaguesFile    = "leagues.csv"
	ClubsFile      = "clubs.csv"
	PlayersFile    = "players.csv"
	ValuationsFile = "player_valuations.csv"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// columnAliases maps alternative header names found in public dumps to the
// store column names.
var columnAliases = map[string]string{
	"competition_id":         "league_id",
	"country_name":           "country",
	"height_in_cm":           "height_cm",
	"country_of_citizenship": "nationality",
}

// Reader implements usecase.BulkSource over a directory of CSV files.
type Reader struct {
	dir    string
	logger *logging.Logger
}

func NewReader(dir string, logger *logging.Logger) *Reader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reader{dir: dir, logger: logger}
}

func (r *Reader) ReadLeagues(ctx context.Context) ([]league.League, error) {
	rows, err := r.readTable(ctx, LeaguesFile)
	if err != nil {
		return nil, err
	}
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{
			ID:      strings.ToUpper(row.text("league_id")),
			Name:    row.text("name"),
			Country: row.text("country"),
		})
	}
	return out, nil
}

func (r *Reader) ReadClubs(ctx context.Context) ([]club.Club, error) {
	rows, err := r.readTable(ctx, ClubsFile)
	if err != nil {
		return nil, err
	}
	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.Club{
			ID:       row.int64Value("club_id"),
			Name:     row.text("name"),
			LeagueID: upper(row.optionalText("domestic_competition_id")),
		})
	}
	return out, nil
}

func (r *Reader) ReadPlayers(ctx context.Context) ([]player.Player, error) {
	rows, err := r.readTable(ctx, PlayersFile)
	if err != nil {
		return nil, err
	}
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		var height *int
		if v := row.optionalInt64("height_cm"); v != nil {
			h := int(*v)
			height = &h
		}
		out = append(out, player.Player{
			ID:            row.int64Value("player_id"),
			Name:          row.text("name"),
			CurrentClubID: row.optionalInt64("current_club_id"),
			DateOfBirth:   row.optionalDate("date_of_birth"),
			Position:      row.optionalText("position"),
			SubPosition:   row.optionalText("sub_position"),
			Foot:          row.optionalText("foot"),
			HeightCM:      height,
			Nationality:   row.optionalText("nationality"),
			ImageURL:      row.optionalText("image_url"),
			AgentName:     row.optionalText("agent_name"),
		})
	}
	return out, nil
}

func (r *Reader) ReadValuations(ctx context.Context) ([]valuation.Valuation, error) {
	rows, err := r.readTable(ctx, ValuationsFile)
	if err != nil {
		return nil, err
	}
	out := make([]valuation.Valuation, 0, len(rows))
	for _, row := range rows {
		out = append(out, valuation.Valuation{
			PlayerID:       row.int64Value("player_id"),
			Date:           row.optionalDate("date"),
			MarketValueEUR: row.optionalInt64("market_value_in_eur"),
			ClubID:         row.optionalInt64("current_club_id"),
			LeagueID:       upper(row.optionalText("player_club_domestic_competition_id")),
		})
	}
	return out, nil
}

// readTable returns every data row keyed by canonical column name.
func (r *Reader) readTable(ctx context.Context, name string) ([]record, error) {
	path := filepath.Join(r.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: open %s: %w", usecase.ErrSourceMissing, path, err)
		}
		return nil, crerr.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s has no header", usecase.ErrSourceEmpty, path)
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "read header %s", path)
	}
	columns := normalizeHeader(header)

	var (
		rows    []record
		ragged  int
		lineNum = 1
	)
	for {
		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, crerr.Wrapf(err, "read %s", path)
			}
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNum++
		if err != nil {
			return nil, crerr.Wrapf(err, "read %s line %d", path, lineNum)
		}
		if len(fields) != len(columns) {
			ragged++
		}
		rec := make(record, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(fields) {
				continue
			}
			rec[col] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, rec)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", usecase.ErrSourceEmpty, path)
	}
	if ragged > 0 {
		r.logger.WarnContext(ctx, "csv rows with unexpected field count", "file", name, "rows", ragged)
	}
	r.logger.DebugContext(ctx, "csv table read", "file", name, "rows", len(rows))
	return rows, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.TrimSpace(h))
		if alias, ok := columnAliases[h]; ok {
			h = alias
		}
		out[i] = h
	}
	return out
}

type record map[string]string

func (r record) text(col string) string {
	return r[col]
}

func (r record) optionalText(col string) *string {
	v := r[col]
	if v == "" {
		return nil
	}
	return &v
}

// int64Value returns 0 when the cell is blank or not a number; the loader
// then rejects the row as invalid.
func (r record) int64Value(col string) int64 {
	if v := r.optionalInt64(col); v != nil {
		return *v
	}
	return 0
}

// optionalInt64 accepts integers and integral decimals such as "15.0".
func (r record) optionalInt64(col string) *int64 {
	raw := r[col]
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return nil
	}
	v := int64(f)
	return &v
}

func (r record) optionalDate(col string) *time.Time {
	raw := r[col]
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

func upper(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.ToUpper(*v)
	return &out
}
