package export

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/market-value-crawler/internal/domain/ranking"
)

// CSVHeader is the column order of the ranked players artifact.
var CSVHeader = []string{"player_id", "League", "Name", "Position", "Team", "Age", "Market Value", "Market Value Int"}

type CSVSink struct {
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string {
	return "csv:" + s.path
}

// Write replaces the file at path with rows. Null ages and values become
// empty cells.
func (s *CSVSink) Write(ctx context.Context, rows []ranking.RankedPlayer) error {
	return writeAtomic(s.path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(CSVHeader); err != nil {
			return crerr.Wrap(err, "write csv header")
		}
		for i, row := range rows {
			if i%500 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := w.Write(csvRecord(row)); err != nil {
				return crerr.Wrapf(err, "write csv row %d", i)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return crerr.Wrap(err, "flush csv")
		}
		return nil
	})
}

func csvRecord(row ranking.RankedPlayer) []string {
	age := ""
	if row.Age != nil {
		age = strconv.Itoa(*row.Age)
	}
	value := ""
	if row.MarketValueInt != nil {
		value = strconv.FormatInt(*row.MarketValueInt, 10)
	}
	return []string{row.PlayerID, row.League, row.Name, row.Position, row.Team, age, row.MarketValue, value}
}
