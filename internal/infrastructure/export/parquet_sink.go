package export

import (
	"context"
	"os"

	crerr "github.com/cockroachdb/errors"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/riskibarqy/market-value-crawler/internal/domain/ranking"
)

// ParquetRow mirrors the CSV columns; nullable columns are optional.
type ParquetRow struct {
	PlayerID       string `parquet:"player_id"`
	League         string `parquet:"league"`
	Name           string `parquet:"name"`
	Position       string `parquet:"position"`
	Team           string `parquet:"team"`
	Age            *int32 `parquet:"age,optional"`
	MarketValue    string `parquet:"market_value"`
	MarketValueInt *int64 `parquet:"market_value_int,optional"`
}

type ParquetSink struct {
	path string
}

func NewParquetSink(path string) *ParquetSink {
	return &ParquetSink{path: path}
}

func (s *ParquetSink) Name() string {
	return "parquet:" + s.path
}

func (s *ParquetSink) Write(ctx context.Context, rows []ranking.RankedPlayer) error {
	return writeAtomic(s.path, func(f *os.File) error {
		w := parquet.NewWriter(f, parquet.SchemaOf(new(ParquetRow)), parquet.Compression(&parquet.Snappy))
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Write(toParquetRow(row)); err != nil {
				_ = w.Close()
				return crerr.Wrapf(err, "write parquet row %d", i)
			}
		}
		if err := w.Close(); err != nil {
			return crerr.Wrap(err, "close parquet writer")
		}
		return nil
	})
}

func toParquetRow(row ranking.RankedPlayer) ParquetRow {
	out := ParquetRow{
		PlayerID:       row.PlayerID,
		League:         row.League,
		Name:           row.Name,
		Position:       row.Position,
		Team:           row.Team,
		MarketValue:    row.MarketValue,
		MarketValueInt: row.MarketValueInt,
	}
	if row.Age != nil {
		age := int32(*row.Age)
		out.Age = &age
	}
	return out
}
