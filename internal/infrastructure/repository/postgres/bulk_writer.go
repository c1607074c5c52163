package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/market-value-crawler/internal/domain/club"
	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
	"github.com/riskibarqy/market-value-crawler/internal/domain/valuation"
	qb "github.com/riskibarqy/market-value-crawler/internal/platform/querybuilder"
)

// BulkWriter loads flat-file tables with batched multi-row statements. Every
// table write runs in its own transaction.
type BulkWriter struct {
	db        *sqlx.DB
	batchSize int
}

func NewBulkWriter(db *sqlx.DB, batchSize int) *BulkWriter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &BulkWriter{db: db, batchSize: batchSize}
}

func (w *BulkWriter) UpsertLeagues(ctx context.Context, items []league.League) (int, error) {
	rows := make([]leagueInsertModel, 0, len(items))
	for _, item := range dedupeLast(items, func(l league.League) string { return l.ID }) {
		var country *string
		if item.Country != "" {
			country = &item.Country
		}
		rows = append(rows, leagueInsertModel{LeagueID: item.ID, Name: item.Name, Country: country})
	}
	return upsertBatches(ctx, w, "leagues", rows, "league_id")
}

func (w *BulkWriter) UpsertClubs(ctx context.Context, items []club.Club) (int, error) {
	rows := make([]clubInsertModel, 0, len(items))
	for _, item := range dedupeLast(items, func(c club.Club) int64 { return c.ID }) {
		rows = append(rows, clubInsertModel{
			ClubID:                item.ID,
			Name:                  item.Name,
			DomesticCompetitionID: item.LeagueID,
		})
	}
	return upsertBatches(ctx, w, "clubs", rows, "club_id")
}

func (w *BulkWriter) UpsertPlayers(ctx context.Context, items []player.Player) (int, error) {
	rows := make([]playerInsertModel, 0, len(items))
	for _, item := range dedupeLast(items, func(p player.Player) int64 { return p.ID }) {
		rows = append(rows, playerInsertModel{
			PlayerID:      item.ID,
			Name:          item.Name,
			CurrentClubID: item.CurrentClubID,
			DateOfBirth:   item.DateOfBirth,
			Position:      item.Position,
			SubPosition:   item.SubPosition,
			Foot:          item.Foot,
			HeightCM:      item.HeightCM,
			Nationality:   item.Nationality,
			ImageURL:      item.ImageURL,
			AgentName:     item.AgentName,
		})
	}
	return upsertBatches(ctx, w, "players", rows, "player_id")
}

// ReplaceValuations deletes stored history of every player present in items
// and inserts items, all in one transaction.
func (w *BulkWriter) ReplaceValuations(ctx context.Context, items []valuation.Valuation) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	seen := make(map[int64]struct{}, len(items))
	playerIDs := make([]any, 0, len(items))
	rows := make([]valuationInsertModel, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.PlayerID]; !ok {
			seen[item.PlayerID] = struct{}{}
			playerIDs = append(playerIDs, item.PlayerID)
		}
		rows = append(rows, valuationInsertModel{
			PlayerID:         item.PlayerID,
			Date:             item.Date,
			MarketValueInEUR: item.MarketValueEUR,
			CurrentClubID:    item.ClubID,
			LeagueID:         item.LeagueID,
		})
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx replace valuations: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, ids := range batches(playerIDs, w.batchSize) {
		query, args, err := qb.DeleteFrom("player_valuations").Where(qb.In("player_id", ids)).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete valuations query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("delete valuations: %w", err)
		}
	}

	written := 0
	for _, batch := range batches(rows, w.batchSize) {
		query, args, err := qb.InsertModels("player_valuations", batch)
		if err != nil {
			return 0, fmt.Errorf("build insert valuations query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert valuations: %w", err)
		}
		written += rowsAffected(res, len(batch))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace valuations tx: %w", err)
	}
	return written, nil
}

func (w *BulkWriter) KnownLeagueIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := w.db.SelectContext(ctx, &ids, "SELECT league_id FROM leagues"); err != nil {
		return nil, fmt.Errorf("select league ids: %w", err)
	}
	return ids, nil
}

func (w *BulkWriter) KnownClubIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := w.db.SelectContext(ctx, &ids, "SELECT club_id FROM clubs"); err != nil {
		return nil, fmt.Errorf("select club ids: %w", err)
	}
	return ids, nil
}

func (w *BulkWriter) KnownPlayerIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := w.db.SelectContext(ctx, &ids, "SELECT player_id FROM players"); err != nil {
		return nil, fmt.Errorf("select player ids: %w", err)
	}
	return ids, nil
}

func upsertBatches[T any](ctx context.Context, w *BulkWriter, table string, rows []T, conflictKey string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert %s: %w", table, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	written := 0
	for i, batch := range batches(rows, w.batchSize) {
		query, args, err := qb.InsertModels(table, batch, conflictKey)
		if err != nil {
			return 0, fmt.Errorf("build upsert %s query: %w", table, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("upsert %s batch=%d: %w", table, i, err)
		}
		written += rowsAffected(res, len(batch))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert %s tx: %w", table, err)
	}
	return written, nil
}

type resultWithRows interface {
	RowsAffected() (int64, error)
}

func rowsAffected(res resultWithRows, fallback int) int {
	n, err := res.RowsAffected()
	if err != nil {
		return fallback
	}
	return int(n)
}

// dedupeLast keeps the last occurrence of each key, in first-seen order.
// ON CONFLICT DO UPDATE rejects a key repeated within one statement.
func dedupeLast[T any, K comparable](items []T, key func(T) K) []T {
	index := make(map[K]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
