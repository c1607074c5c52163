package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
)

type searchPlayersRequest struct {
	League string `validate:"omitempty,alphanum,max=10"`
	Name   string `validate:"omitempty,max=100"`
	Limit  int    `validate:"gte=0,lte=500"`
	Offset int    `validate:"gte=0"`
}

type topPlayersRequest struct {
	Limit int `validate:"gte=0,lte=500"`
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := searchPlayersRequest{
		League: strings.TrimSpace(r.URL.Query().Get("league")),
		Name:   strings.TrimSpace(r.URL.Query().Get("name")),
		Limit:  limit,
		Offset: offset,
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.playerService.Search(ctx, player.SearchFilter{
		LeagueID: req.League,
		Name:     req.Name,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "search players failed", "league_id", req.League, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTO(items))
}

func (h *Handler) TopPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TopPlayers")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req := topPlayersRequest{Limit: limit}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.playerService.Top(ctx, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "top players failed", "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTO(items))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID, err := pathPlayerID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.Get(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(item))
}

func (h *Handler) ListPlayerValuations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerValuations")
	defer span.End()

	playerID, err := pathPlayerID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.playerService.Valuations(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player valuations failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]valuationPointDTO, 0, len(points))
	for _, p := range points {
		items = append(items, valuationPointDTO{
			Date:             formatDate(p.Date),
			MarketValueInEUR: p.MarketValueEUR,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
