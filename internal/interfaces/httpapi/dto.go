package httpapi

import (
	"time"

	"github.com/riskibarqy/market-value-crawler/internal/domain/league"
	"github.com/riskibarqy/market-value-crawler/internal/domain/player"
)

const dateLayout = "2006-01-02"

type leagueDTO struct {
	LeagueID string `json:"league_id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
}

type playerSummaryDTO struct {
	PlayerID         int64   `json:"player_id"`
	Name             string  `json:"name"`
	Position         *string `json:"position"`
	SubPosition      *string `json:"sub_position"`
	DateOfBirth      *string `json:"date_of_birth"`
	CurrentClubID    *int64  `json:"current_club_id"`
	ClubName         *string `json:"club_name"`
	LeagueID         *string `json:"league_id"`
	MarketValueInEUR *int64  `json:"market_value_in_eur"`
}

type valuationPointDTO struct {
	Date             *string `json:"date"`
	MarketValueInEUR *int64  `json:"market_value_in_eur"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{LeagueID: l.ID, Name: l.Name, Country: l.Country}
}

func summaryToDTO(s player.Summary) playerSummaryDTO {
	return playerSummaryDTO{
		PlayerID:         s.ID,
		Name:             s.Name,
		Position:         s.Position,
		SubPosition:      s.SubPosition,
		DateOfBirth:      formatDate(s.DateOfBirth),
		CurrentClubID:    s.CurrentClubID,
		ClubName:         s.ClubName,
		LeagueID:         s.LeagueID,
		MarketValueInEUR: s.CurrentMarketValueEUR,
	}
}

func summariesToDTO(items []player.Summary) []playerSummaryDTO {
	out := make([]playerSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, summaryToDTO(item))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}
