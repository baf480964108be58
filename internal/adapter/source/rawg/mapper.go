package rawg

import "github.com/mmcdole/gamedeck/internal/domain"

// MapGame converts a listing entry to a domain item
func MapGame(g Game) domain.Item {
	return domain.Item{
		ID:          g.ID,
		Name:        g.Name,
		ImageURL:    deref(g.BackgroundImage),
		Rating:      g.Rating,
		CriticScore: g.Metacritic,
		Released:    deref(g.Released),
	}
}

// MapGamesPage converts a listing response to a domain page.
// HasMore follows the presence of a next link.
func MapGamesPage(resp GamesResponse) domain.Page {
	items := make([]domain.Item, 0, len(resp.Results))
	for _, g := range resp.Results {
		items = append(items, MapGame(g))
	}
	return domain.Page{
		Items:      items,
		HasMore:    resp.Next != nil,
		TotalCount: resp.Count,
	}
}

// MapGameDetail converts a detail response to a domain detail
func MapGameDetail(d GameDetail) domain.ItemDetail {
	return domain.ItemDetail{
		Item: domain.Item{
			ID:          d.ID,
			Name:        d.Name,
			ImageURL:    deref(d.BackgroundImage),
			Rating:      d.Rating,
			CriticScore: d.Metacritic,
			Released:    deref(d.Released),
		},
		Description:        deref(d.DescriptionRaw),
		ImageURLAdditional: deref(d.BackgroundImageAdditional),
		Website:            deref(d.Website),
		Playtime:           d.Playtime,
		TBA:                d.TBA,
	}
}

// MapScreenshots drops deleted screenshots
func MapScreenshots(resp ScreenshotsResponse) []domain.Screenshot {
	shots := make([]domain.Screenshot, 0, len(resp.Results))
	for _, s := range resp.Results {
		if s.IsDeleted {
			continue
		}
		shots = append(shots, domain.Screenshot{
			ID:       s.ID,
			ImageURL: s.Image,
			Width:    s.Width,
			Height:   s.Height,
		})
	}
	return shots
}

// MapTrailers picks the highest quality video, falling back to 480p
func MapTrailers(resp MoviesResponse) []domain.Trailer {
	trailers := make([]domain.Trailer, 0, len(resp.Results))
	for _, m := range resp.Results {
		video := m.Data.Max
		if video == "" {
			video = m.Data.Low
		}
		trailers = append(trailers, domain.Trailer{
			ID:           m.ID,
			Name:         m.Name,
			ThumbnailURL: m.Preview,
			VideoURL:     video,
		})
	}
	return trailers
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
