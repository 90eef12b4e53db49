package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bbernstein/chargemap/internal/models"
)

const (
	kakaoDirectionsBase = "https://map.kakao.com/link/to/"
	naverSearchBase     = "https://search.naver.com/search.naver"
)

// DirectionsLink returns a Kakao Map directions link for a resolved station.
func DirectionsLink(s models.ResolvedStation) (string, bool) {
	if s.Coordinate == nil {
		return "", false
	}
	return fmt.Sprintf("%s%s,%s,%s",
		kakaoDirectionsBase,
		url.PathEscape(s.Name),
		strconv.FormatFloat(s.Coordinate.Lat, 'f', -1, 64),
		strconv.FormatFloat(s.Coordinate.Lon, 'f', -1, 64),
	), true
}

// SearchLink returns a Naver search link for the station name, dropping any
// parenthesised address suffix.
func SearchLink(s models.ResolvedStation) string {
	query := s.Name
	if i := strings.Index(query, "("); i >= 0 {
		query = query[:i]
	}
	return naverSearchBase + "?" + url.Values{"query": {strings.TrimSpace(query)}}.Encode()
}
