package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-assistant/internal/apperrors"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// DefaultTimezoneDBBaseURL is the TimezoneDB v2.1 API root.
const DefaultTimezoneDBBaseURL = "http://api.timezonedb.com/v2.1"

// TimezoneDB implements weather.TimezoneLookup against timezonedb.com.
type TimezoneDB struct {
	apiKey  string
	baseURL string
	fetcher *Fetcher
}

func NewTimezoneDB(fetcher *Fetcher, apiKey, baseURL string) *TimezoneDB {
	if baseURL == "" {
		baseURL = DefaultTimezoneDBBaseURL
	}
	return &TimezoneDB{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

func (t *TimezoneDB) Configured() bool {
	return t.apiKey != "" && t.fetcher != nil
}

// Lookup returns the zone of the position and its current wall clock.
func (t *TimezoneDB) Lookup(ctx context.Context, coords weather.Coordinates) (weather.Zone, error) {
	if !t.Configured() {
		return weather.Zone{}, apperrors.Wrap(apperrors.CodeServiceUnavailable, "timezonedb api key is not configured", nil)
	}

	values := url.Values{}
	values.Set("key", t.apiKey)
	values.Set("format", "json")
	values.Set("by", "position")
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lng", strconv.FormatFloat(coords.Lon, 'f', -1, 64))

	o := t.fetcher.Scoped("timezonedb").Fetch(ctx, fmt.Sprintf("%s/get-time-zone?%s", t.baseURL, values.Encode()))
	if o.Kind != OutcomeSuccess {
		return weather.Zone{}, o.Err("timezonedb")
	}

	var payload struct {
		Status       string `json:"status"`
		Message      string `json:"message"`
		ZoneName     string `json:"zoneName"`
		Abbreviation string `json:"abbreviation"`
		GmtOffset    int    `json:"gmtOffset"`
		Formatted    string `json:"formatted"`
	}
	if err := json.Unmarshal(o.Body, &payload); err != nil {
		return weather.Zone{}, malformed("timezonedb", err)
	}
	if payload.Status != "OK" {
		return weather.Zone{}, apperrors.Wrap(apperrors.CodePermanentFailure, "timezonedb lookup failed: "+payload.Message, nil)
	}

	return weather.Zone{
		Name:          payload.ZoneName,
		Abbreviation:  payload.Abbreviation,
		OffsetSeconds: payload.GmtOffset,
		Formatted:     payload.Formatted,
	}, nil
}
