package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-assistant/internal/apperrors"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	fetcher *Fetcher
	logger  *zap.Logger
}

func NewOpenWeatherProvider(fetcher *Fetcher, apiKey, baseURL string, logger *zap.Logger) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		logger:  logger.With(zap.String("component", "openweather")),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Configured() bool {
	return p.apiKey != "" && p.fetcher != nil
}

func (p *OpenWeatherProvider) NewSession() weather.Session {
	return &openWeatherSession{p: p, fetch: p.fetcher.Scoped(p.name)}
}

type openWeatherSession struct {
	p     *OpenWeatherProvider
	fetch *ScopedFetcher
}

func (s *openWeatherSession) endpoint(path string, values url.Values) string {
	values.Set("appid", s.p.apiKey)
	return fmt.Sprintf("%s/%s?%s", s.p.baseURL, path, values.Encode())
}

func coordValues(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	return values
}

// get fetches path and decodes a successful body into out.
func (s *openWeatherSession) get(ctx context.Context, source, path string, values url.Values, out interface{}) error {
	o := s.fetch.Fetch(ctx, s.endpoint(path, values))
	if o.Kind != OutcomeSuccess {
		return o.Err(source)
	}
	if err := json.Unmarshal(o.Body, out); err != nil {
		return malformed(source, err)
	}
	return nil
}

func malformed(source string, err error) error {
	return apperrors.Wrap(apperrors.CodeContractViolation, source+" payload is malformed", err)
}

var errMissingList = errors.New("missing list field")

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmWind struct {
	Speed float64  `json:"speed"`
	Deg   float64  `json:"deg"`
	Gust  *float64 `json:"gust"`
}

type owmCurrent struct {
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
	Name    string         `json:"name"`
	Dt      int64          `json:"dt"`
	Weather []owmCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind owmWind `json:"wind"`
	Sys  struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// Resolve looks the location up through the current-conditions feed. The feed is
// fetched once; its parsed payload is returned with the coordinates.
func (s *openWeatherSession) Resolve(ctx context.Context, location string) (weather.Resolved, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("units", "metric")

	o := s.fetch.Fetch(ctx, s.endpoint("weather", values))
	switch {
	case o.Kind == OutcomeSuccess:
	case o.Kind == OutcomeNotFound, o.Kind == OutcomePermanent && o.StatusCode == http.StatusBadRequest:
		return weather.Resolved{}, apperrors.Wrap(apperrors.CodeLocationNotFound, fmt.Sprintf("location %q not found", location), nil)
	default:
		return weather.Resolved{}, apperrors.Wrap(apperrors.CodeServiceUnavailable, "weather service is currently unavailable", o.Err("current weather"))
	}

	var payload owmCurrent
	if err := json.Unmarshal(o.Body, &payload); err != nil {
		return weather.Resolved{}, malformed("current weather", err)
	}
	if payload.Coord == nil || payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		s.p.logger.Error("current weather payload has no coordinates", zap.String("location", location))
		return weather.Resolved{}, apperrors.Wrap(apperrors.CodeContractViolation, "current weather payload has no coordinates", nil)
	}

	desc, cond := describe(payload.Weather)
	return weather.Resolved{
		Coordinates: weather.Coordinates{Lat: *payload.Coord.Lat, Lon: *payload.Coord.Lon},
		Current: weather.CurrentConditions{
			Name:        payload.Name,
			Epoch:       payload.Dt,
			TempC:       payload.Main.Temp,
			FeelsLikeC:  payload.Main.FeelsLike,
			HumidityPct: payload.Main.Humidity,
			PressureHpa: payload.Main.Pressure,
			Description: desc,
			Condition:   cond,
			Wind: weather.Wind{
				SpeedMS: payload.Wind.Speed,
				Deg:     payload.Wind.Deg,
				GustMS:  payload.Wind.Gust,
			},
			Sunrise:        payload.Sys.Sunrise,
			Sunset:         payload.Sys.Sunset,
			TimezoneOffset: payload.Timezone,
		},
	}, nil
}

type owmVolume struct {
	ThreeH float64 `json:"3h"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
		Wind    owmWind        `json:"wind"`
		Pop     float64        `json:"pop"`
		Rain    *owmVolume     `json:"rain"`
		Snow    *owmVolume     `json:"snow"`
	} `json:"list"`
}

// Forecast fetches the 5 day / 3 hour forecast.
func (s *openWeatherSession) Forecast(ctx context.Context, coords weather.Coordinates) ([]weather.Sample[weather.ForecastPoint], error) {
	values := coordValues(coords)
	values.Set("units", "metric")

	var payload owmForecast
	if err := s.get(ctx, "forecast", "forecast", values, &payload); err != nil {
		return nil, err
	}
	if payload.List == nil {
		return nil, malformed("forecast", errMissingList)
	}

	out := make([]weather.Sample[weather.ForecastPoint], 0, len(payload.List))
	for _, item := range payload.List {
		desc, cond := describe(item.Weather)
		point := weather.ForecastPoint{
			TempC:             item.Main.Temp,
			FeelsLikeC:        item.Main.FeelsLike,
			HumidityPct:       item.Main.Humidity,
			Description:       desc,
			Condition:         cond,
			WindSpeedMS:       item.Wind.Speed,
			WindDeg:           item.Wind.Deg,
			WindGustMS:        item.Wind.Gust,
			PrecipProbability: item.Pop,
		}
		if item.Rain != nil {
			point.RainMM = item.Rain.ThreeH
		}
		if item.Snow != nil {
			point.SnowMM = item.Snow.ThreeH
		}
		out = append(out, weather.Sample[weather.ForecastPoint]{Epoch: item.Dt, Payload: point})
	}
	return out, nil
}

type owmUV struct {
	Date  int64    `json:"date"`
	Value *float64 `json:"value"`
}

func (u owmUV) sample(source string) (weather.Sample[weather.UVReading], error) {
	if u.Value == nil {
		return weather.Sample[weather.UVReading]{}, malformed(source, errors.New("missing value field"))
	}
	return weather.Sample[weather.UVReading]{Epoch: u.Date, Payload: weather.UVReading{Value: *u.Value}}, nil
}

// UVIndex fetches the current UV index.
func (s *openWeatherSession) UVIndex(ctx context.Context, coords weather.Coordinates) (weather.Sample[weather.UVReading], error) {
	var payload owmUV
	if err := s.get(ctx, "uv index", "uvi", coordValues(coords), &payload); err != nil {
		return weather.Sample[weather.UVReading]{}, err
	}
	return payload.sample("uv index")
}

// UVForecast fetches days daily UV index values.
func (s *openWeatherSession) UVForecast(ctx context.Context, coords weather.Coordinates, days int) ([]weather.Sample[weather.UVReading], error) {
	values := coordValues(coords)
	if days > 0 {
		values.Set("cnt", strconv.Itoa(days))
	}

	var payload []owmUV
	if err := s.get(ctx, "uv forecast", "uvi/forecast", values, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, malformed("uv forecast", errMissingList)
	}

	out := make([]weather.Sample[weather.UVReading], 0, len(payload))
	for _, item := range payload {
		sample, err := item.sample("uv forecast")
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, nil
}

type owmAirPollution struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
		} `json:"components"`
	} `json:"list"`
}

// AirPollution fetches current air quality.
func (s *openWeatherSession) AirPollution(ctx context.Context, coords weather.Coordinates) ([]weather.Sample[weather.AirReading], error) {
	return s.air(ctx, "air quality", "air_pollution", coords)
}

// AirPollutionForecast fetches the hourly air quality forecast.
func (s *openWeatherSession) AirPollutionForecast(ctx context.Context, coords weather.Coordinates) ([]weather.Sample[weather.AirReading], error) {
	return s.air(ctx, "air quality forecast", "air_pollution/forecast", coords)
}

func (s *openWeatherSession) air(ctx context.Context, source, path string, coords weather.Coordinates) ([]weather.Sample[weather.AirReading], error) {
	var payload owmAirPollution
	if err := s.get(ctx, source, path, coordValues(coords), &payload); err != nil {
		return nil, err
	}
	if payload.List == nil {
		return nil, malformed(source, errMissingList)
	}

	out := make([]weather.Sample[weather.AirReading], 0, len(payload.List))
	for _, item := range payload.List {
		out = append(out, weather.Sample[weather.AirReading]{
			Epoch: item.Dt,
			Payload: weather.AirReading{
				AQI: item.Main.AQI,
				Pollutants: weather.Pollutants{
					PM25: item.Components.PM25,
					PM10: item.Components.PM10,
					NO2:  item.Components.NO2,
					O3:   item.Components.O3,
				},
			},
		})
	}
	return out, nil
}

type owmOneCall struct {
	Alerts []struct {
		SenderName  string `json:"sender_name"`
		Event       string `json:"event"`
		Start       int64  `json:"start"`
		End         int64  `json:"end"`
		Description string `json:"description"`
	} `json:"alerts"`
}

// Alerts fetches active severe weather alerts from the One Call feed. The feed
// omits the alerts field when nothing is in effect.
func (s *openWeatherSession) Alerts(ctx context.Context, coords weather.Coordinates) ([]weather.Alert, error) {
	values := coordValues(coords)
	values.Set("exclude", "current,minutely,hourly,daily")

	var payload owmOneCall
	if err := s.get(ctx, "alerts", "onecall", values, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Alert, 0, len(payload.Alerts))
	for _, a := range payload.Alerts {
		out = append(out, weather.Alert{
			Event:       a.Event,
			Sender:      a.SenderName,
			Start:       a.Start,
			End:         a.End,
			Description: strings.TrimSpace(a.Description),
		})
	}
	return out, nil
}

func describe(items []owmCondition) (string, weather.Condition) {
	if len(items) == 0 {
		return "", weather.ConditionUnknown
	}
	return items[0].Description, mapOpenWeatherCondition(items[0].Main)
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
