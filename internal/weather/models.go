package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Kind selects which summary the front-end wants.
type Kind string

const (
	KindCurrent       Kind = "current"
	KindForecast      Kind = "forecast"
	KindUV            Kind = "uv"
	KindAirQuality    Kind = "air_quality"
	KindWind          Kind = "wind"
	KindPrecipitation Kind = "precipitation"
	KindSunriseSunset Kind = "sunrise_sunset"
	KindComparison    Kind = "comparison"
	KindLocalTime     Kind = "local_time"
	KindAlerts        Kind = "alerts"
)

// Period is the coarse time slot extracted by the front-end.
type Period string

const (
	PeriodToday    Period = "today"
	PeriodTomorrow Period = "tomorrow"
)

// Provider-imposed horizon ceilings.
const (
	MaxForecastDays     = 3
	MaxUVForecastDays   = 5
	MaxAirForecastDays  = 4
	secondsPerDay       = 24 * 60 * 60
	defaultForecastDays = 3
)

// Coordinates of a resolved location. Resolved once per request.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Date is a calendar date in the location's local day, formatted 2006-01-02.
type Date string

const dateLayout = "2006-01-02"

// LocalTime shifts a provider epoch by the location's UTC offset. The result is
// expressed in UTC so that its wall clock reads as local time.
func LocalTime(epoch int64, utcOffsetSeconds int) time.Time {
	return time.Unix(epoch+int64(utcOffsetSeconds), 0).UTC()
}

// LocalDate returns the calendar date of epoch in the location's local day.
func LocalDate(epoch int64, utcOffsetSeconds int) Date {
	return Date(LocalTime(epoch, utcOffsetSeconds).Format(dateLayout))
}

// AddDays returns the date n days after d. Invalid dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

// Sample is a single provider-timestamped point of any series.
type Sample[T any] struct {
	Epoch   int64 `json:"epoch"`
	Payload T     `json:"payload"`
}

// LocalHour returns the hour of day of the sample in the location's local day.
func (s Sample[T]) LocalHour(utcOffsetSeconds int) int {
	return LocalTime(s.Epoch, utcOffsetSeconds).Hour()
}

// DayBucket groups the samples of one local calendar day.
type DayBucket[T any] struct {
	Date           Date        `json:"date"`
	Representative Sample[T]   `json:"representative"`
	Members        []Sample[T] `json:"members"`
}

// ForecastPoint is one 3-hour step of the forecast feed.
type ForecastPoint struct {
	TempC             float64   `json:"temperatureC"`
	FeelsLikeC        float64   `json:"feelsLikeC"`
	HumidityPct       float64   `json:"humidityPercent"`
	Description       string    `json:"description"`
	Condition         Condition `json:"condition"`
	WindSpeedMS       float64   `json:"windSpeed"`
	WindDeg           float64   `json:"windDeg"`
	WindGustMS        *float64  `json:"windGust,omitempty"`
	PrecipProbability float64   `json:"precipProbability"`
	RainMM            float64   `json:"rainMm"`
	SnowMM            float64   `json:"snowMm"`
}

// UVReading is one value of the UV index feeds.
type UVReading struct {
	Value float64 `json:"value"`
}

// AirReading is one point of the air pollution feeds.
type AirReading struct {
	AQI        int        `json:"aqi"`
	Pollutants Pollutants `json:"pollutants"`
}

// Pollutants holds concentrations in μg/m³.
type Pollutants struct {
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
}

// Alert is one severe weather warning issued for a position. Start and End are
// UTC epoch seconds.
type Alert struct {
	Event       string `json:"event"`
	Sender      string `json:"sender"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Description string `json:"description"`
}

// AnnotationKind names a secondary source attached to a day.
type AnnotationKind string

const (
	AnnotationUV         AnnotationKind = "uv"
	AnnotationAirQuality AnnotationKind = "air_quality"
	AnnotationWind       AnnotationKind = "wind"
)

// Annotation is a classified reading.
type Annotation struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
	Advice   string  `json:"advice"`
}

// EnrichedDay is a forecast day plus whatever secondary annotations matched its date.
type EnrichedDay struct {
	Date           Date                          `json:"date"`
	Representative Sample[ForecastPoint]         `json:"representative"`
	Members        []Sample[ForecastPoint]       `json:"members"`
	Annotations    map[AnnotationKind]Annotation `json:"annotations,omitempty"`
}

// Annotation returns the annotation of the given kind, if one was attached.
func (d EnrichedDay) Annotation(kind AnnotationKind) (Annotation, bool) {
	a, ok := d.Annotations[kind]
	return a, ok
}

// Wind is the raw wind reading of the current-conditions feed.
type Wind struct {
	SpeedMS float64  `json:"speed"`
	Deg     float64  `json:"deg"`
	GustMS  *float64 `json:"gust,omitempty"`
}

// CurrentConditions is the parsed current-conditions payload.
type CurrentConditions struct {
	Name           string    `json:"name"`
	Epoch          int64     `json:"epoch"`
	TempC          float64   `json:"temperatureC"`
	FeelsLikeC     float64   `json:"feelsLikeC"`
	HumidityPct    float64   `json:"humidityPercent"`
	PressureHpa    float64   `json:"pressureHpa"`
	Description    string    `json:"description"`
	Condition      Condition `json:"condition"`
	Wind           Wind      `json:"wind"`
	Sunrise        int64     `json:"sunrise"`
	Sunset         int64     `json:"sunset"`
	TimezoneOffset int       `json:"timezoneOffset"`
}

// Resolved is the outcome of location resolution: coordinates plus the
// current-conditions payload they were read from.
type Resolved struct {
	Coordinates Coordinates       `json:"coordinates"`
	Current     CurrentConditions `json:"current"`
}

// Zone is a timezone lookup result.
type Zone struct {
	Name          string `json:"zoneName"`
	Abbreviation  string `json:"abbreviation"`
	OffsetSeconds int    `json:"gmtOffset"`
	Formatted     string `json:"formatted"`
}

// ProbeResult records one provider reachability check.
type ProbeResult struct {
	Location  string        `json:"location"`
	Timestamp time.Time     `json:"timestamp"` // always UTC
	OK        bool          `json:"ok"`
	Code      string        `json:"code,omitempty"`
	Latency   time.Duration `json:"latencyNs"`
}
