package weather

import "time"

// forecastStepHours is the granularity of the forecast feed.
const forecastStepHours = 3

// Summary is the structured payload handed to the response assembler.
type Summary struct {
	Location       string      `json:"location"`
	Kind           Kind        `json:"kind"`
	Period         Period      `json:"period"`
	HorizonDays    int         `json:"horizonDays"`
	Coordinates    Coordinates `json:"coordinates"`
	TimezoneOffset int         `json:"timezoneOffset"`
	Today          Date        `json:"today"`
	Target         Date        `json:"target,omitempty"`

	Current       *CurrentConditions   `json:"current,omitempty"`
	Days          []EnrichedDay        `json:"days,omitempty"`
	Readings      []DailyReading       `json:"readings,omitempty"`
	Reading       *Annotation          `json:"reading,omitempty"`
	Pollutants    *Pollutants          `json:"pollutants,omitempty"`
	Wind          *WindReport          `json:"wind,omitempty"`
	Precipitation *PrecipitationReport `json:"precipitation,omitempty"`
	Sun           *SunTimes            `json:"sun,omitempty"`
	Comparison    *Comparison          `json:"comparison,omitempty"`
	LocalTime     *LocalClock          `json:"localTime,omitempty"`
	Alerts        []AlertReport        `json:"alerts,omitempty"`

	// NoData is set when the primary source answered but had nothing for the requested window.
	NoData bool `json:"noData,omitempty"`
	// Partial lists secondary sources that failed; their annotations are absent.
	Partial []string `json:"partial,omitempty"`
}

// DailyReading is one reduced day of a secondary-only series (UV or air quality outlook).
type DailyReading struct {
	Date       Date       `json:"date"`
	Annotation Annotation `json:"annotation"`
}

// AlertReport is an Alert with its validity window rendered in location-local time.
type AlertReport struct {
	Alert
	StartLocal string `json:"startLocal"`
	EndLocal   string `json:"endLocal"`
}

const alertTimeLayout = "2006-01-02 15:04"

func alertReports(alerts []Alert, utcOffsetSeconds int) []AlertReport {
	out := make([]AlertReport, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertReport{
			Alert:      a,
			StartLocal: LocalTime(a.Start, utcOffsetSeconds).Format(alertTimeLayout),
			EndLocal:   LocalTime(a.End, utcOffsetSeconds).Format(alertTimeLayout),
		})
	}
	return out
}

// WindReport describes wind for a point in time or a forecast day.
type WindReport struct {
	Date          Date       `json:"date"`
	SpeedMS       float64    `json:"speed"`
	SpeedKMH      float64    `json:"speedKmh"`
	DirectionDeg  float64    `json:"directionDeg"`
	Direction     string     `json:"direction"`
	GustMS        float64    `json:"gust"`
	GustKMH       float64    `json:"gustKmh"`
	GustEstimated bool       `json:"gustEstimated,omitempty"`
	Annotation    Annotation `json:"annotation"`
}

// PrecipitationReport aggregates the forecast steps of a window.
type PrecipitationReport struct {
	Date        Date    `json:"date"`
	Probability float64 `json:"probability"`
	RainMM      float64 `json:"rainMm"`
	SnowMM      float64 `json:"snowMm"`
	WetHours    int     `json:"wetHours"`
	Outlook     string  `json:"outlook"`
}

// SunTimes holds local sunrise and sunset clock times.
type SunTimes struct {
	Date            Date   `json:"date"`
	Sunrise         string `json:"sunrise"`
	Sunset          string `json:"sunset"`
	DaylightMinutes int    `json:"daylightMinutes"`
	Approximate     bool   `json:"approximate,omitempty"`
}

// Comparison relates the current temperature to the seasonal average and to tomorrow.
type Comparison struct {
	CurrentTempC     float64  `json:"currentTemperatureC"`
	SeasonalAverageC float64  `json:"seasonalAverageC"`
	Seasonal         string   `json:"seasonal"`
	TomorrowTempC    *float64 `json:"tomorrowTemperatureC,omitempty"`
	DeltaC           *float64 `json:"deltaC,omitempty"`
	Trend            string   `json:"trend,omitempty"`
}

// LocalClock is the wall clock at the location.
type LocalClock struct {
	Date   Date   `json:"date"`
	Time   string `json:"time"`
	Zone   string `json:"zone,omitempty"`
	Source string `json:"source"`
}

func windReport(date Date, w Wind) WindReport {
	gust, estimated := w.SpeedMS*1.5, true
	if w.GustMS != nil {
		gust, estimated = *w.GustMS, false
	}
	return WindReport{
		Date:          date,
		SpeedMS:       w.SpeedMS,
		SpeedKMH:      MSToKMH(w.SpeedMS),
		DirectionDeg:  w.Deg,
		Direction:     CompassPoint(w.Deg),
		GustMS:        gust,
		GustKMH:       MSToKMH(gust),
		GustEstimated: estimated,
		Annotation:    ClassifyWind(w.SpeedMS),
	}
}

func precipitationReport(date Date, points []Sample[ForecastPoint]) PrecipitationReport {
	r := PrecipitationReport{Date: date}
	wetSteps := 0
	for _, p := range points {
		if p.Payload.PrecipProbability > r.Probability {
			r.Probability = p.Payload.PrecipProbability
		}
		if p.Payload.PrecipProbability > 0.2 {
			wetSteps++
		}
		r.RainMM += p.Payload.RainMM
		r.SnowMM += p.Payload.SnowMM
	}
	r.WetHours = wetSteps * forecastStepHours
	r.Outlook = PrecipitationOutlook(r.Probability)
	return r
}

func sunTimes(sunrise, sunset int64, utcOffsetSeconds int, approximate bool) SunTimes {
	return SunTimes{
		Date:            LocalDate(sunrise, utcOffsetSeconds),
		Sunrise:         LocalTime(sunrise, utcOffsetSeconds).Format("15:04"),
		Sunset:          LocalTime(sunset, utcOffsetSeconds).Format("15:04"),
		DaylightMinutes: int((sunset - sunrise) / 60),
		Approximate:     approximate,
	}
}

func comparison(current float64, tomorrow *float64) Comparison {
	c := Comparison{
		CurrentTempC:     current,
		SeasonalAverageC: SeasonalAverageC,
		Seasonal:         SeasonalComparison(current),
	}
	if tomorrow != nil {
		delta := *tomorrow - current
		c.TomorrowTempC = tomorrow
		c.DeltaC = &delta
		c.Trend = TemperatureTrend(delta)
	}
	return c
}

func clockFromZone(z Zone) (LocalClock, bool) {
	t, err := time.Parse("2006-01-02 15:04:05", z.Formatted)
	if err != nil {
		return LocalClock{}, false
	}
	return LocalClock{
		Date:   Date(t.Format(dateLayout)),
		Time:   t.Format("15:04"),
		Zone:   z.Name,
		Source: "timezonedb",
	}, true
}

func clockFromOffset(now time.Time, utcOffsetSeconds int) LocalClock {
	t := LocalTime(now.Unix(), utcOffsetSeconds)
	return LocalClock{
		Date:   Date(t.Format(dateLayout)),
		Time:   t.Format("15:04"),
		Source: "utc_offset",
	}
}
