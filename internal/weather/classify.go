package weather

import "math"

// SeasonalAverageC is the reference temperature for the seasonal comparison.
const SeasonalAverageC = 22.0

type uvBand struct {
	upper    float64
	category string
	advice   string
}

var uvBands = []uvBand{
	{3, "Low", "No protection required for most people."},
	{6, "Moderate", "Wear sunscreen, a hat, and sunglasses. Seek shade during midday hours."},
	{8, "High", "Wear sunscreen SPF 30+, protective clothing, a hat, and sunglasses. Reduce time in the sun between 10 AM and 4 PM."},
	{11, "Very High", "Wear SPF 30+ sunscreen, protective clothing, a wide-brim hat, and UV-blocking sunglasses. Try to avoid sun exposure between 10 AM and 4 PM."},
	{math.Inf(1), "Extreme", "Take all precautions: SPF 30+ sunscreen, protective clothing, wide-brim hat, and UV-blocking sunglasses. Avoid sun exposure as much as possible."},
}

// ClassifyUV maps a UV index to its WHO exposure category. Negative and NaN
// readings are treated as Low.
func ClassifyUV(value float64) Annotation {
	band := uvBands[0]
	if !math.IsNaN(value) {
		for _, b := range uvBands {
			if value < b.upper {
				band = b
				break
			}
		}
	}
	return Annotation{Value: value, Category: band.category, Advice: band.advice}
}

var aqiLevels = map[int]Annotation{
	1: {Value: 1, Category: "Good", Advice: "Air quality is considered satisfactory, and air pollution poses little or no risk."},
	2: {Value: 2, Category: "Fair", Advice: "Air quality is acceptable; however, for some pollutants there may be a moderate health concern for a very small number of people who are unusually sensitive to air pollution."},
	3: {Value: 3, Category: "Moderate", Advice: "Members of sensitive groups may experience health effects. The general public is not likely to be affected."},
	4: {Value: 4, Category: "Poor", Advice: "Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects."},
	5: {Value: 5, Category: "Very Poor", Advice: "Health warnings of emergency conditions. The entire population is more likely to be affected."},
}

// ClassifyAQI maps the provider's 1-5 air quality index. Anything else is Unknown.
func ClassifyAQI(aqi int) Annotation {
	if a, ok := aqiLevels[aqi]; ok {
		return a
	}
	return Annotation{Value: float64(aqi), Category: "Unknown", Advice: "Health implications unknown."}
}

type windBand struct {
	upper float64
	label string
}

// Beaufort scale upper bounds in m/s.
var beaufort = []windBand{
	{0.5, "Calm"},
	{1.5, "Light air"},
	{3.3, "Light breeze"},
	{5.5, "Gentle breeze"},
	{7.9, "Moderate breeze"},
	{10.7, "Fresh breeze"},
	{13.8, "Strong breeze"},
	{17.1, "High wind"},
	{20.7, "Gale"},
	{24.4, "Strong gale"},
	{28.4, "Storm"},
	{32.6, "Violent storm"},
	{math.Inf(1), "Hurricane force"},
}

var windActivity = []windBand{
	{5.5, "Perfect for most outdoor activities."},
	{10.7, "Good for most activities, but might affect precision sports."},
	{17.1, "Challenging for cycling and some outdoor activities."},
	{24.4, "Not recommended for most outdoor activities."},
	{math.Inf(1), "Dangerous conditions - stay indoors."},
}

func lookupBand(bands []windBand, v float64) string {
	if math.IsNaN(v) {
		return bands[0].label
	}
	for _, b := range bands {
		if v < b.upper {
			return b.label
		}
	}
	return bands[len(bands)-1].label
}

// DescribeWind returns the Beaufort descriptor for a wind speed in m/s.
func DescribeWind(speedMS float64) string {
	return lookupBand(beaufort, speedMS)
}

// WindRecommendation returns the outdoor-activity advice for a wind speed in m/s.
func WindRecommendation(speedMS float64) string {
	return lookupBand(windActivity, speedMS)
}

// ClassifyWind combines the descriptor and recommendation into an Annotation.
func ClassifyWind(speedMS float64) Annotation {
	return Annotation{
		Value:    speedMS,
		Category: DescribeWind(speedMS),
		Advice:   WindRecommendation(speedMS),
	}
}

var compassPoints = [16]string{
	"North", "North-Northeast", "Northeast", "East-Northeast",
	"East", "East-Southeast", "Southeast", "South-Southeast",
	"South", "South-Southwest", "Southwest", "West-Southwest",
	"West", "West-Northwest", "Northwest", "North-Northwest",
}

// CompassPoint maps a bearing in degrees to one of 16 compass points.
func CompassPoint(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return compassPoints[0]
	}
	idx := int(math.Round(deg/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}

// MSToKMH converts m/s to km/h.
func MSToKMH(speedMS float64) float64 {
	return speedMS * 3.6
}

// PrecipitationOutlook maps a probability of precipitation (0..1) to advice.
func PrecipitationOutlook(pop float64) string {
	switch {
	case pop > 0.5:
		return "Prepare for wet conditions"
	case pop > 0.2:
		return "Some precipitation possible"
	default:
		return "No significant precipitation expected"
	}
}

// SeasonalComparison describes a temperature relative to SeasonalAverageC.
func SeasonalComparison(tempC float64) string {
	diff := tempC - SeasonalAverageC
	switch {
	case math.Abs(diff) < 2:
		return "about average"
	case diff > 5:
		return "much warmer"
	case diff > 0:
		return "warmer"
	case diff < -5:
		return "much colder"
	default:
		return "colder"
	}
}

// TemperatureTrend describes the change from one temperature to the next.
func TemperatureTrend(deltaC float64) string {
	switch {
	case math.Abs(deltaC) < 1:
		return "about the same"
	case deltaC > 0:
		return "warmer"
	default:
		return "cooler"
	}
}
