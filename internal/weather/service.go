package weather

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-assistant/internal/apperrors"
)

const defaultRequestTimeout = 30 * time.Second

// Request is the inbound call issued by the conversational front-end per recognized intent.
type Request struct {
	Location    string `json:"location"`
	Period      Period `json:"period"`
	HorizonDays int    `json:"horizonDays"`
	Kind        Kind   `json:"kind"`
}

func (r Request) normalize() Request {
	r.Location = strings.TrimSpace(r.Location)
	r.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	if r.Kind == "" {
		r.Kind = KindCurrent
	}
	r.Period = Period(strings.ToLower(strings.TrimSpace(string(r.Period))))
	if r.Period != PeriodTomorrow {
		r.Period = PeriodToday
	}
	if r.HorizonDays < 0 {
		r.HorizonDays = 0
	}
	return r
}

// daysAhead is the offset of the target day from today for outlook kinds.
// Zero means "right now".
func (r Request) daysAhead(ceiling int) int {
	ahead := r.HorizonDays
	if r.Period == PeriodTomorrow && ahead < 1 {
		ahead = 1
	}
	return clamp(ahead, 0, ceiling)
}

// Service orchestrates location resolution, concurrent series retrieval and
// temporal aggregation for a single user request.
type Service struct {
	provider Provider
	timezone TimezoneLookup
	probes   ProbeStore
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithTimezoneLookup enables named-timezone lookups for local time summaries.
func WithTimezoneLookup(tz TimezoneLookup) Option {
	return func(s *Service) { s.timezone = tz }
}

// WithProbeStore records provider probe results.
func WithProbeStore(store ProbeStore) Option {
	return func(s *Service) { s.probes = store }
}

// WithRequestTimeout bounds the whole fan-out of one request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service. A nil or unconfigured provider makes every
// summary fail with service_unavailable.
func NewService(provider Provider, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider: provider,
		logger:   logger.With(zap.String("component", "weather.service")),
		timeout:  defaultRequestTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) available() bool {
	return s.provider != nil && s.provider.Configured()
}

// Summary resolves the location, fetches the sources the kind needs and
// returns the aggregated payload.
func (s *Service) Summary(ctx context.Context, req Request) (Summary, error) {
	req = req.normalize()
	if req.Location == "" {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location is required", nil)
	}
	if !s.available() {
		s.logger.Error("weather provider is not configured")
		return Summary{}, apperrors.Wrap(apperrors.CodeServiceUnavailable, "weather service is currently unavailable", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := s.logger.With(zap.String("location", req.Location), zap.String("kind", string(req.Kind)))
	sess := s.provider.NewSession()

	resolved, err := sess.Resolve(ctx, req.Location)
	if err != nil {
		log.Warn("location resolution failed", zap.Error(err))
		return Summary{}, err
	}

	offset := resolved.Current.TimezoneOffset
	sum := Summary{
		Location:       req.Location,
		Kind:           req.Kind,
		Period:         req.Period,
		HorizonDays:    req.HorizonDays,
		Coordinates:    resolved.Coordinates,
		TimezoneOffset: offset,
		Today:          LocalDate(s.now().Unix(), offset),
	}

	switch req.Kind {
	case KindCurrent:
		current := resolved.Current
		sum.Current = &current
	case KindForecast:
		err = s.forecastSummary(ctx, log, sess, req, resolved, &sum)
	case KindUV:
		err = s.uvSummary(ctx, log, sess, req, resolved, &sum)
	case KindAirQuality:
		err = s.airQualitySummary(ctx, log, sess, req, resolved, &sum)
	case KindWind:
		err = s.windSummary(ctx, log, sess, req, resolved, &sum)
	case KindPrecipitation:
		err = s.precipitationSummary(ctx, log, sess, req, resolved, &sum)
	case KindSunriseSunset:
		s.sunSummary(req, resolved, &sum)
	case KindComparison:
		err = s.comparisonSummary(ctx, log, sess, resolved, &sum)
	case KindLocalTime:
		err = s.localTimeSummary(ctx, log, resolved, &sum)
	case KindAlerts:
		err = s.alertsSummary(ctx, log, sess, resolved, &sum)
	default:
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unsupported summary kind "+string(req.Kind), nil)
	}
	if err != nil {
		log.Error("primary source failed", zap.Error(err))
		return Summary{}, err
	}

	log.Info("summary assembled",
		zap.Int("days", len(sum.Days)),
		zap.Bool("no_data", sum.NoData),
		zap.Strings("partial", sum.Partial),
	)
	return sum, nil
}

// fetchTask is one series fetch of the fan-out. Each task writes only to its own
// result variable.
type fetchTask struct {
	source  string
	primary bool
	run     func(ctx context.Context) error
}

func primary(source string, run func(ctx context.Context) error) fetchTask {
	return fetchTask{source: source, primary: true, run: run}
}

func secondary(source string, run func(ctx context.Context) error) fetchTask {
	return fetchTask{source: source, run: run}
}

// fanOut runs every task concurrently and waits for all of them. A failing task
// never cancels the others. The first primary failure (in task order) is
// returned; secondary failures are logged and reported as partial sources.
func (s *Service) fanOut(ctx context.Context, log *zap.Logger, tasks ...fetchTask) ([]string, error) {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(len(tasks))
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			errs[i] = t.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var partial []string
	for i, t := range tasks {
		if errs[i] == nil {
			continue
		}
		if t.primary {
			return nil, errs[i]
		}
		log.Warn("secondary source failed", zap.String("source", t.source), zap.Error(errs[i]))
		partial = append(partial, t.source)
	}
	return partial, nil
}

func (s *Service) forecastSummary(ctx context.Context, log *zap.Logger, sess Session, req Request, r Resolved, sum *Summary) error {
	days := req.HorizonDays
	if days == 0 {
		days = defaultForecastDays
	}
	days = clamp(days, 1, MaxForecastDays)
	sum.HorizonDays = days

	var (
		points []Sample[ForecastPoint]
		uv     []Sample[UVReading]
		air    []Sample[AirReading]
	)
	partial, err := s.fanOut(ctx, log,
		primary("forecast", func(ctx context.Context) (err error) {
			points, err = sess.Forecast(ctx, r.Coordinates)
			return err
		}),
		secondary("uv_forecast", func(ctx context.Context) (err error) {
			uv, err = sess.UVForecast(ctx, r.Coordinates, days)
			return err
		}),
		secondary("air_quality_forecast", func(ctx context.Context) (err error) {
			air, err = sess.AirPollutionForecast(ctx, r.Coordinates)
			return err
		}),
	)
	if err != nil {
		return err
	}

	offset := r.Current.TimezoneOffset
	buckets := BucketByDay(points, offset, days)
	sum.Partial = partial
	sum.Days = Reconcile(buckets,
		Secondary{Kind: AnnotationUV, ByDate: ReduceUV(uv, offset)},
		Secondary{Kind: AnnotationAirQuality, ByDate: ReduceAQI(air, offset)},
		Secondary{Kind: AnnotationWind, ByDate: windByDate(buckets)},
	)
	sum.NoData = len(sum.Days) == 0
	return nil
}

func (s *Service) uvSummary(ctx context.Context, log *zap.Logger, sess Session, req Request, r Resolved, sum *Summary) error {
	offset := r.Current.TimezoneOffset
	ahead := req.daysAhead(MaxUVForecastDays)
	sum.HorizonDays = ahead

	if ahead == 0 {
		var reading Sample[UVReading]
		if _, err := s.fanOut(ctx, log, primary("uv_index", func(ctx context.Context) (err error) {
			reading, err = sess.UVIndex(ctx, r.Coordinates)
			return err
		})); err != nil {
			return err
		}
		a := ClassifyUV(reading.Payload.Value)
		sum.Target = sum.Today
		sum.Reading = &a
		return nil
	}

	var series []Sample[UVReading]
	if _, err := s.fanOut(ctx, log, primary("uv_forecast", func(ctx context.Context) (err error) {
		series, err = sess.UVForecast(ctx, r.Coordinates, ahead+1)
		return err
	})); err != nil {
		return err
	}

	buckets := BucketByDay(series, offset, ahead+1)
	byDate := ReduceUV(series, offset)
	sum.Readings = dailyReadings(buckets, byDate)
	sum.Target = sum.Today.AddDays(ahead)
	if a, ok := byDate[sum.Target]; ok {
		sum.Reading = &a
	} else {
		sum.NoData = true
	}
	return nil
}

func (s *Service) airQualitySummary(ctx context.Context, log *zap.Logger, sess Session, req Request, r Resolved, sum *Summary) error {
	offset := r.Current.TimezoneOffset
	ahead := req.daysAhead(MaxAirForecastDays)
	sum.HorizonDays = ahead

	if ahead == 0 {
		var series []Sample[AirReading]
		if _, err := s.fanOut(ctx, log, primary("air_quality", func(ctx context.Context) (err error) {
			series, err = sess.AirPollution(ctx, r.Coordinates)
			return err
		})); err != nil {
			return err
		}
		sum.Target = sum.Today
		if len(series) == 0 {
			sum.NoData = true
			return nil
		}
		a := ClassifyAQI(series[0].Payload.AQI)
		p := series[0].Payload.Pollutants
		sum.Reading = &a
		sum.Pollutants = &p
		return nil
	}

	var series []Sample[AirReading]
	if _, err := s.fanOut(ctx, log, primary("air_quality_forecast", func(ctx context.Context) (err error) {
		series, err = sess.AirPollutionForecast(ctx, r.Coordinates)
		return err
	})); err != nil {
		return err
	}

	buckets := BucketByDay(series, offset, ahead+1)
	byDate := ReduceAQI(series, offset)
	sum.Readings = dailyReadings(buckets, byDate)
	sum.Target = sum.Today.AddDays(ahead)

	target, ok := findBucket(buckets, sum.Target)
	if !ok {
		sum.NoData = true
		return nil
	}
	a := byDate[target.Date]
	p := target.Representative.Payload.Pollutants
	sum.Reading = &a
	sum.Pollutants = &p
	return nil
}

func (s *Service) windSummary(ctx context.Context, log *zap.Logger, sess Session, req Request, r Resolved, sum *Summary) error {
	offset := r.Current.TimezoneOffset
	if req.Period == PeriodToday {
		w := windReport(sum.Today, r.Current.Wind)
		sum.Target = sum.Today
		sum.Wind = &w
		return nil
	}

	points, err := s.fetchForecast(ctx, log, sess, r)
	if err != nil {
		return err
	}
	sum.Target = sum.Today.AddDays(1)
	b, ok := findBucket(groupByDay(points, offset), sum.Target)
	if !ok {
		sum.NoData = true
		return nil
	}
	p := b.Representative.Payload
	w := windReport(b.Date, Wind{SpeedMS: p.WindSpeedMS, Deg: p.WindDeg, GustMS: p.WindGustMS})
	sum.Wind = &w
	return nil
}

func (s *Service) precipitationSummary(ctx context.Context, log *zap.Logger, sess Session, req Request, r Resolved, sum *Summary) error {
	offset := r.Current.TimezoneOffset
	points, err := s.fetchForecast(ctx, log, sess, r)
	if err != nil {
		return err
	}

	var window []Sample[ForecastPoint]
	if req.Period == PeriodToday {
		sum.Target = sum.Today
		horizon := s.now().Unix() + secondsPerDay
		for _, p := range points {
			if p.Epoch < horizon {
				window = append(window, p)
			}
		}
	} else {
		sum.Target = sum.Today.AddDays(1)
		if b, ok := findBucket(groupByDay(points, offset), sum.Target); ok {
			window = b.Members
		}
	}

	if len(window) == 0 {
		sum.NoData = true
		return nil
	}
	report := precipitationReport(sum.Target, window)
	sum.Precipitation = &report
	return nil
}

func (s *Service) sunSummary(req Request, r Resolved, sum *Summary) {
	c := r.Current
	if c.Sunrise == 0 || c.Sunset == 0 {
		sum.NoData = true
		return
	}
	if req.Period == PeriodToday {
		sun := sunTimes(c.Sunrise, c.Sunset, c.TimezoneOffset, false)
		sum.Target = sun.Date
		sum.Sun = &sun
		return
	}
	sun := sunTimes(c.Sunrise+secondsPerDay, c.Sunset+secondsPerDay, c.TimezoneOffset, true)
	sum.Target = sun.Date
	sum.Sun = &sun
}

func (s *Service) comparisonSummary(ctx context.Context, log *zap.Logger, sess Session, r Resolved, sum *Summary) error {
	offset := r.Current.TimezoneOffset
	var points []Sample[ForecastPoint]
	partial, err := s.fanOut(ctx, log, secondary("forecast", func(ctx context.Context) (err error) {
		points, err = sess.Forecast(ctx, r.Coordinates)
		return err
	}))
	if err != nil {
		return err
	}
	sum.Partial = partial

	current := r.Current
	sum.Current = &current
	sum.Target = sum.Today.AddDays(1)

	var tomorrow *float64
	if b, ok := findBucket(groupByDay(points, offset), sum.Target); ok && len(partial) == 0 {
		t := b.Representative.Payload.TempC
		tomorrow = &t
	}
	c := comparison(current.TempC, tomorrow)
	sum.Comparison = &c
	return nil
}

func (s *Service) localTimeSummary(ctx context.Context, log *zap.Logger, r Resolved, sum *Summary) error {
	if s.timezone != nil {
		var zone Zone
		partial, err := s.fanOut(ctx, log, secondary("timezone", func(ctx context.Context) (err error) {
			zone, err = s.timezone.Lookup(ctx, r.Coordinates)
			return err
		}))
		if err != nil {
			return err
		}
		sum.Partial = partial
		if len(partial) == 0 {
			if clock, ok := clockFromZone(zone); ok {
				sum.LocalTime = &clock
				sum.Target = clock.Date
				return nil
			}
			log.Warn("timezone lookup returned an unparseable time", zap.String("formatted", zone.Formatted))
		}
	}

	clock := clockFromOffset(s.now(), r.Current.TimezoneOffset)
	sum.LocalTime = &clock
	sum.Target = clock.Date
	return nil
}

func (s *Service) alertsSummary(ctx context.Context, log *zap.Logger, sess Session, r Resolved, sum *Summary) error {
	var alerts []Alert
	_, err := s.fanOut(ctx, log, primary("alerts", func(ctx context.Context) (err error) {
		alerts, err = sess.Alerts(ctx, r.Coordinates)
		return err
	}))
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		sum.NoData = true
		return nil
	}
	sum.Alerts = alertReports(alerts, r.Current.TimezoneOffset)
	return nil
}

func (s *Service) fetchForecast(ctx context.Context, log *zap.Logger, sess Session, r Resolved) ([]Sample[ForecastPoint], error) {
	var points []Sample[ForecastPoint]
	_, err := s.fanOut(ctx, log, primary("forecast", func(ctx context.Context) (err error) {
		points, err = sess.Forecast(ctx, r.Coordinates)
		return err
	}))
	return points, err
}

// Probe checks that the provider can resolve location and records the result.
func (s *Service) Probe(ctx context.Context, location string) ProbeResult {
	start := s.now()
	res := ProbeResult{Location: location, Timestamp: start.UTC()}

	if !s.available() {
		res.Code = apperrors.CodeServiceUnavailable
	} else if _, err := s.provider.NewSession().Resolve(ctx, location); err != nil {
		res.Code = apperrors.CodeOf(err)
		s.logger.Warn("provider probe failed", zap.String("location", location), zap.Error(err))
	} else {
		res.OK = true
	}
	res.Latency = s.now().Sub(start)

	if s.probes != nil {
		s.probes.SaveProbe(res)
	}
	return res
}

// LatestProbe returns the most recent probe for location, if any was recorded.
func (s *Service) LatestProbe(location string) (ProbeResult, bool) {
	if s.probes == nil {
		return ProbeResult{}, false
	}
	res, err := s.probes.Latest(location)
	if err != nil {
		return ProbeResult{}, false
	}
	return res, true
}

// ProbeHistory returns the recorded probes for location between from and to (inclusive).
func (s *Service) ProbeHistory(location string, from, to time.Time) ([]ProbeResult, error) {
	if s.probes == nil {
		return nil, nil
	}
	return s.probes.Range(location, from, to)
}

func dailyReadings[T any](buckets []DayBucket[T], byDate map[Date]Annotation) []DailyReading {
	out := make([]DailyReading, 0, len(buckets))
	for _, b := range buckets {
		if a, ok := byDate[b.Date]; ok {
			out = append(out, DailyReading{Date: b.Date, Annotation: a})
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
