// Package evaluator runs the rule and built-in anomaly passes that turn
// recent readings into candidate alerts.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/campuskit/utilitrack/internal/alert/domain"
	alertruledomain "github.com/campuskit/utilitrack/internal/alertrule/domain"
	"github.com/campuskit/utilitrack/internal/analytics"
	buildingdomain "github.com/campuskit/utilitrack/internal/building/domain"
	"github.com/campuskit/utilitrack/internal/clock"
	"github.com/campuskit/utilitrack/internal/config"
	obsmetrics "github.com/campuskit/utilitrack/internal/observability/metrics"
	readingdomain "github.com/campuskit/utilitrack/internal/reading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrSourceUnavailable wraps upstream reading/rule fetch failures. The
// evaluator performs no retries; the scheduler sweeps again next tick.
var ErrSourceUnavailable = errors.New("source_unavailable")

const pairLockTTL = 30 * time.Second

// Config tunes the built-in anomaly pass.
type Config struct {
	ZScoreThreshold     float64
	MovingWindowDays    int
	SpikeMinSamples     int
	ContinuousHighCount int
	ContinuousHighRatio float64
}

func (c Config) withDefaults() Config {
	if c.ZScoreThreshold <= 0 {
		c.ZScoreThreshold = analytics.DefaultZScoreThreshold
	}
	if c.MovingWindowDays <= 0 {
		c.MovingWindowDays = analytics.DefaultMovingWindow
	}
	if c.SpikeMinSamples <= 0 {
		c.SpikeMinSamples = 3
	}
	if c.ContinuousHighCount <= 0 {
		c.ContinuousHighCount = 3
	}
	if c.ContinuousHighRatio <= 0 {
		c.ContinuousHighRatio = 0.8
	}
	return c
}

// FromAppConfig maps the application engine settings onto evaluator config.
func FromAppConfig(appCfg config.Config) Config {
	return Config{
		ZScoreThreshold:     appCfg.Engine.ZScoreThreshold,
		MovingWindowDays:    appCfg.Engine.MovingWindowDays,
		SpikeMinSamples:     appCfg.Engine.SpikeMinSamples,
		ContinuousHighCount: appCfg.Engine.ContinuousHighCount,
		ContinuousHighRatio: appCfg.Engine.ContinuousHighRatio,
	}
}

type Params struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Readings  readingdomain.Source
	Rules     alertruledomain.Source
	Buildings buildingdomain.Repository
	Alerts    alertdomain.Sink
	Streaks   StreakStore
	Locker    *Locker             `optional:"true"`
	Metrics   *obsmetrics.Metrics `optional:"true"`
	Config    Config              `optional:"true"`
}

// Evaluator runs one synchronous pass per (building, utility) pair. Passes
// for different pairs are independent; same-pair passes are serialized by a
// keyed mutex (and the optional redis lock across instances) so the
// single-pending-alert invariant holds.
type Evaluator struct {
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	readings  readingdomain.Source
	rules     alertruledomain.Source
	buildings buildingdomain.Repository
	alerts    alertdomain.Sink
	streaks   StreakStore
	locker    *Locker
	metrics   *obsmetrics.Metrics
	cfg       Config

	pairs *pairMutex
}

func New(p Params) *Evaluator {
	return &Evaluator{
		log:       p.Log.Named("alert.evaluator"),
		genID:     p.GenID,
		clock:     p.Clock,
		readings:  p.Readings,
		rules:     p.Rules,
		buildings: p.Buildings,
		alerts:    p.Alerts,
		streaks:   p.Streaks,
		locker:    p.Locker,
		metrics:   p.Metrics,
		cfg:       p.Config.withDefaults(),
		pairs:     newPairMutex(),
	}
}

// EvaluatePair runs the rule pass and the built-in anomaly pass for one
// (building, utility) pair and returns the alerts it created.
func (e *Evaluator) EvaluatePair(ctx context.Context, buildingID snowflake.ID, utility readingdomain.UtilityType) ([]alertdomain.Alert, error) {
	pairKey := fmt.Sprintf("evalpair:%s:%s", buildingID, utility)

	mu := e.pairs.get(pairKey)
	mu.Lock()
	defer mu.Unlock()

	if e.locker != nil {
		token, ok, err := e.locker.TryLock(ctx, pairKey, pairLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.log.Debug("pair evaluation already in progress elsewhere", zap.String("pair", pairKey))
			return nil, nil
		}
		defer func() { _ = e.locker.Release(ctx, pairKey, token) }()
	}

	e.metrics.IncEvaluation(string(utility))

	created, err := e.evaluate(ctx, buildingID, utility)
	if err != nil {
		e.metrics.IncEvaluationFailure()
	}
	return created, err
}

func (e *Evaluator) evaluate(ctx context.Context, buildingID snowflake.ID, utility readingdomain.UtilityType) ([]alertdomain.Alert, error) {
	building, err := e.buildings.FindByID(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("%w: building metadata: %w", ErrSourceUnavailable, err)
	}
	if building == nil {
		return nil, nil
	}

	rules, err := e.rules.ListActive(ctx, utility)
	if err != nil {
		return nil, fmt.Errorf("%w: rules: %w", ErrSourceUnavailable, err)
	}

	var created []alertdomain.Alert
	var passErr error

	for _, rule := range rules {
		if !rule.Matches(*building) {
			continue
		}
		alert, err := e.evaluateRule(ctx, rule, *building)
		if err != nil {
			passErr = errors.Join(passErr, err)
			continue
		}
		if alert != nil {
			created = append(created, *alert)
		}
	}

	builtins, err := e.evaluateBuiltins(ctx, *building, utility)
	if err != nil {
		passErr = errors.Join(passErr, err)
	}
	created = append(created, builtins...)

	return created, passErr
}

func (e *Evaluator) evaluateRule(ctx context.Context, rule alertruledomain.AlertRule, building buildingdomain.Building) (*alertdomain.Alert, error) {
	now := e.clock.Now()
	start := now.AddDate(0, 0, -rule.ComparisonWindowDays)

	readings, err := e.readings.Fetch(ctx, building.ID, rule.UtilityType, start, now)
	if err != nil {
		return nil, fmt.Errorf("%w: readings: %w", ErrSourceUnavailable, err)
	}

	streakKey := ruleStreakKey(rule.ID, building.ID)
	if len(readings) == 0 {
		return nil, e.streaks.Reset(ctx, streakKey)
	}

	latest := readings[len(readings)-1]
	breach, observed := ruleBreached(rule, readings, e.cfg)
	if !breach {
		return nil, e.streaks.Reset(ctx, streakKey)
	}

	e.metrics.IncBreach(string(rule.ConditionType))

	streak, err := e.streaks.Incr(ctx, streakKey)
	if err != nil {
		return nil, err
	}
	if streak < rule.ConsecutiveCount {
		return nil, nil
	}

	pending, err := e.alerts.FindPendingByRule(ctx, rule.ID, building.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		e.metrics.IncDedupSuppressed()
		return nil, nil
	}

	ruleID := rule.ID
	readingID := latest.ID
	alert := &alertdomain.Alert{
		ID:          e.genID.Generate(),
		BuildingID:  building.ID,
		UtilityType: rule.UtilityType,
		AlertType:   alertdomain.TypeRuleTrigger,
		RuleID:      &ruleID,
		ReadingID:   &readingID,
		Severity:    rule.Severity,
		Message: fmt.Sprintf("%s: observed %.2f %s against %s threshold %.2f",
			rule.Name, observed, latest.Unit, rule.ConditionType, rule.ThresholdValue),
		Status:    alertdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	e.metrics.IncAlertCreated(string(alert.AlertType), string(alert.Severity))
	e.log.Info("rule alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("rule_id", rule.ID.String()),
		zap.String("building_id", building.ID.String()),
		zap.Int("streak", streak),
	)
	return alert, nil
}

// ruleBreached evaluates the rule condition against the window and returns
// the observed value that goes into the alert message.
func ruleBreached(rule alertruledomain.AlertRule, readings []readingdomain.UtilityReading, cfg Config) (bool, float64) {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	latest := values[len(values)-1]

	switch rule.ConditionType {
	case alertruledomain.ConditionThreshold:
		return latest > rule.ThresholdValue, latest

	case alertruledomain.ConditionZScore:
		stats := analytics.Describe(values, analytics.DescribeOptions{Window: cfg.MovingWindowDays})
		z := stats.ZScores[len(values)-1]
		if z < 0 {
			return -z > rule.ThresholdValue, z
		}
		return z > rule.ThresholdValue, z

	case alertruledomain.ConditionRateOfChange:
		if len(values) < 2 {
			return false, latest
		}
		previous := values[len(values)-2]
		pct, defined := analytics.RateOfChange(previous, latest)
		if !defined {
			// Jump from zero: flag whenever anything shows up.
			return latest > 0, latest
		}
		return pct > rule.ThresholdValue, pct

	default:
		return false, latest
	}
}

func (e *Evaluator) evaluateBuiltins(ctx context.Context, building buildingdomain.Building, utility readingdomain.UtilityType) ([]alertdomain.Alert, error) {
	now := e.clock.Now()
	start := now.AddDate(0, 0, -e.cfg.MovingWindowDays)

	readings, err := e.readings.Fetch(ctx, building.ID, utility, start, now)
	if err != nil {
		return nil, fmt.Errorf("%w: readings: %w", ErrSourceUnavailable, err)
	}
	if len(readings) == 0 {
		return nil, nil
	}

	threshold := building.ThresholdFor(utility)
	latest := readings[len(readings)-1]
	label := capitalize(string(utility))

	var created []alertdomain.Alert
	var passErr error

	// Absolute threshold breach on the latest reading.
	if latest.Value > threshold {
		msg := fmt.Sprintf("%s consumption (%.2f %s) exceeds threshold (%.2f %s)",
			label, latest.Value, latest.Unit, threshold, latest.Unit)
		alert, err := e.emitBuiltin(ctx, building, utility, alertdomain.TypeThresholdBreach, alertruledomain.SeverityHigh, msg, latest.ID, now)
		if err != nil {
			passErr = errors.Join(passErr, err)
		} else if alert != nil {
			created = append(created, *alert)
		}
	}

	// Short-term spike against the building's own trailing baseline,
	// excluding the latest point. Needs a minimum baseline to be meaningful.
	baseline := make([]float64, 0, len(readings)-1)
	for _, r := range readings[:len(readings)-1] {
		baseline = append(baseline, r.Value)
	}
	if len(baseline) >= e.cfg.SpikeMinSamples {
		z := analytics.ZScore(latest.Value, baseline)
		if z > e.cfg.ZScoreThreshold {
			mean := analytics.Describe(baseline, analytics.DescribeOptions{}).Mean
			msg := fmt.Sprintf("Spike detected: %s consumption (%.2f %s) is %.2f standard deviations above recent average (%.2f %s)",
				label, latest.Value, latest.Unit, z, mean, latest.Unit)
			alert, err := e.emitBuiltin(ctx, building, utility, alertdomain.TypeSpike, alertruledomain.SeverityMedium, msg, latest.ID, now)
			if err != nil {
				passErr = errors.Join(passErr, err)
			} else if alert != nil {
				created = append(created, *alert)
			}
		}
	}

	// Sustained usage above a fraction of the threshold across consecutive
	// trailing readings.
	run := trailingRunAbove(readings, threshold*e.cfg.ContinuousHighRatio)
	if run >= e.cfg.ContinuousHighCount {
		msg := fmt.Sprintf("Continuous high %s usage detected: %d consecutive readings above %.0f%% of threshold",
			utility, run, e.cfg.ContinuousHighRatio*100)
		alert, err := e.emitBuiltin(ctx, building, utility, alertdomain.TypeContinuousHigh, alertruledomain.SeverityMedium, msg, latest.ID, now)
		if err != nil {
			passErr = errors.Join(passErr, err)
		} else if alert != nil {
			created = append(created, *alert)
		}
	}

	return created, passErr
}

func (e *Evaluator) emitBuiltin(
	ctx context.Context,
	building buildingdomain.Building,
	utility readingdomain.UtilityType,
	alertType alertdomain.Type,
	severity alertruledomain.Severity,
	message string,
	readingID snowflake.ID,
	now time.Time,
) (*alertdomain.Alert, error) {
	pending, err := e.alerts.FindPendingBuiltin(ctx, building.ID, utility, alertType)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		e.metrics.IncDedupSuppressed()
		return nil, nil
	}

	alert := &alertdomain.Alert{
		ID:          e.genID.Generate(),
		BuildingID:  building.ID,
		UtilityType: utility,
		AlertType:   alertType,
		ReadingID:   &readingID,
		Severity:    severity,
		Message:     message,
		Status:      alertdomain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	e.metrics.IncAlertCreated(string(alertType), string(severity))
	e.log.Info("builtin alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("building_id", building.ID.String()),
		zap.String("type", string(alertType)),
	)
	return alert, nil
}

// trailingRunAbove counts how many consecutive readings at the end of the
// series sit strictly above limit.
func trailingRunAbove(readings []readingdomain.UtilityReading, limit float64) int {
	run := 0
	for i := len(readings) - 1; i >= 0; i-- {
		if readings[i].Value <= limit {
			break
		}
		run++
	}
	return run
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
