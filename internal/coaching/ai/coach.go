package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=coach_mocks_test.go -package=ai_test

const (
	MaxPlanExercises = 8

	oneDay            = 24 * 60 * 60
	tipsCacheExpire   = oneDay * 7
	correctionExpire  = oneDay
	minCorrectionRune = 3

	InsightEmptyReply  = "The coach could not produce an analysis."
	InsightUnavailable = "Could not connect to the AI coach."
)

var FallbackTips = Tips{
	Execution: "Instructions could not be loaded.",
	Tips:      []string{"Check your technique", "Move slowly and under control", "Use the full range of motion"},
}

var errDisabled = errors.New("ai disabled")

// Completer sends one system + user prompt pair to a language model and returns its reply text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Tips struct {
	Execution string   `json:"execution"`
	Tips      []string `json:"tips"`
}

// Coach wraps the language model features. None of its methods fail: model errors are logged,
// counted and replaced by fixed fallbacks.
type Coach struct {
	completer      Completer
	cache          *freecache.Cache
	timeout        time.Duration
	metricsManager *metrics.Manager
}

// NewCoach builds a Coach. A nil completer disables the model and every call returns its fallback.
func NewCoach(completer Completer, cacheSizeMB int, timeout time.Duration, metricsManager *metrics.Manager) *Coach {
	megabyte := 1024 * 1024
	if cacheSizeMB <= 0 {
		cacheSizeMB = 1
	}
	return &Coach{
		completer:      completer,
		cache:          freecache.NewCache(cacheSizeMB * megabyte),
		timeout:        timeout,
		metricsManager: metricsManager,
	}
}

func (c *Coach) Enabled() bool {
	return c.completer != nil
}

func (c *Coach) count(fn, outcome string) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterAICalls.WithLabelValues(fn, outcome).Inc()
}

func (c *Coach) complete(ctx context.Context, fn, system, prompt string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "aiCoach."+fn)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if c.completer == nil {
		c.count(fn, "disabled")
		return "", errDisabled
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.completer.Complete(ctx, system, prompt)
	if err != nil {
		log.Warnf("ai coach, %s: %s", fn, err)
		c.count(fn, "error")
		return "", err
	}

	c.count(fn, "ok")
	return strings.TrimSpace(reply), nil
}

const planSystemPrompt = `You extract fitness exercises from coach notes.
Reply with JSON only, shaped as {"exercises": ["name", ...]}.`

type planReply struct {
	Exercises []string `json:"exercises"`
}

// ParseFreeTextPlan extracts up to 8 exercise names from text, in the order they appear.
func (c *Coach) ParseFreeTextPlan(ctx context.Context, text string) []string {
	prompt := fmt.Sprintf(`Extract the list of fitness exercises from the following text, in the right order.
Return only the exercise names. Ignore sentences, repetitions and small talk. At most %d exercises.
Text: %q`, MaxPlanExercises, text)

	reply, err := c.complete(ctx, "parseFreeTextPlan", planSystemPrompt, prompt)
	if err != nil {
		return SplitPlanText(text)
	}

	var parsed planReply
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &parsed); err != nil {
		log.Warnf("ai coach, parse plan reply: %s", err)
		c.count("parseFreeTextPlan", "invalid")
		return SplitPlanText(text)
	}

	return cleanNames(parsed.Exercises)
}

// SplitPlanText is the plan parser used without a model: comma or newline separated names.
func SplitPlanText(text string) []string {
	return cleanNames(strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	}))
}

func cleanNames(names []string) []string {
	cleaned := make([]string, 0, MaxPlanExercises)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		cleaned = append(cleaned, n)
		if len(cleaned) == MaxPlanExercises {
			break
		}
	}
	return cleaned
}

func stripCodeFence(reply string) string {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "```") {
		return reply
	}
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimPrefix(reply, "json")
	reply = strings.TrimSuffix(strings.TrimSpace(reply), "```")
	return strings.TrimSpace(reply)
}

const insightSystemPrompt = "You are a specialised fitness coach. You are short, concrete and motivating."

// CoachInsight is a short assessment of one day's training and nutrition.
func (c *Coach) CoachInsight(ctx context.Context, record day.DayRecord) string {
	prompt := fmt.Sprintf(`Analyse today's training and nutrition of the user:

Date: %s
Training:
%s

Nutrition:
%s

Give a short, motivating assessment (max 150 words).
Look at the ratio of protein to calories and whether the training was intense.
Suggest one small improvement for tomorrow.`, record.Date, workoutSummary(record), nutritionSummary(record))

	reply, err := c.complete(ctx, "coachInsight", insightSystemPrompt, prompt)
	if err != nil {
		return InsightUnavailable
	}
	if reply == "" {
		return InsightEmptyReply
	}
	return reply
}

func workoutSummary(record day.DayRecord) string {
	var lines []string
	for _, w := range record.Workouts {
		if !w.Named() {
			continue
		}
		var sets []string
		for _, s := range w.Sets {
			if s.Performed() {
				sets = append(sets, fmt.Sprintf("%dx%gkg", s.Reps, s.Weight))
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", w.ExerciseName, strings.Join(sets, ", ")))
	}
	if len(lines) == 0 {
		return "No training recorded."
	}
	return strings.Join(lines, "\n")
}

func nutritionSummary(record day.DayRecord) string {
	n := record.Nutrition
	if n.IsZero() {
		return "No nutrition data."
	}
	return fmt.Sprintf("Macros: P:%gg, C:%gg, F:%gg (Total: %g kcal)", n.Protein(), n.Carbs(), n.Fat(), n.Calories())
}

const tipsSystemPrompt = `You explain gym exercises very briefly.
Reply with JSON only, shaped as {"execution": "...", "tips": ["...", "...", "..."]}.`

// ExerciseTips is a one or two sentence execution guide plus three checkpoints for name.
func (c *Coach) ExerciseTips(ctx context.Context, name string) Tips {
	name = strings.TrimSpace(name)
	if name == "" {
		return FallbackTips
	}

	cacheKey := []byte("tips::" + strings.ToLower(name))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var tips Tips
		if err := json.Unmarshal(cached, &tips); err == nil {
			c.count("exerciseTips", "cached")
			return tips
		}
	}

	prompt := fmt.Sprintf(`Give an extremely short guide for the exercise %q.
1. Execution (1-2 sentences)
2. Three important tips or checkpoints to watch out for.`, name)

	reply, err := c.complete(ctx, "exerciseTips", tipsSystemPrompt, prompt)
	if err != nil {
		return FallbackTips
	}

	var tips Tips
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &tips); err != nil || tips.Execution == "" {
		log.Warnf("ai coach, tips reply for %s not usable: %v", name, err)
		c.count("exerciseTips", "invalid")
		return FallbackTips
	}
	if tips.Tips == nil {
		tips.Tips = []string{}
	}

	if tipsBytes, err := json.Marshal(tips); err == nil {
		if err := c.cache.Set(cacheKey, tipsBytes, tipsCacheExpire); err != nil {
			log.Errorf("ai coach, cache tips for %s: %s", name, err)
		}
	}

	return tips
}

const correctionSystemPrompt = "You check gym exercise names for typos. Reply with a single line only."

// SpellingCorrection returns the corrected exercise name, or nil when name looks right, is too
// short to judge, or the model cannot be reached.
func (c *Coach) SpellingCorrection(ctx context.Context, name string) (corrected *string) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "aiCoach.spellingCorrection")
	defer func() {
		span.SetAttributes(attribute.Bool("corrected", corrected != nil))
		span.SetStatus(codes.Ok, "ok")
		span.End()
	}()

	name = strings.TrimSpace(name)
	if len([]rune(name)) < minCorrectionRune {
		return nil
	}

	cacheKey := []byte("correction::" + strings.ToLower(name))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		c.count("spellingCorrection", "cached")
		return correctionFor(name, string(cached))
	}

	prompt := fmt.Sprintf(`Check whether the exercise name %q has a typo or is imprecise.
If it is very close to a common fitness exercise, return only the correct name.
If it is correct, return "OK".`, name)

	reply, err := c.complete(ctx, "spellingCorrection", correctionSystemPrompt, prompt)
	if err != nil {
		return nil
	}

	reply = strings.Trim(strings.TrimSpace(reply), `"'.`)
	if err := c.cache.Set(cacheKey, []byte(reply), correctionExpire); err != nil {
		log.Errorf("ai coach, cache correction for %s: %s", name, err)
	}

	return correctionFor(name, reply)
}

func correctionFor(name, reply string) *string {
	if reply == "" || strings.EqualFold(reply, "OK") || strings.EqualFold(reply, name) {
		return nil
	}
	return &reply
}
