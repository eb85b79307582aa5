package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/ai"
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestCoach(t *testing.T) (*ai.Coach, *MockCompleter, *metrics.Manager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	completer := NewMockCompleter(ctrl)
	m := metrics.NewTestManager()
	return ai.NewCoach(completer, 1, time.Second, m), completer, m
}

func TestCoach_Disabled(t *testing.T) {
	m := metrics.NewTestManager()
	coach := ai.NewCoach(nil, 1, time.Second, m)
	ctx := context.Background()

	assert.False(t, coach.Enabled())
	assert.Equal(t, []string{"Squat", "Bench", "Rows"}, coach.ParseFreeTextPlan(ctx, "Squat, Bench\nRows,,  "))
	assert.Equal(t, ai.InsightUnavailable, coach.CoachInsight(ctx, day.EmptyRecord("2024-03-08")))
	assert.Equal(t, ai.FallbackTips, coach.ExerciseTips(ctx, "Squat"))
	assert.Nil(t, coach.SpellingCorrection(ctx, "Sqaut"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAICalls.WithLabelValues("coachInsight", "disabled")))
}

func TestCoach_ParseFreeTextPlan(t *testing.T) {
	coach, completer, m := newTestCoach(t)
	ctx := context.Background()

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, prompt string) (string, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			assert.Contains(t, prompt, "squats then bench")
			return "```json\n{\"exercises\": [\" Squat \", \"\", \"Bench Press\"]}\n```", nil
		})
	assert.Equal(t, []string{"Squat", "Bench Press"}, coach.ParseFreeTextPlan(ctx, "squats then bench"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAICalls.WithLabelValues("parseFreeTextPlan", "ok")))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("boom"))
	assert.Equal(
		t,
		[]string{"a", "b", "c", "d", "e", "f", "g", "h"},
		coach.ParseFreeTextPlan(ctx, "a,b,c,d,e,f,g,h,i,j"),
	)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAICalls.WithLabelValues("parseFreeTextPlan", "error")))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Squat and bench, I guess", nil)
	assert.Equal(t, []string{"Dips", "Curl"}, coach.ParseFreeTextPlan(ctx, "Dips\nCurl"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAICalls.WithLabelValues("parseFreeTextPlan", "invalid")))
}

func TestCoach_CoachInsight(t *testing.T) {
	coach, completer, _ := newTestCoach(t)
	ctx := context.Background()

	record := day.EmptyRecord("2024-03-08")
	record.Workouts[0].ExerciseName = "Squat"
	record.Workouts[0].Sets[0].Weight = 100
	record.Workouts[0].Sets[0].Reps = 5
	record.Nutrition = day.NewNutrition("nut-2024-03-08", "2024-03-08", 150, 200, 60)

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, "Squat: 5x100kg")
			assert.Contains(t, prompt, "P:150g, C:200g, F:60g (Total: 1940 kcal)")
			return "  Strong session.  ", nil
		})
	assert.Equal(t, "Strong session.", coach.CoachInsight(ctx, record))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, "No training recorded.")
			assert.Contains(t, prompt, "No nutrition data.")
			return "", nil
		})
	assert.Equal(t, ai.InsightEmptyReply, coach.CoachInsight(ctx, day.EmptyRecord("2024-03-09")))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", context.DeadlineExceeded)
	assert.Equal(t, ai.InsightUnavailable, coach.CoachInsight(ctx, record))
}

func TestCoach_ExerciseTips(t *testing.T) {
	coach, completer, m := newTestCoach(t)
	ctx := context.Background()

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`{"execution": "Sit back and down.", "tips": ["Brace", "Knees out", "Full depth"]}`, nil).
		Times(1)

	expected := ai.Tips{Execution: "Sit back and down.", Tips: []string{"Brace", "Knees out", "Full depth"}}
	assert.Equal(t, expected, coach.ExerciseTips(ctx, "Squat"))
	// second lookup is served from the cache, case insensitive
	assert.Equal(t, expected, coach.ExerciseTips(ctx, " squat"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterAICalls.WithLabelValues("exerciseTips", "cached")))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("not json", nil)
	assert.Equal(t, ai.FallbackTips, coach.ExerciseTips(ctx, "Dips"))

	assert.Equal(t, ai.FallbackTips, coach.ExerciseTips(ctx, "   "))
}

func TestCoach_SpellingCorrection(t *testing.T) {
	coach, completer, _ := newTestCoach(t)
	ctx := context.Background()

	// too short: the model is never asked
	assert.Nil(t, coach.SpellingCorrection(ctx, "Sq"))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`"Bench Press"`, nil).
		Times(1)
	corrected := coach.SpellingCorrection(ctx, "Bnech Press")
	require.NotNil(t, corrected)
	assert.Equal(t, "Bench Press", *corrected)
	corrected = coach.SpellingCorrection(ctx, "bnech press")
	require.NotNil(t, corrected)
	assert.Equal(t, "Bench Press", *corrected)

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("OK", nil)
	assert.Nil(t, coach.SpellingCorrection(ctx, "Squat"))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Deadlift", nil)
	assert.Nil(t, coach.SpellingCorrection(ctx, "deadlift"))

	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("unreachable"))
	assert.Nil(t, coach.SpellingCorrection(ctx, "Lat Pulldown"))
}

func TestSplitPlanText(t *testing.T) {
	assert.Empty(t, ai.SplitPlanText(" , \n "))
	assert.Equal(t, []string{"Leg Press", "Calf Raise"}, ai.SplitPlanText("Leg Press\n Calf Raise ,"))
}
