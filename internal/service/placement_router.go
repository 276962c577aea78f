package service

import (
	"fmt"

	"github.com/hsalhab/mustawa/config"
	"github.com/hsalhab/mustawa/internal/model"
	"github.com/hsalhab/mustawa/internal/repository"
	"github.com/rs/zerolog/log"
)

// RouteOutcome is the router's decision for one completed placement
// attempt: either the id of the next test to take, or a finalized level
// together with what the class matcher did with it.
type RouteOutcome struct {
	PercentageScore float64           `json:"percentage_score"`
	Passed          bool              `json:"passed"`
	Finalized       bool              `json:"finalized"`
	DeterminedLevel model.Level       `json:"determined_level,omitempty"`
	NextTestID      *uint             `json:"next_test_id,omitempty"`
	Placement       *PlacementOutcome `json:"-"`
}

// PlacementRouter is the adaptive-testing decision. It runs immediately
// after a placement attempt reaches completed and either advances the
// student along a graph edge or finalizes the attempt as the terminal
// placement result.
type PlacementRouter interface {
	Route(result *model.TestResult, test *model.Test, student *model.User) (*RouteOutcome, error)
}

type placementRouter struct {
	resultRepo repository.TestResultRepository
	userRepo   repository.UserRepository
	matcher    ClassMatcher
	cfg        config.Placement
}

func NewPlacementRouter(
	resultRepo repository.TestResultRepository,
	userRepo repository.UserRepository,
	matcher ClassMatcher,
	cfg config.Placement,
) PlacementRouter {
	return &placementRouter{
		resultRepo: resultRepo,
		userRepo:   userRepo,
		matcher:    matcher,
		cfg:        cfg,
	}
}

// Route applies the three-way threshold decision. Thresholds arrive via
// config, never read ambiently. The graph is assumed to be a DAG but is
// not enforced as one, so routing stops after cfg.MaxHops completed
// placement attempts even if an edge exists; the student finalizes at the
// current stage instead of looping forever.
func (r *placementRouter) Route(result *model.TestResult, test *model.Test, student *model.User) (*RouteOutcome, error) {
	if !test.IsPlacementTest {
		return nil, fmt.Errorf("test %d is not a placement test", test.ID)
	}
	if result.Status != model.ResultStatusCompleted {
		return nil, fmt.Errorf("attempt %d is %s, routing requires a completed attempt", result.ID, result.Status)
	}

	maxScore := test.AutoGradableMaxScore()
	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(result.Score) / float64(maxScore) * 100
	}

	hopsExhausted, err := r.hopsExhausted(student.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case percentage >= r.cfg.SuccessThreshold && test.NextTestOnSuccessID != nil:
		if hopsExhausted {
			log.Warn().
				Uint("studentID", student.ID).
				Uint("testID", test.ID).
				Int("maxHops", r.cfg.MaxHops).
				Msg("Route: hop limit reached on success edge, finalizing at current stage")
			return r.finalize(result, student, test, test.Level, true, percentage)
		}
		// Strong result with more graph above: record this stage, keep
		// the attempt completed (not finalized) and send the student up.
		result.DeterminedLevelAtThisStage = test.Level
		result.Passed = boolPtr(true)
		if err := r.resultRepo.Update(result); err != nil {
			return nil, err
		}
		log.Info().
			Uint("studentID", student.ID).
			Uint("testID", test.ID).
			Uint("nextTestID", *test.NextTestOnSuccessID).
			Float64("percentage", percentage).
			Msg("Route: advancing to harder test")
		return &RouteOutcome{
			PercentageScore: percentage,
			Passed:          true,
			NextTestID:      test.NextTestOnSuccessID,
		}, nil

	case percentage >= r.cfg.PassThreshold:
		// The student's ceiling: level determined here, for good.
		return r.finalize(result, student, test, test.Level, true, percentage)

	default:
		result.DeterminedLevelAtThisStage = test.Level
		result.Passed = boolPtr(false)
		if test.NextTestOnFailureID != nil && !hopsExhausted {
			if err := r.resultRepo.Update(result); err != nil {
				return nil, err
			}
			log.Info().
				Uint("studentID", student.ID).
				Uint("testID", test.ID).
				Uint("nextTestID", *test.NextTestOnFailureID).
				Float64("percentage", percentage).
				Msg("Route: regressing to easier test")
			return &RouteOutcome{
				PercentageScore: percentage,
				Passed:          false,
				NextTestID:      test.NextTestOnFailureID,
			}, nil
		}
		// Bottom of the graph with no pass: a failing run still yields a
		// provisional floor placement rather than leaving the student
		// unresolved.
		return r.finalize(result, student, test, model.FloorLevel, false, percentage)
	}
}

// finalize marks the attempt as the terminal placement result, persists
// level onto the student profile and hands off to the class matcher. The
// attempt records the stage it ended on; level only differs from it when
// the student fell through the floor of the graph.
func (r *placementRouter) finalize(result *model.TestResult, student *model.User, test *model.Test, level model.Level, passed bool, percentage float64) (*RouteOutcome, error) {
	result.DeterminedLevelAtThisStage = test.Level
	if !result.DeterminedLevelAtThisStage.IsAssigned() {
		// A finalized attempt must never carry an unassigned stage level.
		result.DeterminedLevelAtThisStage = level
	}
	result.IsFinalPlacementResult = true
	result.Status = model.ResultStatusFinalized
	result.Passed = boolPtr(passed)
	if err := r.resultRepo.Update(result); err != nil {
		return nil, err
	}

	student.DeterminedArabicLevel = level
	if err := r.userRepo.Update(student); err != nil {
		return nil, err
	}

	log.Info().
		Uint("studentID", student.ID).
		Str("level", string(level)).
		Bool("passed", passed).
		Float64("percentage", percentage).
		Msg("Route: placement finalized")

	placement, err := r.matcher.PlaceStudent(student, level)
	if err != nil {
		return nil, err
	}

	return &RouteOutcome{
		PercentageScore: percentage,
		Passed:          passed,
		Finalized:       true,
		DeterminedLevel: level,
		Placement:       placement,
	}, nil
}

func (r *placementRouter) hopsExhausted(studentID uint) (bool, error) {
	if r.cfg.MaxHops <= 0 {
		return false, nil
	}
	count, err := r.resultRepo.CountCompletedPlacementByStudent(studentID)
	if err != nil {
		return false, err
	}
	return count >= int64(r.cfg.MaxHops), nil
}

func boolPtr(b bool) *bool { return &b }
