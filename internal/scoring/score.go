package scoring

import (
	"math"

	"lingua-quiz-service/internal/domain"
)

// speedBonusThreshold is the time under which a flat XP bonus applies.
const speedBonusThreshold = 300

// sectionBaseXP is the fixed XP base per content category.
var sectionBaseXP = map[domain.SectionType]int{
	domain.SectionVocabulary:    10,
	domain.SectionGrammar:       15,
	domain.SectionListening:     15,
	domain.SectionQuiz:          20,
	domain.SectionPronunciation: 25,
}

// PointsForAnswer returns the question's point value when correct, 0
// otherwise. Zero-point questions default to 1.
func PointsForAnswer(q domain.Question, correct bool) int {
	if !correct {
		return 0
	}
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// XPForSection computes XP for a completed lesson section: the category
// base scaled by accuracy, floored. Unknown categories earn the
// vocabulary base.
func XPForSection(sectionType domain.SectionType, accuracy float64) int {
	base, ok := sectionBaseXP[sectionType]
	if !ok {
		base = sectionBaseXP[domain.SectionVocabulary]
	}
	return int(math.Floor(float64(base) * accuracy))
}

// XPForResult computes the XP reward for a finalized quiz result:
// earned points, plus half of the points scaled by accuracy, plus a
// flat speed bonus when the whole quiz took under five minutes.
func XPForResult(totalPoints int, accuracy float64, timeSpentSeconds int) int {
	xp := totalPoints + int(math.Floor(float64(totalPoints)*accuracy*0.5))
	if timeSpentSeconds < speedBonusThreshold {
		xp += 10
	}
	return xp
}

// Accuracy is the fraction of recorded answers judged correct.
// An empty list is defined as 0.0.
func Accuracy(answers []domain.Answer) float64 {
	if len(answers) == 0 {
		return 0.0
	}
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(answers))
}
