package services

import (
	"github.com/google/uuid"

	"github.com/lingovia/lingovia-backend/internal/types"
)

// challengeDone is the completion projection over the attempt event log: a
// challenge is done when at least one attempt exists and every attempt row
// is completed.
func challengeDone(attempts []*types.ChallengeAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if !a.Completed {
			return false
		}
	}
	return true
}

// doneByChallenge folds a mixed attempt list into a per-challenge done map.
func doneByChallenge(attempts []*types.ChallengeAttempt) map[uuid.UUID]bool {
	grouped := make(map[uuid.UUID][]*types.ChallengeAttempt)
	for _, a := range attempts {
		grouped[a.ChallengeID] = append(grouped[a.ChallengeID], a)
	}
	done := make(map[uuid.UUID]bool, len(grouped))
	for id, rows := range grouped {
		done[id] = challengeDone(rows)
	}
	return done
}

// lessonDone reports whether every challenge of a lesson is done. A lesson
// with no challenges is vacuously complete.
func lessonDone(challenges []*types.Challenge, done map[uuid.UUID]bool) bool {
	for _, ch := range challenges {
		if !done[ch.ID] {
			return false
		}
	}
	return true
}
