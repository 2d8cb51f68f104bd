package store

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// NewQuestionCode generates a fresh question code and re-rolls until it is
// unused. This is the same scheme applied to questions created through the
// editor, so imported and hand-made codes are indistinguishable.
func (s *Store) NewQuestionCode(ctx context.Context) (string, error) {
	for {
		id, err := uuid.NewV4()
		if err != nil {
			return "", errors.Wrap(err, "new question code")
		}
		code := "q_" + id.String()[:8]

		inUse, err := s.QuestionCodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
}
