package port

import "github.com/bnema/cheval/internal/domain"

type ProcessRunner interface {
	Start(job domain.Job, obs Observer) error
	StartThen(job domain.Job, next func() (domain.Job, error), obs Observer) error
	Cancel()
	Status() domain.RunStatus
}
