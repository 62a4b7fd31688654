package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

type hashResult struct {
	hash string
	err  error
}

type hashJob struct {
	password string
	result   chan<- hashResult
}

// Hasher runs bcrypt on a fixed number of workers so a burst of
// registrations cannot occupy every CPU.
type Hasher struct {
	jobs chan hashJob
	cost int
}

func NewHasher(workers, cost int) *Hasher {
	if workers < 1 {
		workers = 1
	}
	h := &Hasher{
		jobs: make(chan hashJob),
		cost: cost,
	}
	for i := 0; i < workers; i++ {
		go h.worker()
	}
	return h
}

func (h *Hasher) worker() {
	for job := range h.jobs {
		hash, err := bcrypt.GenerateFromPassword([]byte(job.password), h.cost)
		job.result <- hashResult{hash: string(hash), err: err}
	}
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result := make(chan hashResult, 1)
	select {
	case h.jobs <- hashJob{password: password, result: result}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-result:
		return r.hash, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Compare reports whether password matches hash.
func (h *Hasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Close stops the workers. Hash must not be called afterwards.
func (h *Hasher) Close() {
	close(h.jobs)
}
