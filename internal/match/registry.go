package match

import (
	crand "crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Registry maps shareable match codes to matches.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*Match
	log     *zap.Logger
	newCode func() (string, error)
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		matches: map[string]*Match{},
		log:     log,
		newCode: randCode,
	}
}

// Create allocates a new empty match under a fresh code.
func (r *Registry) Create() (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for attempt := 0; attempt < 16; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate match code: %w", err)
		}
		if _, taken := r.matches[code]; taken {
			continue
		}
		m := New(code, WithLogger(r.log))
		r.matches[code] = m
		r.log.Info("match created", zap.String("match", code), zap.Int("open", len(r.matches)))
		return m, nil
	}
	return nil, fmt.Errorf("generate match code: no free code after retries")
}

// Get looks a match up by code, ignoring case.
func (r *Registry) Get(code string) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

func randCode() (string, error) { return readCode(crand.Reader) }

// readCode draws codeLength characters from src. Bytes at or above the largest
// multiple of the alphabet size are discarded so every character is equally
// likely.
func readCode(src io.Reader) (string, error) {
	const limit = 256 - 256%len(codeAlphabet)
	out := make([]byte, 0, codeLength)
	var buf [2 * codeLength]byte
	for len(out) < codeLength {
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return "", err
		}
		for _, v := range buf {
			if int(v) < limit && len(out) < codeLength {
				out = append(out, codeAlphabet[int(v)%len(codeAlphabet)])
			}
		}
	}
	return string(out), nil
}
