package topic

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/foodinsight/huginn/internal/pipeline"
)

// Topic is one search angle, chosen once per run.
type Topic string

func (t Topic) String() string { return string(t) }

// Selector draws topics uniformly from a fixed catalogue. Each selector owns
// its random source; no process-wide generator is used.
type Selector struct {
	catalog []Topic

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector seeds from the wall clock at nanosecond resolution so that
// back-to-back process starts draw different sequences.
func NewSelector(catalog []string) (*Selector, error) {
	now := uint64(time.Now().UnixNano())
	return newSelector(catalog, rand.NewPCG(now, now^0x9e3779b97f4a7c15))
}

// NewSeededSelector yields the same sequence for the same seed and catalogue.
func NewSeededSelector(catalog []string, seed int64) (*Selector, error) {
	return newSelector(catalog, rand.NewPCG(uint64(seed), 0))
}

func newSelector(catalog []string, src rand.Source) (*Selector, error) {
	topics := make([]Topic, 0, len(catalog))
	for _, c := range catalog {
		if c = strings.TrimSpace(c); c != "" {
			topics = append(topics, Topic(c))
		}
	}
	if len(topics) == 0 {
		return nil, pipeline.ConfigurationError{Reason: "topic catalogue is empty"}
	}
	return &Selector{catalog: topics, rng: rand.New(src)}, nil
}

// Select returns one catalogue entry chosen uniformly at random.
func (s *Selector) Select() Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog[s.rng.IntN(len(s.catalog))]
}

// Catalog returns a copy of the catalogue.
func (s *Selector) Catalog() []Topic { return append([]Topic(nil), s.catalog...) }
