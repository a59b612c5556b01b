package agents

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/shubh-37/x-ghostwriter/internal/models"
)

// ContextWeight is one bucket of the context distribution.
type ContextWeight struct {
	Type   models.ContextType
	Weight int
}

// DefaultContextWeights biases toward reflective and building-in-public content.
var DefaultContextWeights = []ContextWeight{
	{models.ContextThought, 3},
	{models.ContextProject, 2},
	{models.ContextBuildingMoment, 2},
	{models.ContextTip, 2},
	{models.ContextQuestion, 2},
	{models.ContextScene, 1},
	{models.ContextStudentPerspective, 1},
	{models.ContextGeneral, 1},
}

// ContextPicker draws context types from a weighted distribution using a
// cumulative-weight table and one uniform draw per pick. Safe for concurrent use.
type ContextPicker struct {
	types      []models.ContextType
	cumulative []int
	total      int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewContextPicker builds a picker over weights. A nil rng uses a randomly seeded source.
func NewContextPicker(weights []ContextWeight, rng *rand.Rand) *ContextPicker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	p := &ContextPicker{rng: rng}
	for _, w := range weights {
		if w.Weight <= 0 {
			continue
		}
		p.total += w.Weight
		p.types = append(p.types, w.Type)
		p.cumulative = append(p.cumulative, p.total)
	}
	return p
}

// Pick returns a context type, or general when the table is empty.
func (p *ContextPicker) Pick() models.ContextType {
	if p.total == 0 {
		return models.ContextGeneral
	}

	p.mu.Lock()
	u := p.rng.IntN(p.total)
	p.mu.Unlock()

	i := sort.Search(len(p.cumulative), func(i int) bool { return p.cumulative[i] > u })
	return p.types[i]
}

// Total is the size of the sampling pool.
func (p *ContextPicker) Total() int {
	return p.total
}
