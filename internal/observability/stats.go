package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	PagesFetched      uint64            `json:"pages_fetched"`
	RecordsExtracted  uint64            `json:"records_extracted"`
	AICalls           uint64            `json:"ai_calls"`
	Placeholders      uint64            `json:"placeholders"`
	ErrorsTotal       uint64            `json:"errors_total"`
	FetchSecondsAvg   float64           `json:"fetch_seconds_avg"`
	StrategyWins      map[string]uint64 `json:"strategy_wins,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	pagesFetched     uint64
	recordsExtracted uint64
	aiCalls          uint64
	placeholders     uint64
	errorsTotal      uint64

	fetchCount uint64
	fetchNanos uint64

	statsMu           sync.Mutex
	strategyWins      = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncPagesFetched(_ string) {
	atomic.AddUint64(&pagesFetched, 1)
}

func AddRecordsExtracted(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(&recordsExtracted, uint64(n))
}

func IncAICall(_ string) {
	atomic.AddUint64(&aiCalls, 1)
}

func IncPlaceholder() {
	atomic.AddUint64(&placeholders, 1)
}

// IncStrategyWin records which segmentation strategy produced the answer.
func IncStrategyWin(strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	statsMu.Lock()
	strategyWins[strategy]++
	statsMu.Unlock()
}

func ObserveFetchDuration(_ string, seconds float64) {
	if seconds <= 0 {
		return
	}
	atomic.AddUint64(&fetchCount, 1)
	atomic.AddUint64(&fetchNanos, uint64(seconds*1e9))
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	strategyCopy := copyMap(strategyWins)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	count := atomic.LoadUint64(&fetchCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&fetchNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		PagesFetched:      atomic.LoadUint64(&pagesFetched),
		RecordsExtracted:  atomic.LoadUint64(&recordsExtracted),
		AICalls:           atomic.LoadUint64(&aiCalls),
		Placeholders:      atomic.LoadUint64(&placeholders),
		ErrorsTotal:       atomic.LoadUint64(&errorsTotal),
		FetchSecondsAvg:   avg,
		StrategyWins:      strategyCopy,
		ErrorsByType:      errorsTypeCopy,
		ErrorsByComponent: errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
