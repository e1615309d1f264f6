package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// requestRecord tracks the number of requests and the window start time
type requestRecord struct {
	count       int
	windowStart time.Time
	mu          sync.Mutex
}

// throttleStore stores rate limit data per actor key
type throttleStore struct {
	records map[string]*requestRecord
	mu      sync.RWMutex
}

func newThrottleStore() *throttleStore {
	store := &throttleStore{
		records: make(map[string]*requestRecord),
	}
	// Start cleanup goroutine to remove old entries
	go store.startCleanup()
	return store
}

func (ts *throttleStore) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		ts.cleanupOldRecords()
	}
}

// cleanupOldRecords removes records older than 1 hour
func (ts *throttleStore) cleanupOldRecords() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	oneHourAgo := time.Now().Add(-1 * time.Hour)
	for key, record := range ts.records {
		record.mu.Lock()
		if record.windowStart.Before(oneHourAgo) {
			delete(ts.records, key)
		}
		record.mu.Unlock()
	}
}

func (ts *throttleStore) getOrCreateRecord(key string) *requestRecord {
	ts.mu.RLock()
	record, exists := ts.records[key]
	ts.mu.RUnlock()

	if exists {
		return record
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	// Double-check after acquiring write lock
	if record, exists := ts.records[key]; exists {
		return record
	}
	record = &requestRecord{
		count:       0,
		windowStart: time.Now(),
	}
	ts.records[key] = record
	return record
}

// checkAndIncrement returns true if the actor may make another request in the
// current window.
func (ts *throttleStore) checkAndIncrement(key string, maxRequests int, period time.Duration) bool {
	record := ts.getOrCreateRecord(key)

	record.mu.Lock()
	defer record.mu.Unlock()

	now := time.Now()
	if now.Sub(record.windowStart) >= period {
		record.count = 1
		record.windowStart = now
		return true
	}

	if record.count >= maxRequests {
		return false
	}

	record.count++
	return true
}

// Global throttle store (one per application instance)
var globalThrottleStore = newThrottleStore()

// ThrottleMiddleware rate limits engagement writes per actor. Authenticated
// users are keyed by user id, guests by their device token, so a guest
// cannot reset its budget by logging in and out. Apply after the auth and
// guest cookie middleware.
func ThrottleMiddleware(maxRequests int, period time.Duration) func(http.Handler) http.Handler {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if period <= 0 {
		period = time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if user := UserFromContext(r.Context()); user != nil {
				key = "user:" + strconv.FormatUint(user.ID, 10)
			} else if token := DeviceTokenFromContext(r.Context()); token != "" {
				key = "guest:" + token
			}
			if key == "" {
				// No identity to throttle against; the handler will reject
				// unattributable writes anyway.
				next.ServeHTTP(w, r)
				return
			}

			if !globalThrottleStore.checkAndIncrement(key, maxRequests, period) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", formatRetryAfter(period))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// formatRetryAfter formats the period as seconds for Retry-After header
func formatRetryAfter(period time.Duration) string {
	seconds := int(period.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
