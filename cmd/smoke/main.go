// Command smoke exercises the scoring and rate-limiting paths offline so a
// deploy can be sanity-checked without provider credentials.
package main

import (
	"fmt"
	"time"

	"github.com/repradar/repradar/internal/ratelimit"
	"github.com/repradar/repradar/internal/scoring"
)

func main() {
	samples := map[string][]string{
		"clean":    {"ordered last week, arrived on time, everything as described"},
		"positive": {"great product, love the support team, highly recommend"},
		"negative": {"total scam, awful service, avoid this company, considering a lawsuit"},
	}

	fmt.Println("== scoring ==")
	for name, texts := range samples {
		fmt.Printf("%-8s risk=%3d sentiment=%s\n", name, scoring.RiskScore(texts), scoring.Sentiment(texts))
	}

	fmt.Println("== rate limiter ==")
	limiter := ratelimit.New(time.Minute, 3, "slow down")
	for i := 1; i <= 5; i++ {
		fmt.Printf("request %d allowed=%v\n", i, limiter.Allow("smoke-client"))
	}
	fmt.Printf("retryAfter=%ds trackedKeys=%d\n", limiter.RetryAfter(), limiter.TrackedKeys())

	limiter.Cleanup()
	fmt.Printf("after cleanup trackedKeys=%d\n", limiter.TrackedKeys())
}
