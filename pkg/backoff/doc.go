// Package backoff decides how long to wait before a reconnect attempt and
// whether an attempt is still within budget.
//
// A Policy is immutable once built. Delays come from
// github.com/sethvargo/go-retry sequences: StrategyConstant waits
// BaseInterval before every attempt, StrategyExponential doubles it each
// attempt and caps the result at MaxInterval. Either way NextDelay is
// non-decreasing and bounded.
//
//	p, err := backoff.New(backoff.Config{
//	    BaseInterval: time.Second,
//	    MaxRetries:   30,
//	})
//	for attempt := 1; p.HasRetriesRemaining(attempt); attempt++ {
//	    if err := p.Wait(ctx, attempt); err != nil {
//	        return err
//	    }
//	    // try again
//	}
//
// MaxRetries set to Unlimited never exhausts the budget.
package backoff
