package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/waveportal/foundation/retry"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Do(t *testing.T) {
	type table struct {
		name     string
		policy   retry.Policy
		failures int
		permErr  bool
		calls    int
		success  bool
	}

	tt := []table{
		{name: "zero-policy-ok", policy: retry.Policy{}, failures: 0, calls: 1, success: true},
		{name: "zero-policy-fail", policy: retry.Policy{}, failures: 1, calls: 1, success: false},
		{name: "recover", policy: retry.Policy{MaxRetries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}, failures: 2, calls: 3, success: true},
		{name: "exhaust", policy: retry.Policy{MaxRetries: 2, Initial: time.Millisecond, Max: 2 * time.Millisecond}, failures: 10, calls: 3, success: false},
		{name: "permanent", policy: retry.Policy{MaxRetries: 5, Initial: time.Millisecond}, failures: 10, permErr: true, calls: 1, success: false},
	}

	t.Log("Given the need to retry remote calls with a bounded policy.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling policy %q.", testID, tst.name)
				{
					var calls int
					fn := func() error {
						calls++
						if calls <= tst.failures {
							err := errors.New("remote failure")
							if tst.permErr {
								return retry.Permanent(err)
							}
							return err
						}
						return nil
					}

					err := retry.Do(context.Background(), tst.policy, fn, nil)
					if (err == nil) != tst.success {
						t.Fatalf("\t%s\tTest %d:\tShould get the expected outcome: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected outcome.", success, testID)

					if calls != tst.calls {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, calls)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.calls)
						t.Fatalf("\t%s\tTest %d:\tShould make the expected number of calls.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould make the expected number of calls.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
