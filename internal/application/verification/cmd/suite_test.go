package cmd

import (
	"time"

	"github.com/ARUMANDESU/storefront-identity/tests/mocks"
)

var testNow = time.Date(2026, 4, 1, 10, 58, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type Suite struct {
	Store     *mocks.IdentityStore
	MailQueue *mocks.MailQueue
}

func newSuite() *Suite {
	return &Suite{
		Store:     mocks.NewIdentityStore(),
		MailQueue: mocks.NewMailQueue(),
	}
}
