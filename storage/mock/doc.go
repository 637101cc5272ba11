// Package mock provides a test double for storage.RecordRepository.
//
// MockRepository keeps records in memory and filters them with the same
// Pattern semantics as the real backends. Behavior can be replaced per
// method through function fields, which makes it easy to simulate read
// failures or slow stores in search and session tests.
//
// # Usage in Tests
//
//	claims := mock.NewMockRepository(core.CollectionClaims,
//	    &core.Record{Title: "Steel Price Variation Claim", Status: core.StatusSubmitted})
//
//	// Simulate a failing read
//	claims.FindMatchingFunc = func(ctx context.Context, p storage.Pattern, limit int) ([]*core.Record, error) {
//	    return nil, errors.New("connection reset")
//	}
//
//	// Check how many reads were issued
//	count := claims.FindCount()
package mock
