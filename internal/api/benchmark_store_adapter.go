package api

import "github.com/maturitylab/compass/internal/services"

type benchmarkStoreAdapter struct{ store Store }

func newBenchmarkStoreAdapter(store Store) services.BenchmarkAdminStore {
	return &benchmarkStoreAdapter{store: store}
}

func (a *benchmarkStoreAdapter) LatestBenchmark() (*services.Benchmark, error) {
	b, err := a.store.LatestBenchmark()
	if err != nil {
		return nil, err
	}
	return convertAPIBenchmark(b), nil
}

func (a *benchmarkStoreAdapter) UpsertBenchmark(b *services.Benchmark) error {
	return a.store.UpsertBenchmark(convertServiceBenchmark(b))
}

func (a *benchmarkStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(convertAPIAudit(entry))
}
