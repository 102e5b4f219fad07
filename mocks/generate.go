package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/evdnx/gotrend/marketdata Provider
//go:generate mockgen -destination=./mock_executor.go -package=mocks github.com/evdnx/gotrend/executor Executor
