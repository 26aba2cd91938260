package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/forest/internal/strategy Strategy
//go:generate mockgen -destination=./mock_classifier.go -package=mocks github.com/rxtech-lab/forest/internal/strategy Classifier
//go:generate mockgen -destination=./mock_observer.go -package=mocks github.com/rxtech-lab/forest/internal/backtest/engine Observer
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/forest/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/rxtech-lab/forest/internal/indicator IndicatorRegistry
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_commission_fee.go -package=mocks github.com/rxtech-lab/forest/internal/backtest/engine/engine_v1/commission_fee CommissionFee
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/rxtech-lab/forest/internal/backtest/grid Cache
