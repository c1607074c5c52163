package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/player --output domain/player --outpkg playermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/valuation --output domain/valuation --outpkg valuationmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name BulkSource --dir ../usecase --output usecase --outpkg usecasemock --filename bulk_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name BulkStore --dir ../usecase --output usecase --outpkg usecasemock --filename bulk_store_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name LeagueCrawler --dir ../usecase --output usecase --outpkg usecasemock --filename league_crawler_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RankedPlayerSink --dir ../usecase --output usecase --outpkg usecasemock --filename ranked_player_sink_mock.go
