package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/coupon --output domain/coupon --outpkg couponmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name CatalogProvider --dir ../usecase --output usecase --outpkg usecasemock --filename catalog_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ResultProvider --dir ../usecase --output usecase --outpkg usecasemock --filename result_provider_mock.go
