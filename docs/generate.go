package docs

//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc5 init --dir ../cmd/server,../internal/interfaces/http/handler --parseDependency --parseInternal --overridesFile ../.swaggo --output . --outputTypes go
